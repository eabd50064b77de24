package main

import (
	"fmt"
	"os"

	xclipper "github.com/ochanuco/x-clipper"
)

// Run executes the file command.
func (c *FileCmd) Run(deps *Dependencies) error {
	html, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", c.Path, err)
	}

	result, err := deps.Clipper.ClipHTML(deps.Ctx, string(html), c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %s\n", result.PageURL)
	return nil
}
