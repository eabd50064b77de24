package main

import (
	"fmt"

	xclipper "github.com/ochanuco/x-clipper"
)

// Run executes the clip command.
func (c *ClipCmd) Run(deps *Dependencies) error {
	result, err := deps.Clipper.ClipURL(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %s\n", result.PageURL)
	return nil
}
