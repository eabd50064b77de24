package main

import (
	"fmt"

	xclipper "github.com/ochanuco/x-clipper"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	settings, err := deps.Settings.Settings(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	databaseID, err := xclipper.NormalizeDatabaseID(settings.DatabaseID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Settings OK.")
	fmt.Fprintf(deps.Stdout, "  database:    %s\n", databaseID)
	fmt.Fprintf(deps.Stdout, "  API version: %s\n", settings.Version())
	fmt.Fprintf(deps.Stdout, "  cache TTL:   %s\n", settings.CacheTTL())
	return nil
}
