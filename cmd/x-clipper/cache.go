package main

import (
	"fmt"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

// Run executes the cache list command.
func (c *CacheListCmd) Run(deps *Dependencies) error {
	entries, err := deps.Cache.List(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "Cache is empty.")
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n",
			entry.CreatedAt.Format(time.RFC3339), entry.Label, entry.FileName, entry.SourceURL)
	}

	return nil
}

// Run executes the cache evict command.
func (c *CacheEvictCmd) Run(deps *Dependencies) error {
	var (
		evicted int
		err     error
	)
	if c.TTLDays > 0 {
		evicted, err = deps.Cache.EvictExpired(deps.Ctx, time.Duration(c.TTLDays)*24*time.Hour)
	} else {
		evicted, err = deps.Janitor.Sweep(deps.Ctx)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", xclipper.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Evicted %d expired cached assets.\n", evicted)
	return nil
}
