package main

import (
	"context"
	"io"
	"log/slog"

	xclipper "github.com/ochanuco/x-clipper"
	"github.com/ochanuco/x-clipper/clip"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Cache    xclipper.AssetCache
	Settings xclipper.SettingsService
	Clipper  *clip.Clipper
	Janitor  *clip.Janitor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config string `help:"Config file path" type:"path"`

	Clip  ClipCmd  `cmd:"" help:"Capture a post by URL and publish it"`
	File  FileCmd  `cmd:"" help:"Capture a post from a saved HTML file"`
	Cache CacheCmd `cmd:"" help:"Manage the asset cache"`
	Check CheckCmd `cmd:"" help:"Validate the configured settings"`
}

// ClipCmd is the "clip" subcommand.
type ClipCmd struct {
	URL    string `arg:"" help:"Post permalink (x.com or twitter.com)"`
	Static bool   `help:"Fetch over plain HTTP instead of a headless browser"`
}

// FileCmd is the "file" subcommand.
type FileCmd struct {
	Path string `arg:"" type:"existingfile" help:"Rendered HTML file"`
	URL  string `help:"Page URL the HTML was rendered from" default:"https://x.com"`
}

// CacheCmd groups the cache management subcommands.
type CacheCmd struct {
	List  CacheListCmd  `cmd:"" help:"List cached assets"`
	Evict CacheEvictCmd `cmd:"" help:"Evict expired cached assets"`
}

// CacheListCmd is the "cache list" subcommand.
type CacheListCmd struct{}

// CacheEvictCmd is the "cache evict" subcommand.
type CacheEvictCmd struct {
	TTLDays int `help:"Evict entries older than this many days instead of the configured TTL"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}
