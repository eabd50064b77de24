package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	xclipper "github.com/ochanuco/x-clipper"
	"github.com/ochanuco/x-clipper/bloom"
	"github.com/ochanuco/x-clipper/clip"
	"github.com/ochanuco/x-clipper/goquery"
	xhttp "github.com/ochanuco/x-clipper/http"
	"github.com/ochanuco/x-clipper/notion"
	"github.com/ochanuco/x-clipper/rod"
	xslog "github.com/ochanuco/x-clipper/slog"
	"github.com/ochanuco/x-clipper/sqlite"
	"github.com/ochanuco/x-clipper/viper"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Config file path. Set before calling Run().
	ConfigPath string

	// SQLite database backing the asset cache.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Cache    xclipper.AssetCache
	Settings xclipper.SettingsService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("x-clipper"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'x-clipper --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	deps.Logger = logger

	// Open the asset cache database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set X_CLIPPER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Cache = xslog.NewLoggingCache(sqlite.NewAssetCache(m.DB), logger)
	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}
	m.Settings = viper.NewSettingsService(m.ConfigPath)

	deps.Cache = m.Cache
	deps.Settings = m.Settings
	deps.Janitor = &clip.Janitor{
		Cache:    m.Cache,
		Settings: m.Settings,
		Logger:   logger,
	}

	// Expired entries are evicted on every start, not only on demand.
	if _, err := deps.Janitor.Sweep(ctx); err != nil {
		logger.Warn("cache eviction failed", "error", err)
	}

	downloader := xslog.NewLoggingDownloader(xhttp.NewDownloader(
		xhttp.WithCache(m.Cache),
		xhttp.WithLimiter(xhttp.NewDomainLimiter(2.0)),
		xhttp.WithLogger(logger),
	), logger)

	publisher := xslog.NewLoggingPublisher(notion.NewClient(
		notion.WithDownloader(downloader),
		notion.WithCache(m.Cache),
		notion.WithLogger(logger),
	), logger)

	deps.Clipper = &clip.Clipper{
		Extractor: goquery.NewExtractor(),
		Publisher: publisher,
		Settings:  m.Settings,
		Seen:      bloom.NewFilter(10000, 0.01),
		Logger:    logger,
	}

	// Only the clip command renders live pages, and a browser is only
	// worth launching for it.
	if kongCtx.Command() == "clip <url>" {
		if cli.Clip.Static {
			deps.Clipper.Fetcher = xslog.NewLoggingFetcher(xhttp.NewFetcher(), logger)
		} else {
			fetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			defer fetcher.Close()

			deps.Clipper.Fetcher = xslog.NewLoggingFetcher(fetcher, logger)
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("X_CLIPPER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "x-clipper.db"
	}
	dir := filepath.Join(home, ".x-clipper")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cache.db")
}

func defaultConfigPath() string {
	if path := os.Getenv("X_CLIPPER_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".x-clipper", "config.yaml")
}
