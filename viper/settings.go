// Package viper loads capture settings from a YAML file and the
// environment.
package viper

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	xclipper "github.com/ochanuco/x-clipper"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables the service reads,
// e.g. X_CLIPPER_NOTION_API_KEY.
const EnvPrefix = "X_CLIPPER"

// Ensure SettingsService implements xclipper.SettingsService at compile time.
var _ xclipper.SettingsService = (*SettingsService)(nil)

// SettingsService reads settings from a YAML config file, with
// environment variables taking precedence over file values. The file is
// re-read on every call so edits apply without a restart; a missing file
// is fine as long as the environment carries the required values.
type SettingsService struct {
	path string
}

// NewSettingsService creates a service reading the config file at path.
// An empty path reads "config.yaml" in the working directory.
func NewSettingsService(path string) *SettingsService {
	if path == "" {
		path = "config.yaml"
	}
	return &SettingsService{path: path}
}

// Settings loads the current settings.
func (s *SettingsService) Settings(ctx context.Context) (*xclipper.Settings, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := xclipper.DefaultPropertyMap()
	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.api_version", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("notion.properties.title", defaults.Title)
	v.SetDefault("notion.properties.author", defaults.Author)
	v.SetDefault("notion.properties.handle", defaults.Handle)
	v.SetDefault("notion.properties.post_url", defaults.PostURL)
	v.SetDefault("notion.properties.posted_at", defaults.PostedAt)
	v.SetDefault("cache.ttl_days", 0)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment may carry
		// everything needed.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, xclipper.Errorf(xclipper.EINVALID, "reading config file: %v", err)
		}
	}

	return &xclipper.Settings{
		APIKey:     v.GetString("notion.api_key"),
		APIVersion: v.GetString("notion.api_version"),
		DatabaseID: v.GetString("notion.database_id"),
		PropertyMap: xclipper.PropertyMap{
			Title:    v.GetString("notion.properties.title"),
			Author:   v.GetString("notion.properties.author"),
			Handle:   v.GetString("notion.properties.handle"),
			PostURL:  v.GetString("notion.properties.post_url"),
			PostedAt: v.GetString("notion.properties.posted_at"),
		},
		CacheTTLDays: v.GetInt("cache.ttl_days"),
	}, nil
}
