package xclipper

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// DefaultNotionVersion is the API version header sent when the settings
// leave it unset.
const DefaultNotionVersion = "2025-09-03"

// DefaultCacheTTL is the asset cache retention applied when the settings
// leave it unset.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PropertyMap maps logical post fields to remote database property names.
// An empty name omits the field from the created page.
type PropertyMap struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Handle   string `json:"handle"`
	PostURL  string `json:"postUrl"`
	PostedAt string `json:"postedAt"`
}

// DefaultPropertyMap returns the property names the original database
// template uses.
func DefaultPropertyMap() PropertyMap {
	return PropertyMap{
		Title:    "Name",
		Author:   "Screen Name",
		Handle:   "Username",
		PostURL:  "Tweet URL",
		PostedAt: "Posted At",
	}
}

// Settings holds the remote API credentials and capture configuration.
// The core reads settings at capture time and never mutates them.
type Settings struct {
	// APIKey is the bearer credential for the remote document API.
	APIKey string `json:"apiKey"`

	// APIVersion is the remote API version header.
	// Defaults to DefaultNotionVersion when empty.
	APIVersion string `json:"apiVersion"`

	// DatabaseID identifies the target database. Accepted in any of the
	// forms NormalizeDatabaseID understands.
	DatabaseID string `json:"databaseId"`

	// PropertyMap maps logical fields to database property names.
	PropertyMap PropertyMap `json:"propertyMap"`

	// CacheTTLDays controls asset cache expiry. Zero means the default.
	CacheTTLDays int `json:"cacheTtlDays"`
}

// Validate returns an error if the settings cannot support a publish.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.APIKey) == "" {
		return Errorf(EINVALID, "API key required")
	}
	if strings.TrimSpace(s.DatabaseID) == "" {
		return Errorf(EINVALID, "database ID required")
	}
	if _, err := NormalizeDatabaseID(s.DatabaseID); err != nil {
		return err
	}
	return nil
}

// CacheTTL returns the configured cache retention as a duration.
func (s *Settings) CacheTTL() time.Duration {
	if s.CacheTTLDays <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(s.CacheTTLDays) * 24 * time.Hour
}

// Version returns the API version header value to send.
func (s *Settings) Version() string {
	if v := strings.TrimSpace(s.APIVersion); v != "" {
		return v
	}
	return DefaultNotionVersion
}

// SettingsService provides read-only access to capture settings.
type SettingsService interface {
	Settings(ctx context.Context) (*Settings, error)
}

var databaseIDPattern = regexp.MustCompile(
	`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9a-fA-F]{32}`)

// NormalizeDatabaseID extracts a database ID from raw and returns it as
// 32 lowercase hex characters. Raw may be a bare ID, a hyphenated UUID,
// or a database URL embedding either. Returns EINVALID if no ID is found.
func NormalizeDatabaseID(raw string) (string, error) {
	match := databaseIDPattern.FindString(raw)
	if match == "" {
		return "", Errorf(EINVALID, "no database ID found in %q", raw)
	}
	return strings.ToLower(strings.ReplaceAll(match, "-", "")), nil
}
