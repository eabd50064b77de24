// Package xclipper captures a single social-media post rendered in a
// browser tab, extracts a structured record of its content and media,
// durably stages the post's media assets, and publishes the record into
// a Notion database.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, notion/).
package xclipper
