package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
	xclipper "github.com/ochanuco/x-clipper"
)

// Compile-time interface verification.
var _ xclipper.AssetCache = (*AssetCache)(nil)

// AssetCache implements xclipper.AssetCache using SQLite.
type AssetCache struct {
	db *DB
}

// NewAssetCache creates a new AssetCache.
func NewAssetCache(db *DB) *AssetCache {
	return &AssetCache{db: db}
}

// hashBlob computes xxHash of the blob and returns a hex string.
func hashBlob(blob []byte) string {
	h := xxhash.Sum64(blob)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// Put stores an entry, replacing any existing entry with the same file name.
func (c *AssetCache) Put(ctx context.Context, entry *xclipper.CacheEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	entry.CreatedAt = time.Now().UTC()

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assets (file_name, blob, source_url, label, content_type, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.FileName, entry.Blob, entry.SourceURL, entry.Label, entry.ContentType,
		hashBlob(entry.Blob), entry.CreatedAt.Format(time.RFC3339))

	return err
}

// Get retrieves an entry by file name.
func (c *AssetCache) Get(ctx context.Context, fileName string) (*xclipper.CacheEntry, error) {
	var entry xclipper.CacheEntry
	var createdAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT file_name, blob, source_url, label, content_type, created_at
		FROM assets
		WHERE file_name = ?
	`, fileName).Scan(&entry.FileName, &entry.Blob, &entry.SourceURL, &entry.Label,
		&entry.ContentType, &createdAt)

	if err == sql.ErrNoRows {
		return nil, xclipper.Errorf(xclipper.ENOTFOUND, "cached asset not found")
	}
	if err != nil {
		return nil, err
	}

	entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "failed to parse created_at: %v", err)
	}

	return &entry, nil
}

// GetBySourceURL retrieves the most recently stored entry for a source
// URL.
func (c *AssetCache) GetBySourceURL(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error) {
	var entry xclipper.CacheEntry
	var createdAt string

	err := c.db.QueryRowContext(ctx, `
		SELECT file_name, blob, source_url, label, content_type, created_at
		FROM assets
		WHERE source_url = ?
		ORDER BY created_at DESC, file_name ASC
		LIMIT 1
	`, sourceURL).Scan(&entry.FileName, &entry.Blob, &entry.SourceURL, &entry.Label,
		&entry.ContentType, &createdAt)

	if err == sql.ErrNoRows {
		return nil, xclipper.Errorf(xclipper.ENOTFOUND, "cached asset not found")
	}
	if err != nil {
		return nil, err
	}

	entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "failed to parse created_at: %v", err)
	}

	return &entry, nil
}

// Delete removes an entry. Deleting a missing entry is a no-op.
func (c *AssetCache) Delete(ctx context.Context, fileName string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM assets WHERE file_name = ?", fileName)
	return err
}

// List returns all entries ordered by creation time, newest first. Blobs
// are omitted.
func (c *AssetCache) List(ctx context.Context) ([]*xclipper.CacheEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT file_name, source_url, label, content_type, created_at
		FROM assets
		ORDER BY created_at DESC, file_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*xclipper.CacheEntry
	for rows.Next() {
		var entry xclipper.CacheEntry
		var createdAt string

		if err := rows.Scan(&entry.FileName, &entry.SourceURL, &entry.Label,
			&entry.ContentType, &createdAt); err != nil {
			return nil, err
		}

		entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, xclipper.Errorf(xclipper.EINTERNAL, "failed to parse created_at: %v", err)
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// EvictExpired removes entries older than ttl and returns the count.
func (c *AssetCache) EvictExpired(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl).Format(time.RFC3339)

	result, err := c.db.ExecContext(ctx, "DELETE FROM assets WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}
