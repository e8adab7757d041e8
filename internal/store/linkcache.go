package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	// SQLite driver for the resolver link cache.
	_ "github.com/mattn/go-sqlite3"
)

const linkCacheSchema = `
CREATE TABLE IF NOT EXISTS resolved_links (
	track_key   TEXT NOT NULL,
	target      TEXT NOT NULL,
	link        TEXT NOT NULL,
	resolved_at TIMESTAMP NOT NULL,
	PRIMARY KEY (track_key, target)
);`

// LinkCache persists resolved links in SQLite so re-resolving a playlist
// skips the page round-trip for tracks matched on an earlier run.
type LinkCache struct {
	db *sql.DB
}

// OpenLinkCache opens (creating if needed) the cache database at path.
func OpenLinkCache(path string) (*LinkCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open link cache: %w", err)
	}

	if _, err := db.Exec(linkCacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize link cache schema: %w", err)
	}

	return &LinkCache{db: db}, nil
}

// Get returns the cached link for a track key and target platform, if any.
func (c *LinkCache) Get(trackKey, target string) (string, bool, error) {
	var link string
	err := c.db.QueryRow(
		`SELECT link FROM resolved_links WHERE track_key = ? AND target = ?`,
		trackKey, target,
	).Scan(&link)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query link cache: %w", err)
	}

	return link, true, nil
}

// Put stores a resolved link, replacing any earlier entry for the same track
// and target.
func (c *LinkCache) Put(trackKey, target, link string) error {
	_, err := c.db.Exec(
		`INSERT INTO resolved_links (track_key, target, link, resolved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (track_key, target) DO UPDATE SET link = excluded.link, resolved_at = excluded.resolved_at`,
		trackKey, target, link, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write link cache: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *LinkCache) Close() error {
	return c.db.Close()
}
