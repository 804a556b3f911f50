// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheDBFile = "cache.db"

// Cache is a SQLite-backed response cache keyed by (source, query key)
// with per-entry freshness checked against a caller-supplied TTL. Cache
// I/O failures are logged and treated as misses; the pipeline continues
// correctly (slower) with caching effectively disabled.
//
// The sampler also stores its merged batches here under a reserved
// pseudo-source name, so repeated shuffle attempts within the batch TTL
// reuse the same sample.
type Cache struct {
	db *sql.DB
	w  io.Writer
}

// OpenCache opens or creates the cache database at dir/cache.db.
// Warnings about failed reads and writes go to w.
func OpenCache(dir string, w io.Writer) (*Cache, error) {
	if w == nil {
		w = io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, cacheDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS responses (
		source TEXT NOT NULL,
		query_key TEXT NOT NULL,
		payload BLOB NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (source, query_key)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db, w: w}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached payload for (source, key) if it is younger than
// ttl. Any database error is logged and reported as a miss.
func (c *Cache) Get(source, key string, ttl time.Duration) ([]byte, bool) {
	var payload []byte
	var fetchedAt string
	err := c.db.QueryRow(
		`SELECT payload, fetched_at FROM responses WHERE source = ? AND query_key = ?`,
		source, key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		fmt.Fprintf(c.w, "warning: cache read for %s failed: %v\n", source, err)
		return nil, false
	}

	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil || time.Since(t) > ttl {
		return nil, false
	}
	return payload, true
}

// Put stores the payload for (source, key), replacing any prior entry.
// Write failures are logged and swallowed.
func (c *Cache) Put(source, key string, payload []byte) {
	_, err := c.db.Exec(
		`INSERT INTO responses (source, query_key, payload, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(source, query_key) DO UPDATE SET
			payload=excluded.payload, fetched_at=excluded.fetched_at`,
		source, key, payload, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		fmt.Fprintf(c.w, "warning: cache write for %s failed: %v\n", source, err)
	}
}
