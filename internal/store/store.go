// Package store provides the SQLite database behind typedesc: a cache of
// remote explanations and the table the undo journal writes to.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS explain_cache (
	key      TEXT PRIMARY KEY,
	model    TEXT NOT NULL,
	result   TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_deltas (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path    TEXT NOT NULL,
	revision     INTEGER NOT NULL,
	old_content  BLOB,
	new_content  BLOB NOT NULL,
	created      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_explain_created ON explain_cache(created);
CREATE INDEX IF NOT EXISTS idx_deltas_path ON file_deltas(file_path);
`

// Cache is a SQLite-backed cache for explanations.
type Cache struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens a database at the given path.
// ttl controls how long explanations remain fresh.
func Open(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	// Journals written before revisions were tracked cannot be undone safely.
	if tableExists(db, "file_deltas") && !hasColumn(db, "file_deltas", "revision") {
		db.Exec("DROP TABLE file_deltas") //nolint:errcheck // best-effort migration
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	c := &Cache{db: db, ttl: ttl}
	c.purgeStale()
	return c, nil
}

// DB exposes the underlying database for the undo journal.
func (c *Cache) DB() *sql.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close closes the database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives the cache key of an explanation request. The same snippet asked
// of another model or in another language is a different entry.
func Key(model, language, snippet string) string {
	h := sha256.New()
	for _, part := range []string{model, language, snippet} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached explanation, or "" if miss/stale.
// Safe to call on a nil receiver (returns miss).
func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl).Unix()
	var result string
	err := c.db.QueryRow(
		"SELECT result FROM explain_cache WHERE key = ? AND created > ?",
		key, cutoff,
	).Scan(&result)
	if err != nil {
		return "", false
	}
	return result, true
}

// Set stores an explanation. No-op on nil receiver.
func (c *Cache) Set(key, model, result string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO explain_cache (key, model, result, created) VALUES (?, ?, ?, ?)",
		key, model, result, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("model", model).Msg("failed to cache explanation")
	}
}

func tableExists(db *sql.DB, table string) bool {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	return err == nil
}

// hasColumn checks if a table has a specific column.
func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table)) //nolint:gosec // table name is hardcoded by caller
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// purgeStale removes explanations older than the TTL. Undo records are kept.
func (c *Cache) purgeStale() {
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.Exec("DELETE FROM explain_cache WHERE created <= ?", cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge stale explanations")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("purged stale explanations")
	}
}
