// Package cache keeps fetched article HTML in a local SQLite database so
// revisiting a page does not hit the network.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Article is one cached page.
type Article struct {
	Key       string // language-qualified identifier, e.g. "en:Go (programming language)"
	Title     string
	PageID    int64
	RevID     int64
	HTML      string
	FetchedAt time.Time
}

// Store is an article cache backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS article_index (
	key        TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	page_id    INTEGER NOT NULL DEFAULT 0,
	rev_id     INTEGER NOT NULL DEFAULT 0,
	html       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS article_index_updated ON article_index(updated_at);
`

// Open opens or creates the cache database at path. ":memory:" is accepted
// for a throwaway cache.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the article stored under key. Entries older than maxAge are
// reported as missing; a zero maxAge accepts any age.
func (s *Store) Get(key string, maxAge time.Duration) (Article, bool, error) {
	var a Article
	var updated int64
	err := s.db.QueryRow(
		"SELECT key, title, page_id, rev_id, html, updated_at FROM article_index WHERE key = ?",
		key,
	).Scan(&a.Key, &a.Title, &a.PageID, &a.RevID, &a.HTML, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, false, nil
	}
	if err != nil {
		return Article{}, false, fmt.Errorf("reading cached article %q: %w", key, err)
	}

	a.FetchedAt = time.Unix(updated, 0)
	if maxAge > 0 && s.now().Sub(a.FetchedAt) > maxAge {
		return Article{}, false, nil
	}
	return a, true, nil
}

// Put stores a, replacing any previous entry for the same key. A zero
// FetchedAt is stamped with the current time.
func (s *Store) Put(a Article) error {
	if a.FetchedAt.IsZero() {
		a.FetchedAt = s.now()
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO article_index (key, title, page_id, rev_id, html, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.Key, a.Title, a.PageID, a.RevID, a.HTML, a.FetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("caching article %q: %w", a.Key, err)
	}
	return nil
}

// Delete removes the entry for key, if any.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM article_index WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting cached article %q: %w", key, err)
	}
	return nil
}

// Prune removes entries older than maxAge and returns how many went.
func (s *Store) Prune(maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	res, err := s.db.Exec("DELETE FROM article_index WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return n, nil
}

// Count returns the number of cached articles.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM article_index").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache: %w", err)
	}
	return n, nil
}
