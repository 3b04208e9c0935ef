// Package sqlitedb opens a modernc.org/sqlite connection with the PRAGMAs
// this codebase always wants, adapted from internal/database's Open().
package sqlitedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// MaxOpenConns caps concurrent connections. SQLite WAL mode still only
	// allows one writer at a time, so a large pool just adds lock
	// contention.
	MaxOpenConns = 8
	MaxIdleConns = 4
)

// Open opens or creates a SQLite database at path, with busy_timeout, WAL,
// synchronous=NORMAL, and foreign_keys pragmas embedded in the DSN so every
// pooled connection picks them up (PRAGMAs are per-connection; database/sql
// creates connections lazily).
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("open sqlite db: create directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite db: ping: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite db: chmod: %w", err)
	}
	return db, nil
}
