// Package sqlite provides a SQLite-backed key/value store for the session credential.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domain "backoffice/console/internal/domain/session"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS session_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store implements domain.KeyValueStore on a single SQLite table.
type Store struct {
	db *sql.DB
}

var _ domain.KeyValueStore = (*Store)(nil)

// Open opens (or creates) the SQLite file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads every key inside one transaction so a concurrent Put from
// another process is seen entirely or not at all.
func (s *Store) Get(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	err := s.inTx(func(tx *sql.Tx) error {
		for _, k := range keys {
			var v string
			err := tx.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, k).Scan(&v)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return err
			}
			out[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Put(entries map[string]string) error {
	return s.inTx(func(tx *sql.Tx) error {
		for k, v := range entries {
			_, err := tx.Exec(`
INSERT INTO session_kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Delete(keys ...string) error {
	return s.inTx(func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.Exec(`DELETE FROM session_kv WHERE key = ?`, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
