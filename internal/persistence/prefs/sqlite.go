package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite mirrors the prefs table in memory and flushes written keys on Save.
type SQLite struct {
	values
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty prefs db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefs schema: %w", err)
	}

	s := &SQLite{db: db}
	s.init()
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT key, value FROM prefs`)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("load prefs: %w", err)
		}
		s.kv[k] = v
	}
	return rows.Err()
}

// Save writes every pending key in one transaction. Keys stay pending until it commits.
func (s *SQLite) Save() error {
	dirty := s.pending()
	if len(dirty) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO prefs(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for k, v := range dirty {
		if _, err := stmt.Exec(k, v); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save pref %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.markSaved(dirty)
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
