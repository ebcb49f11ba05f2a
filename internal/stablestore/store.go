// Package stablestore provides a SQLite-backed reference implementation of
// the read-only stable UTXO store that patchdb.Patch treats as an external
// collaborator: the durable baseline a speculative patch is built against
// and eventually applied to.
package stablestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/klingon-exchange/klingon-v2/internal/patchdb"
)

// Store is the durable baseline backing a patchdb.StableView. Writes only
// ever happen through ApplyPatch, when a patch's owning block becomes
// stable; reads serve patchdb.SnapshotFromStable, whose snapshot is then
// checked with Patch.ValidateAgainstStable.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Config holds storage configuration.
type Config struct {
	DataDir string
}

// New opens (creating if necessary) the SQLite database backing a Store.
func New(cfg *Config) (*Store, error) {
	dataDir := expandPath(cfg.DataDir)

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "stable.db")

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stable_utxo (
		tx_hash TEXT NOT NULL,
		idx     INTEGER NOT NULL,
		value   INTEGER NOT NULL,
		script  BLOB,
		PRIMARY KEY (tx_hash, idx)
	);

	CREATE TABLE IF NOT EXISTS stable_contract (
		address      TEXT PRIMARY KEY,
		group_id     INTEGER NOT NULL,
		data_buffer  BLOB
	);

	CREATE TABLE IF NOT EXISTS stable_receipt (
		tx_hash TEXT PRIMARY KEY,
		payload BLOB
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
