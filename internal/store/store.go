// Package store is the persistent, on-disk backing store for a repository's
// code index: SQLite with WAL journaling, an FTS5 shadow table for lexical
// search, and a sqlite-vec virtual table for dense vector search.
package store

import (
	"database/sql"
	"time"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func init() {
	sqlitevec.Auto()
}

// Store wraps the SQLite connection backing one repository's index.
type Store struct {
	db  *sql.DB
	dim int
}

// Open opens (creating if necessary) the SQLite database at path, enables
// WAL journaling and foreign keys, runs any pending migrations, and
// provisions the vector table for the given embedding dimensionality.
func Open(path string, dim int) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "open database", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, indexerr.Wrap(indexerr.StoreIOError, "apply pragma "+pragma, err)
		}
	}

	s := &Store{db: db, dim: dim}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.ensureVectorTable(dim); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for callers (e.g. symindex, graph
// queries) that need direct read access outside the Store's own API.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Vacuum reclaims free space and defragments the database file. Intended
// for the "doctor" maintenance path, not the hot indexing path.
func (s *Store) Vacuum() error {
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "vacuum", err)
	}
	return nil
}

// Analyze refreshes SQLite's query planner statistics.
func (s *Store) Analyze() error {
	if _, err := s.db.Exec("ANALYZE"); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "analyze", err)
	}
	return nil
}
