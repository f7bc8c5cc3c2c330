package store

import "github.com/mvp-joe/project-cortex/internal/indexerr"

// ClearAll empties files, chunks, the FTS shadow, and the vector table,
// used by the Incremental Indexer's full-index path to start from a clean
// store before walking the project tree.
func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "begin clear tx", err)
	}

	// chunks cascades from files via ON DELETE CASCADE, and the FTS shadow
	// follows chunks via the AFTER DELETE trigger.
	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		tx.Rollback()
		return indexerr.Wrap(indexerr.StoreIOError, "clear files", err)
	}
	if _, err := tx.Exec("DELETE FROM vec_embeddings"); err != nil {
		tx.Rollback()
		return indexerr.Wrap(indexerr.StoreIOError, "clear vec_embeddings", err)
	}
	if _, err := tx.Exec("DELETE FROM symbols"); err != nil {
		tx.Rollback()
		return indexerr.Wrap(indexerr.StoreIOError, "clear symbols", err)
	}
	if _, err := tx.Exec("DELETE FROM calls"); err != nil {
		tx.Rollback()
		return indexerr.Wrap(indexerr.StoreIOError, "clear calls", err)
	}

	if err := tx.Commit(); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "commit clear tx", err)
	}
	return nil
}
