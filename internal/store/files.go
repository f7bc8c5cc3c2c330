package store

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// UpsertFile inserts or updates a file record, returning its file_id.
func (s *Store) UpsertFile(f model.File) (string, error) {
	existing, err := s.FileIDByPath(f.Path)
	if err != nil {
		return "", err
	}
	if existing != "" {
		_, err := s.db.Exec(`
			UPDATE files
			SET language = ?, mtime_ms = ?, indexed_at_ms = ?, size_bytes = ?, content_hash = ?
			WHERE file_id = ?`,
			f.Language, f.MTimeMillis, f.IndexedAtMs, f.SizeBytes, f.ContentHash, existing,
		)
		if err != nil {
			return "", indexerr.Wrap(indexerr.StoreIOError, "update file "+f.Path, err)
		}
		return existing, nil
	}

	id := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO files (file_id, file_path, language, mtime_ms, indexed_at_ms, size_bytes, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.Path, f.Language, f.MTimeMillis, f.IndexedAtMs, f.SizeBytes, f.ContentHash,
	)
	if err != nil {
		return "", indexerr.Wrap(indexerr.StoreIOError, "insert file "+f.Path, err)
	}
	return id, nil
}

// FileIDByPath returns the file_id for path, or "" if not indexed.
func (s *Store) FileIDByPath(path string) (string, error) {
	var id string
	err := s.db.QueryRow("SELECT file_id FROM files WHERE file_path = ?", path).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", indexerr.Wrap(indexerr.StoreIOError, "lookup file "+path, err)
	}
	return id, nil
}

// DeleteFile removes a file and, via ON DELETE CASCADE, its chunks.
func (s *Store) DeleteFile(path string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE file_path = ?", path)
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "delete file "+path, err)
	}
	return nil
}

// AllFiles returns every indexed file record, used by mtime-based refresh
// to detect deletions (paths on disk vs. paths in the store).
func (s *Store) AllFiles() ([]model.File, error) {
	rows, err := s.db.Query("SELECT file_path, language, mtime_ms, indexed_at_ms, size_bytes, content_hash FROM files")
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "list files", err)
	}
	defer rows.Close()

	var out []model.File
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.Path, &f.Language, &f.MTimeMillis, &f.IndexedAtMs, &f.SizeBytes, &f.ContentHash); err != nil {
			return nil, indexerr.Wrap(indexerr.StoreIOError, "scan file row", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
