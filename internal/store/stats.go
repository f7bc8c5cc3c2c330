package store

import "github.com/mvp-joe/project-cortex/internal/indexerr"

// Stats summarizes the current state of the store, surfaced by the
// "doctor" CLI command and by incremental-refresh reporting.
type Stats struct {
	FileCount     int
	ChunkCount    int
	EmbeddingCount int
	SchemaVersion string
	ByLanguage    map[string]int
	ByKind        map[string]int
}

// Stats computes repository-wide counts in a handful of cheap aggregate
// queries.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	st.ByLanguage = map[string]int{}
	st.ByKind = map[string]int{}

	if err := s.db.QueryRow("SELECT COUNT(1) FROM files").Scan(&st.FileCount); err != nil {
		return st, indexerr.Wrap(indexerr.StoreIOError, "count files", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(1) FROM chunks").Scan(&st.ChunkCount); err != nil {
		return st, indexerr.Wrap(indexerr.StoreIOError, "count chunks", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(1) FROM vec_embeddings").Scan(&st.EmbeddingCount); err != nil {
		return st, indexerr.Wrap(indexerr.StoreIOError, "count embeddings", err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return st, err
	}
	st.SchemaVersion = version

	rows, err := s.db.Query("SELECT language, COUNT(1) FROM chunks GROUP BY language")
	if err != nil {
		return st, indexerr.Wrap(indexerr.StoreIOError, "count chunks by language", err)
	}
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			rows.Close()
			return st, indexerr.Wrap(indexerr.StoreIOError, "scan language count", err)
		}
		st.ByLanguage[lang] = n
	}
	rows.Close()

	rows, err = s.db.Query("SELECT kind, COUNT(1) FROM chunks GROUP BY kind")
	if err != nil {
		return st, indexerr.Wrap(indexerr.StoreIOError, "count chunks by kind", err)
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return st, indexerr.Wrap(indexerr.StoreIOError, "scan kind count", err)
		}
		st.ByKind[kind] = n
	}
	rows.Close()

	return st, rows.Err()
}
