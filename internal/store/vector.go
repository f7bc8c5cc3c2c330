package store

import (
	"database/sql"
	"fmt"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// ensureVectorTable provisions the vec_embeddings virtual table for the
// store's configured embedding dimensionality. sqlite-vec's vec0 tables
// cannot be resized after creation, so dim is fixed for the life of the
// database (spec §4.K model dimension mismatch is a StoreIOError).
func (s *Store) ensureVectorTable(dim int) error {
	createSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS vec_embeddings USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		)
	`, dim)
	if _, err := s.db.Exec(createSQL); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "create vec_embeddings table", err)
	}
	return nil
}

// UpsertEmbeddings replaces the vector row for each embedding's ChunkID.
// vec0 virtual tables have no native upsert, so each row is deleted then
// re-inserted inside the caller's transaction.
func UpsertEmbeddings(tx *sql.Tx, embeddings []model.EmbeddingVector) error {
	if len(embeddings) == 0 {
		return nil
	}

	del, err := tx.Prepare("DELETE FROM vec_embeddings WHERE chunk_id = ?")
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "prepare vector delete", err)
	}
	defer del.Close()

	ins, err := tx.Prepare("INSERT INTO vec_embeddings (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "prepare vector insert", err)
	}
	defer ins.Close()

	for _, e := range embeddings {
		if err := e.Validate(); err != nil {
			return indexerr.Wrap(indexerr.EmbeddingProviderError, "validate embedding for "+e.ChunkID, err)
		}
		raw, err := sqlitevec.SerializeFloat32(e.Vector)
		if err != nil {
			return indexerr.Wrap(indexerr.StoreIOError, "serialize embedding for "+e.ChunkID, err)
		}
		if _, err := del.Exec(e.ChunkID); err != nil {
			return indexerr.Wrap(indexerr.StoreIOError, "delete old embedding for "+e.ChunkID, err)
		}
		if _, err := ins.Exec(e.ChunkID, raw); err != nil {
			return indexerr.Wrap(indexerr.StoreIOError, "insert embedding for "+e.ChunkID, err)
		}
	}
	return nil
}

// VectorMatch is one nearest-neighbor hit from a KNN query.
type VectorMatch struct {
	ChunkID  string
	Distance float64
}

// QueryVectorSimilarity returns the k nearest chunk embeddings to query by
// cosine distance (the embedding column is declared with distance_metric=cosine).
func (s *Store) QueryVectorSimilarity(query []float32, k int) ([]VectorMatch, error) {
	raw, err := sqlitevec.SerializeFloat32(query)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "serialize query vector", err)
	}

	rows, err := s.db.Query(`
		SELECT chunk_id, distance
		FROM vec_embeddings
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, raw, k)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "query vector similarity", err)
	}
	defer rows.Close()

	var out []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.ChunkID, &m.Distance); err != nil {
			return nil, indexerr.Wrap(indexerr.StoreIOError, "scan vector match", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "iterate vector matches", err)
	}
	return out, nil
}

// DeleteEmbeddingsForChunks removes vector rows for the given chunk IDs,
// used by the incremental engine's delete-before-add ordering.
func DeleteEmbeddingsForChunks(tx *sql.Tx, chunkIDs []string) error {
	stmt, err := tx.Prepare("DELETE FROM vec_embeddings WHERE chunk_id = ?")
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "prepare vector delete", err)
	}
	defer stmt.Close()
	for _, id := range chunkIDs {
		if _, err := stmt.Exec(id); err != nil {
			return indexerr.Wrap(indexerr.StoreIOError, "delete embedding for "+id, err)
		}
	}
	return nil
}
