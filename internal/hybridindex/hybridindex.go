// Package hybridindex fans a chunk out into two independently queryable
// indexes: a lexical index (FTS5 by default, bleve as an alternate
// backend) and a dense vector index (an embedding provider plus the
// store's sqlite-vec table, warmed by an in-process chromem-go cache).
// Both sides are idempotent on (chunkId, modelId, chunkHash): re-adding an
// unchanged chunk is a no-op.
package hybridindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/mvp-joe/project-cortex/internal/embedding"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/store"
)

// LexicalBackend is satisfied by the store's FTS5-backed query path and by
// the bleve-backed alternate (see bleve.go).
type LexicalBackend interface {
	Index(chunk model.Chunk) error
	Delete(chunkID string) error
	Search(query string, limit int) ([]model.RankingCandidate, error)
}

// Index is the hybrid lexical+dense index for one repository.
type Index struct {
	mu sync.RWMutex

	store    *store.Store
	lexical  LexicalBackend
	provider embedding.Provider

	warmDB         *chromem.DB
	warmCollection *chromem.Collection

	seen map[string]string // chunkID -> modelId/chunkHash key already added
}

// Open wires a hybrid index to its store, lexical backend, and embedding
// provider, and creates the warm in-process vector cache.
func Open(st *store.Store, lexical LexicalBackend, provider embedding.Provider) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("chunks", nil, nil)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create warm vector collection", err)
	}

	return &Index{
		store:          st,
		lexical:        lexical,
		provider:       provider,
		warmDB:         db,
		warmCollection: collection,
		seen:           map[string]string{},
	}, nil
}

// idempotencyKey returns the value that identity-checks an add: the same
// chunk, under the same model, with the same content hash, is a no-op.
func idempotencyKey(chunkID, modelID, chunkHash string) string {
	return fmt.Sprintf("%s/%s/%s", chunkID, modelID, chunkHash)
}

// Add indexes chunk into both the lexical and vector sides. If the chunk
// was already added under the same model and content hash, Add is a no-op.
func (idx *Index) Add(ctx context.Context, chunk model.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := idempotencyKey(chunk.ID, idx.provider.ModelID(), chunk.ChunkHash)
	if idx.seen[chunk.ID] == key {
		return nil
	}

	if err := idx.lexical.Index(chunk); err != nil {
		return err
	}

	vector, err := idx.provider.Embed(ctx, chunk.NormalizedContent)
	if err != nil {
		return indexerr.Wrap(indexerr.EmbeddingProviderError, "embed chunk "+chunk.Name, err)
	}

	vec := model.EmbeddingVector{
		ChunkID:      chunk.ID,
		ModelID:      idx.provider.ModelID(),
		ModelVersion: idx.provider.ModelVersion(),
		ChunkHash:    chunk.ChunkHash,
		Dim:          idx.provider.Dim(),
		Vector:       vector,
	}
	if err := vec.Validate(); err != nil {
		return indexerr.Wrap(indexerr.EmbeddingProviderError, "validate embedding for "+chunk.Name, err)
	}

	tx, err := idx.store.DB().Begin()
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "begin embedding tx", err)
	}
	if err := store.UpsertEmbeddings(tx, []model.EmbeddingVector{vec}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "commit embedding tx", err)
	}

	if err := idx.warmCollection.AddDocument(ctx, chromem.Document{
		ID:        chunk.ID,
		Content:   chunk.NormalizedContent,
		Embedding: vector,
		Metadata:  map[string]string{"language": chunk.Language, "kind": string(chunk.Kind)},
	}); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "warm cache add "+chunk.Name, err)
	}

	idx.seen[chunk.ID] = key
	return nil
}

// Delete removes chunkID from both sides of the index.
func (idx *Index) Delete(ctx context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.lexical.Delete(chunkID); err != nil {
		return err
	}

	tx, err := idx.store.DB().Begin()
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "begin embedding delete tx", err)
	}
	if err := store.DeleteEmbeddingsForChunks(tx, []string{chunkID}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "commit embedding delete tx", err)
	}

	idx.warmCollection.Delete(ctx, nil, nil, chunkID)
	delete(idx.seen, chunkID)
	return nil
}

// LexicalSearch runs a keyword query through the configured lexical
// backend.
func (idx *Index) LexicalSearch(query string, limit int) ([]model.RankingCandidate, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lexical.Search(query, limit)
}

// VectorSearch embeds query and returns nearest chunks from the durable
// vec_embeddings table (not the warm cache, which is an acceleration
// layer only and may not yet hold every chunk after a cold start).
func (idx *Index) VectorSearch(ctx context.Context, query string, limit int) ([]model.RankingCandidate, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	vector, err := idx.provider.Embed(ctx, query)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.EmbeddingProviderError, "embed query", err)
	}

	matches, err := idx.store.QueryVectorSimilarity(vector, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.RankingCandidate, 0, len(matches))
	for rank, m := range matches {
		row, err := idx.store.ChunkByID(m.ChunkID)
		if err != nil {
			continue
		}
		out = append(out, model.RankingCandidate{
			Source:      model.SourceVector,
			SourceRank:  rank,
			SourceScore: 1 - m.Distance,
			FilePath:    row.FilePath,
			LineNumber:  row.StartLine,
			Snippet:     row.Content,
			SymbolKind:  row.Kind,
			SymbolName:  row.Name,
			Language:    row.Language,
		})
	}
	return out, nil
}
