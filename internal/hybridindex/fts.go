package hybridindex

import (
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/store"
)

// FTSBackend is the default LexicalBackend, backed by the store's FTS5
// shadow table.
type FTSBackend struct {
	store *store.Store
}

func NewFTSBackend(st *store.Store) *FTSBackend {
	return &FTSBackend{store: st}
}

func (b *FTSBackend) Index(chunk model.Chunk) error {
	return b.store.PutChunks([]model.Chunk{chunk})
}

func (b *FTSBackend) Delete(chunkID string) error {
	return b.store.DeleteChunkByID(chunkID)
}

func (b *FTSBackend) Search(query string, limit int) ([]model.RankingCandidate, error) {
	rows, err := b.store.QueryChunks(store.ChunkQuery{Text: query, Limit: limit})
	if err != nil {
		return nil, err
	}

	out := make([]model.RankingCandidate, 0, len(rows))
	for rank, r := range rows {
		out = append(out, model.RankingCandidate{
			Source:     model.SourceLexical,
			SourceRank: rank,
			FilePath:   r.FilePath,
			LineNumber: r.StartLine,
			Snippet:    r.Content,
			SymbolKind: r.Kind,
			SymbolName: r.Name,
			Language:   r.Language,
		})
	}
	return out, nil
}
