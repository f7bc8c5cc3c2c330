package hybridindex

import (
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// BleveBackend is the alternate LexicalBackend, an in-memory bleve index.
// Unlike FTSBackend it keeps no durable copy of its own; chunks must be
// replayed into it from the store on process start.
type BleveBackend struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewBleveBackend builds a fresh in-memory bleve index with a mapping
// tuned for code chunk text (standard analyzer, stored fields for
// snippet reconstruction without a secondary store lookup).
func NewBleveBackend() (*BleveBackend, error) {
	mapping := buildChunkMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create bleve index", err)
	}
	return &BleveBackend{index: index}, nil
}

func buildChunkMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"
	content.Store = true
	content.IncludeTermVectors = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("name", content)
	doc.AddFieldMappingsAt("signature", content)
	doc.AddFieldMappingsAt("documentation", content)
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("language", keyword)
	doc.AddFieldMappingsAt("file_path", keyword)

	m.DefaultMapping = doc
	return m
}

type bleveDoc struct {
	FilePath      string `json:"file_path"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Content       string `json:"content"`
	Documentation string `json:"documentation"`
	Signature     string `json:"signature"`
	Language      string `json:"language"`
	StartLine     int    `json:"start_line"`
}

func (b *BleveBackend) Index(chunk model.Chunk) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := bleveDoc{
		FilePath: chunk.FilePath, Kind: string(chunk.Kind), Name: chunk.Name,
		Content: chunk.Content, Documentation: chunk.Documentation,
		Signature: chunk.Signature, Language: chunk.Language, StartLine: chunk.Span.StartLine,
	}
	if err := b.index.Index(chunk.ID, doc); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "bleve index chunk "+chunk.Name, err)
	}
	return nil
}

func (b *BleveBackend) Delete(chunkID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.index.Delete(chunkID); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "bleve delete chunk "+chunkID, err)
	}
	return nil
}

func (b *BleveBackend) Search(query string, limit int) ([]model.RankingCandidate, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"file_path", "kind", "name", "content", "language", "start_line"}

	result, err := b.index.Search(req)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "bleve search", err)
	}

	out := make([]model.RankingCandidate, 0, len(result.Hits))
	for rank, hit := range result.Hits {
		filePath, _ := hit.Fields["file_path"].(string)
		kind, _ := hit.Fields["kind"].(string)
		name, _ := hit.Fields["name"].(string)
		content, _ := hit.Fields["content"].(string)
		language, _ := hit.Fields["language"].(string)

		out = append(out, model.RankingCandidate{
			Source:      model.SourceLexical,
			SourceRank:  rank,
			SourceScore: hit.Score,
			FilePath:    filePath,
			Snippet:     content,
			SymbolKind:  kind,
			SymbolName:  name,
			Language:    language,
		})
	}
	return out, nil
}

func (b *BleveBackend) Close() error {
	return b.index.Close()
}
