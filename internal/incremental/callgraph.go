package incremental

import (
	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/callgraph"
)

// RebuildCallGraph re-derives the whole-project call graph from every
// indexed file's AST document and persists it under graphDir. Like the
// Symbol Index, the call graph is a wholesale snapshot rather than an
// incrementally-patched structure, so every refresh that mutates the store
// should call this after its per-file work completes.
func (e *Engine) RebuildCallGraph(graphDir string) (*callgraph.Data, error) {
	paths, err := e.astDocs.ListAll()
	if err != nil {
		return nil, err
	}

	docs := make([]astdoc.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := e.astDocs.Read(path)
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	data := callgraph.Build(docs)

	storage, err := callgraph.NewStorage(graphDir)
	if err != nil {
		return nil, err
	}
	if err := storage.Save(data); err != nil {
		return nil, err
	}
	return data, nil
}
