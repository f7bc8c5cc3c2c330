package incremental

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/chunker"
	"github.com/mvp-joe/project-cortex/internal/extract"
	"github.com/mvp-joe/project-cortex/internal/hashutil"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/symindex"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

// indexFile runs the full per-file pipeline: read bytes, detect language,
// parse, extract, chunk, and persist to the store, AST documents, and
// Hybrid Index. The caller is responsible for folding the returned symbol
// entries into the Symbol Index. Returns UnsupportedLanguage for files with
// no registered grammar, so the engine can count them as skipped rather
// than erroring the whole refresh.
func (e *Engine) indexFile(ctx context.Context, absPath string) ([]symindex.Entry, error) {
	rel := e.relPath(absPath)

	tag := langdetect.Detect(absPath)
	if !langdetect.HasGrammar(tag) {
		return nil, indexerr.New(indexerr.UnsupportedLanguage, "no grammar for "+rel)
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "read "+rel, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "stat "+rel, err)
	}

	tree, err := synparse.Parse(tag, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	doc := extract.Extract(tree, rel, tag)

	chunks, _ := chunker.Chunk(doc, source, modulePathFor(rel))
	if len(chunks) == 0 {
		return nil, nil
	}

	fileID, err := e.store.UpsertFile(model.File{
		Path:        rel,
		Language:    string(tag),
		MTimeMillis: info.ModTime().UnixMilli(),
		IndexedAtMs: nowMs(),
		SizeBytes:   info.Size(),
		ContentHash: hashutil.Hash(string(source)),
	})
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		chunks[i].FileID = fileID
		chunks[i].FilePath = rel
	}

	if err := e.store.PutChunks(chunks); err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if err := e.hybrid.Add(ctx, c); err != nil {
			return nil, err
		}
	}

	if err := e.astDocs.Write(astdoc.FromDocument(doc)); err != nil {
		return nil, err
	}

	entries := make([]symindex.Entry, 0, len(doc.Symbols))
	for _, s := range doc.Symbols {
		entries = append(entries, symindex.Entry{Name: s.Name, Kind: s.Kind, FilePath: rel, Span: s.Span})
	}
	return entries, nil
}

// deleteFile removes a repo-relative path from every index: store (which
// cascades to chunks and the FTS shadow), the Hybrid Index's vector and
// warm-cache entries, and the AST document.
func (e *Engine) deleteFile(ctx context.Context, rel string) error {
	chunkIDs, err := e.store.DeleteChunksForFile(rel)
	if err != nil {
		return err
	}
	for _, id := range chunkIDs {
		if err := e.hybrid.Delete(ctx, id); err != nil {
			return err
		}
	}
	if err := e.store.DeleteFile(rel); err != nil {
		return err
	}
	return e.astDocs.Delete(rel)
}

func modulePathFor(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	return dir
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
