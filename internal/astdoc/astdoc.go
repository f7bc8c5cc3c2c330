// Package astdoc persists one JSON document per source file under
// .codeindex/ast/<path>.json, grouping a file's symbols by kind for quick
// human or editor-tooling inspection outside the SQLite store.
package astdoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-cortex/internal/extract"
	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// Document is the on-disk shape of one file's AST summary.
type Document struct {
	FilePath string                    `json:"filePath"`
	Language string                    `json:"language"`
	Symbols  map[string][]model.Symbol `json:"symbolsByKind"`
	Imports  []model.Import            `json:"imports,omitempty"`
	Exports  []model.Export            `json:"exports,omitempty"`
	Calls    []model.CallSite          `json:"calls,omitempty"`
}

// FromDocument groups an extraction document's symbols by kind.
func FromDocument(doc *extract.Document) Document {
	grouped := map[string][]model.Symbol{}
	for _, s := range doc.Symbols {
		grouped[string(s.Kind)] = append(grouped[string(s.Kind)], s)
	}
	return Document{
		FilePath: doc.FilePath,
		Language: string(doc.Language),
		Symbols:  grouped,
		Imports:  doc.Imports,
		Exports:  doc.Exports,
		Calls:    doc.Calls,
	}
}

// Store reads and writes Documents under a root directory, normally
// "<repo>/.codeindex/ast".
type Store struct {
	root    string
	tempDir string
}

// Open prepares the AST document root, creating it and a scratch .tmp
// directory for atomic writes, clearing any stale temp files left behind
// by a previous crash.
func Open(root string) (*Store, error) {
	tempDir := filepath.Join(root, ".tmp")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create ast doc root", err)
	}
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "clean ast doc temp dir", err)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "create ast doc temp dir", err)
	}
	return &Store{root: root, tempDir: tempDir}, nil
}

// Write serializes doc and writes it atomically (temp file, then rename)
// to <root>/<sanitized file path>.json.
func (s *Store) Write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "marshal ast document for "+doc.FilePath, err)
	}

	rel := relPath(doc.FilePath)
	finalPath := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "create ast doc subdir for "+doc.FilePath, err)
	}

	tempPath := filepath.Join(s.tempDir, strings.ReplaceAll(rel, string(filepath.Separator), "__"))
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "write ast doc temp file for "+doc.FilePath, err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return indexerr.Wrap(indexerr.StoreIOError, "rename ast doc into place for "+doc.FilePath, err)
	}
	return nil
}

// Read loads the AST document for filePath, if one exists.
func (s *Store) Read(filePath string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(filepath.Join(s.root, relPath(filePath)))
	if err != nil {
		return doc, indexerr.Wrap(indexerr.StoreIOError, "read ast doc for "+filePath, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, indexerr.Wrap(indexerr.StoreIOError, "unmarshal ast doc for "+filePath, err)
	}
	return doc, nil
}

// Delete removes the AST document for filePath, if present.
func (s *Store) Delete(filePath string) error {
	err := os.Remove(filepath.Join(s.root, relPath(filePath)))
	if err != nil && !os.IsNotExist(err) {
		return indexerr.Wrap(indexerr.StoreIOError, "delete ast doc for "+filePath, err)
	}
	return nil
}

// ListAll returns the repo-relative source paths with an AST document on
// disk, derived by walking the root and reversing relPath's ".json" suffix.
func (s *Store) ListAll() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(rel, ".tmp") {
			return nil
		}
		out = append(out, strings.TrimSuffix(rel, ".json"))
		return nil
	})
	if err != nil {
		return nil, indexerr.Wrap(indexerr.StoreIOError, "list ast documents", err)
	}
	return out, nil
}

// Clear removes every AST document under the root, used by full reindex.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return indexerr.Wrap(indexerr.StoreIOError, "read ast doc root", err)
	}
	for _, e := range entries {
		if e.Name() == ".tmp" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return indexerr.Wrap(indexerr.StoreIOError, "clear ast doc entry "+e.Name(), err)
		}
	}
	return nil
}

// relPath maps a repo-relative source path to its JSON document path,
// e.g. "src/math.ts" -> "src/math.ts.json".
func relPath(filePath string) string {
	clean := strings.TrimPrefix(filePath, "/")
	return fmt.Sprintf("%s.json", clean)
}
