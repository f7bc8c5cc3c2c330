// Package extract implements the stateless entity extractors of spec §4.D:
// pure functions over a parsed tree and its source bytes that emit symbols,
// imports/exports, call sites, and comments. An extractor error is logged
// and extraction continues with the remaining nodes — extractors never
// abort the parse (spec §7 ExtractionError).
package extract

import (
	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

// Document is the full extraction result for one file.
type Document struct {
	FilePath string
	Language langdetect.Tag
	Symbols  []model.Symbol
	Imports  []model.Import
	Exports  []model.Export
	Calls    []model.CallSite
	Comments []model.Comment
	Errors   []error
}

// Extractor is the per-language interface new languages implement to
// participate in extraction (spec §9: closed tagged variant + interface,
// rather than prototype-style dynamic dispatch).
type Extractor interface {
	ExtractSymbols(tree *synparse.Tree, filePath string) ([]model.Symbol, []error)
	ExtractImportsExports(tree *synparse.Tree, filePath string) ([]model.Import, []model.Export, []error)
	ExtractCalls(tree *synparse.Tree, filePath string) ([]model.CallSite, []error)
	ExtractComments(tree *synparse.Tree, filePath string) ([]model.Comment, []error)
}

var registry = map[langdetect.Tag]Extractor{}

func register(tag langdetect.Tag, e Extractor) {
	registry[tag] = e
}

// For looks up the registered extractor for tag.
func For(tag langdetect.Tag) (Extractor, bool) {
	e, ok := registry[tag]
	return e, ok
}

// Extract runs the full extraction pipeline for tag over tree, producing a
// Document. Each extraction phase runs independently so a failure in one
// (e.g. ExtractCalls panicking internally) does not prevent the others from
// populating the document.
func Extract(tree *synparse.Tree, filePath string, tag langdetect.Tag) *Document {
	doc := &Document{FilePath: filePath, Language: tag}

	ext, ok := For(tag)
	if !ok {
		return doc
	}

	symbols, errs := safeExtractSymbols(ext, tree, filePath)
	doc.Symbols = symbols
	doc.Errors = append(doc.Errors, errs...)

	imports, exports, errs := safeExtractImportsExports(ext, tree, filePath)
	doc.Imports = imports
	doc.Exports = exports
	doc.Errors = append(doc.Errors, errs...)

	calls, errs := safeExtractCalls(ext, tree, filePath)
	doc.Calls = calls
	doc.Errors = append(doc.Errors, errs...)

	comments, errs := safeExtractComments(ext, tree, filePath)
	doc.Comments = comments
	doc.Errors = append(doc.Errors, errs...)

	associateComments(doc, tree.Source)
	applyHashes(doc, tree)

	return doc
}
