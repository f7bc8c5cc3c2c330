// Package synparse runs a tree-sitter grammar over source bytes and exposes
// a traversable tree with error-node reporting (spec §4.C). It never panics
// on ill-formed input: a recovered panic is converted into a ParseFailure.
package synparse

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/langdetect"
)

// Severity is always "error" for the error records this package produces;
// kept as a type so future severities don't require a signature change.
type Severity string

const SeverityError Severity = "error"

// Recovery describes how the parser resynchronized after an error region.
type Recovery struct {
	Recovered          bool
	Strategy           string
	SymbolsAfterError  int
}

// ParseError is one error subtree the parser encountered.
type ParseError struct {
	Message  string
	Span     SpanOf
	Severity Severity
	Recovery Recovery
}

// SpanOf mirrors model.Span without importing internal/model, so this
// low-level package has no dependency on the extractor-facing data model.
type SpanOf struct {
	StartLine, StartColumn int
	EndLine, EndColumn     int
	StartByte, EndByte     int
}

// Tree is a parsed source file: the underlying tree-sitter tree plus the
// source bytes it was parsed from and any error regions found.
type Tree struct {
	Language Grammar
	Source   []byte
	sitter   *sitter.Tree
	Errors   []ParseError
}

// Grammar names the language a Tree was parsed with.
type Grammar = langdetect.Tag

// Root returns the tree's root node.
func (t *Tree) Root() *sitter.Node {
	return t.sitter.RootNode()
}

// Close releases the underlying tree-sitter tree. Safe to call once.
func (t *Tree) Close() {
	if t.sitter != nil {
		t.sitter.Close()
		t.sitter = nil
	}
}

// Parse runs the grammar registered for tag over source. It returns a tree
// covering the valid prefix and any successfully resynchronized regions
// even when syntax errors are present; it returns a ParseFailure only when
// tree-sitter itself fails to produce a tree (extremely rare) or panics.
func Parse(tag langdetect.Tag, source []byte) (tree *Tree, err error) {
	grammar, err := langdetect.Load(tag)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = indexerr.Wrap(indexerr.ParseFailure, fmt.Sprintf("parser panicked for language %s", tag), fmt.Errorf("%v", r))
		}
	}()

	p := sitter.NewParser()
	defer p.Close()

	if err := p.SetLanguage(grammar.Language); err != nil {
		return nil, indexerr.Wrap(indexerr.ParseFailure, "failed to set grammar", err)
	}

	st := p.Parse(source, nil)
	if st == nil {
		return nil, indexerr.New(indexerr.ParseFailure, fmt.Sprintf("parser returned no tree for language %s", tag))
	}

	t := &Tree{Language: tag, Source: source, sitter: st}
	t.Errors = collectErrors(st.RootNode())
	return t, nil
}

// collectErrors walks the tree pre-order and records every ERROR/MISSING
// node as a ParseError, reporting whether a resynchronization point (a
// non-error sibling following the error region) was found.
func collectErrors(root *sitter.Node) []ParseError {
	var errs []ParseError
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			recovered, symbolsAfter := resyncInfo(n)
			errs = append(errs, ParseError{
				Message: errorMessage(n),
				Span: SpanOf{
					StartLine:   int(n.StartPosition().Row) + 1,
					StartColumn: int(n.StartPosition().Column),
					EndLine:     int(n.EndPosition().Row) + 1,
					EndColumn:   int(n.EndPosition().Column),
					StartByte:   int(n.StartByte()),
					EndByte:     int(n.EndByte()),
				},
				Severity: SeverityError,
				Recovery: Recovery{
					Recovered:         recovered,
					Strategy:          "resynchronize-at-next-sibling",
					SymbolsAfterError: symbolsAfter,
				},
			})
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return errs
}

func errorMessage(n *sitter.Node) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %s", n.Kind())
	}
	return fmt.Sprintf("unexpected token near %s", n.Kind())
}

// resyncInfo reports whether a non-error sibling follows the error node
// (meaning the parser resynchronized) and how many of the parent's children
// after the error node are not themselves error nodes.
func resyncInfo(n *sitter.Node) (recovered bool, symbolsAfter int) {
	parent := n.Parent()
	if parent == nil {
		return false, 0
	}
	found := false
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child == n {
			found = true
			continue
		}
		if found && !child.IsError() && !child.IsMissing() {
			symbolsAfter++
			recovered = true
		}
	}
	return recovered, symbolsAfter
}
