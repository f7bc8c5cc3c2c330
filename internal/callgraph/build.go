package callgraph

import (
	"strings"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/model"
)

// callableKinds are the symbol kinds that become call graph nodes; types,
// variables, and imports never appear as a call's enclosing scope or
// target.
var callableKinds = map[model.SymbolKind]NodeKind{
	model.KindFunction: NodeFunction,
	model.KindMethod:   NodeMethod,
}

type ref struct {
	id   string
	file string
	span model.Span
}

// Build assembles a project-wide call graph from every indexed file's AST
// document, resolving each call site to its enclosing symbol and, where a
// same-named symbol exists anywhere in the project, to its target. Calls
// whose callee cannot be resolved to an indexed symbol (external library
// calls, dynamic dispatch) are omitted rather than guessed at.
func Build(docs []astdoc.Document) *Data {
	var nodes []Node
	byName := map[string][]ref{}
	byFile := map[string][]ref{}

	for _, doc := range docs {
		for kind, symbols := range doc.Symbols {
			nk, ok := callableKinds[model.SymbolKind(kind)]
			if !ok {
				continue
			}
			for _, s := range symbols {
				id := qualifiedID(doc.FilePath, s)
				nodes = append(nodes, Node{
					ID:        id,
					Kind:      nk,
					File:      doc.FilePath,
					StartLine: s.Span.StartLine,
					EndLine:   s.Span.EndLine,
				})
				r := ref{id: id, file: doc.FilePath, span: s.Span}
				byName[s.Name] = append(byName[s.Name], r)
				byFile[doc.FilePath] = append(byFile[doc.FilePath], r)
			}
		}
	}

	var edges []Edge
	for _, doc := range docs {
		enclosing := byFile[doc.FilePath]
		for _, call := range doc.Calls {
			if call.Callee == model.DynamicCallee || call.Callee == "" {
				continue
			}
			from := enclosingSymbol(enclosing, call.Span)
			if from == "" {
				continue
			}
			callee := call.Callee
			if idx := strings.LastIndex(callee, "."); idx >= 0 {
				callee = callee[idx+1:]
			}
			targets, ok := byName[callee]
			if !ok {
				continue
			}
			for _, t := range targets {
				edges = append(edges, Edge{
					From: from,
					To:   t.id,
					Type: EdgeCalls,
					Location: &Location{
						File: doc.FilePath,
						Line: call.Span.StartLine,
					},
				})
			}
		}
	}

	return &Data{Nodes: nodes, Edges: edges}
}

// enclosingSymbol returns the ID of the smallest-span symbol in candidates
// that contains span, i.e. the innermost function or method a call was
// made from.
func enclosingSymbol(candidates []ref, span model.Span) string {
	best := ""
	bestWidth := -1
	for _, c := range candidates {
		if span.StartLine < c.span.StartLine || span.EndLine > c.span.EndLine {
			continue
		}
		width := c.span.EndLine - c.span.StartLine
		if bestWidth == -1 || width < bestWidth {
			best = c.id
			bestWidth = width
		}
	}
	return best
}

func qualifiedID(file string, s model.Symbol) string {
	return file + "#" + s.QualifiedName()
}
