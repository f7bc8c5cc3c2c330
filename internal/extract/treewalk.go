package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/model"
)

// nodeText returns the source slice a node covers.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

// nodeSpan converts a tree-sitter node's position into a model.Span.
func nodeSpan(n *sitter.Node) model.Span {
	return model.Span{
		StartLine:   int(n.StartPosition().Row) + 1,
		StartColumn: int(n.StartPosition().Column),
		EndLine:     int(n.EndPosition().Row) + 1,
		EndColumn:   int(n.EndPosition().Column),
		StartByte:   int(n.StartByte()),
		EndByte:     int(n.EndByte()),
	}
}

// walk invokes visit for every node in the tree, pre-order. visit returns
// false to skip descending into that node's children.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		walk(n.Child(i), visit)
	}
}

// ancestors returns n's ancestor chain, innermost first.
func ancestors(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// truncate truncates s to max runes, appending an ellipsis marker when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
