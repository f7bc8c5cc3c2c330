package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func init() {
	register(langdetect.Python, pyExtractor{})
}

type pyExtractor struct{}

func (pyExtractor) ExtractSymbols(tree *synparse.Tree, filePath string) ([]model.Symbol, []error) {
	src := tree.Source
	var symbols []model.Symbol

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			symbols = append(symbols, buildPyFunction(n, src))
		case "class_definition":
			symbols = append(symbols, buildPyClass(n, src))
		case "assignment":
			if sym := buildPyAssignment(n, src); sym != nil {
				symbols = append(symbols, *sym)
			}
		}
		return true
	})

	return symbols, nil
}

func buildPyFunction(n *sitter.Node, src []byte) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, src)

	kind := model.KindFunction
	for _, p := range ancestors(n) {
		if p.Kind() == "class_definition" {
			kind = model.KindMethod
			break
		}
		if p.Kind() == "function_definition" {
			break
		}
	}

	sym := model.Symbol{
		Name:        name,
		Kind:        kind,
		Span:        nodeSpan(n),
		ParentChain: pyParentChain(n, src),
		Metadata:    pyMetadata(n, src),
	}

	params := ""
	if p := n.ChildByFieldName("parameters"); p != nil {
		params = nodeText(p, src)
	}
	ret := ""
	if r := n.ChildByFieldName("return_type"); r != nil {
		ret = " -> " + nodeText(r, src)
	}
	prefix := "def "
	if sym.Metadata.Async {
		prefix = "async def "
	}
	sym.Signature = prefix + name + params + ret

	if doc := pyDocstring(n, src); doc != "" {
		sym.Documentation = doc
	}

	return sym
}

func buildPyClass(n *sitter.Node, src []byte) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := nodeText(nameNode, src)

	sym := model.Symbol{
		Name:        name,
		Kind:        model.KindClass,
		Span:        nodeSpan(n),
		ParentChain: pyParentChain(n, src),
		Metadata:    pyMetadata(n, src),
	}

	heritage := ""
	if sc := n.ChildByFieldName("superclasses"); sc != nil {
		heritage = nodeText(sc, src)
	}
	sym.Signature = "class " + name + heritage

	if doc := pyDocstring(n, src); doc != "" {
		sym.Documentation = doc
	}

	return sym
}

func buildPyAssignment(n *sitter.Node, src []byte) *model.Symbol {
	// Only top-level / class-body assignments are treated as symbols —
	// assignments nested inside a function body are local variables, not
	// module- or class-level declarations.
	parent := n.Parent()
	if parent == nil || parent.Kind() != "expression_statement" {
		return nil
	}
	grandparent := parent.Parent()
	if grandparent == nil {
		return nil
	}
	switch grandparent.Kind() {
	case "module", "block":
	default:
		return nil
	}
	for _, a := range ancestors(n) {
		if a.Kind() == "function_definition" {
			return nil
		}
	}

	left := n.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}
	name := nodeText(left, src)

	kind := model.KindVariable
	if name == strings.ToUpper(name) {
		kind = model.KindConstant
	}

	sym := &model.Symbol{
		Name:        name,
		Kind:        kind,
		Span:        nodeSpan(n),
		ParentChain: pyParentChain(n, src),
		Metadata:    pyMetadata(n, src),
	}
	keyword := "var"
	if kind == model.KindConstant {
		keyword = "const"
	}
	sym.Signature = truncate(keyword+" "+nodeText(n, src), 200)
	return sym
}

func pyParentChain(n *sitter.Node, src []byte) []string {
	var chain []string
	anc := ancestors(n)
	for i := len(anc) - 1; i >= 0; i-- {
		p := anc[i]
		if p.Kind() == "class_definition" {
			if name := p.ChildByFieldName("name"); name != nil {
				chain = append(chain, nodeText(name, src))
			}
		}
	}
	return chain
}

func pyMetadata(n *sitter.Node, src []byte) model.SymbolMetadata {
	meta := model.SymbolMetadata{Exported: true, Visibility: model.VisibilityPublic}

	nameNode := n.ChildByFieldName("name")
	if nameNode != nil && strings.HasPrefix(nodeText(nameNode, src), "_") {
		meta.Exported = false
		meta.Visibility = model.VisibilityPrivate
	}

	// A decorated_definition wraps this node; its "async" child (if any) is
	// on this node itself for function_definition.
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.Child(i).Kind() == "async" {
			meta.Async = true
		}
	}

	if parent := n.Parent(); parent != nil && parent.Kind() == "decorated_definition" {
		for i := uint(0); i < parent.ChildCount(); i++ {
			c := parent.Child(i)
			if c.Kind() == "decorator" {
				meta.Decorators = append(meta.Decorators, strings.TrimSpace(nodeText(c, src)))
			}
		}
	}

	return meta
}

// pyDocstring returns the text of the first statement of n's body when that
// statement is a bare string literal (spec §4.D Python docstring rule).
func pyDocstring(n *sitter.Node, src []byte) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Kind() != "string" {
		return ""
	}
	return pyStringLiteralText(str, src)
}

func pyStringLiteralText(n *sitter.Node, src []byte) string {
	text := nodeText(n, src)
	text = strings.TrimPrefix(text, "r")
	text = strings.TrimPrefix(text, "f")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return strings.TrimSpace(text)
}
