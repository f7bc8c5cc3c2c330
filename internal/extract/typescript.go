package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/langdetect"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func init() {
	ts := &tsExtractor{}
	register(langdetect.TypeScript, ts)
	register(langdetect.TSX, ts)
	register(langdetect.JavaScript, ts)
}

// tsExtractor implements Extractor for TypeScript, TSX, and JavaScript —
// the three grammars share enough of their node-kind vocabulary (function,
// class, method, variable declarator, import/export statement, call/new
// expression) that one walker serves all three, same as the teacher keeps
// one treeSitterParser base for its per-language parsers.
type tsExtractor struct{}

var tsFunctionKinds = map[string]model.SymbolKind{
	"function_declaration":           model.KindFunction,
	"generator_function_declaration": model.KindFunction,
	"class_declaration":               model.KindClass,
	"interface_declaration":           model.KindInterface,
	"type_alias_declaration":          model.KindType,
	"enum_declaration":                model.KindEnum,
}

func (tsExtractor) ExtractSymbols(tree *synparse.Tree, filePath string) ([]model.Symbol, []error) {
	src := tree.Source
	var symbols []model.Symbol
	var errs []error

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_declaration", "generator_function_declaration",
			"class_declaration", "interface_declaration",
			"type_alias_declaration", "enum_declaration":
			sym := buildDeclSymbol(n, src, tsFunctionKinds[n.Kind()])
			if sym != nil {
				symbols = append(symbols, *sym)
			}
		case "method_definition":
			sym := buildMethodSymbol(n, src)
			if sym != nil {
				symbols = append(symbols, *sym)
			}
		case "public_field_definition", "property_signature":
			sym := buildPropertySymbol(n, src)
			if sym != nil {
				symbols = append(symbols, *sym)
			}
		case "variable_declarator":
			sym := buildVariableSymbol(n, src)
			if sym != nil {
				symbols = append(symbols, *sym)
			}
		}
		return true
	})

	return symbols, errs
}

func buildDeclSymbol(n *sitter.Node, src []byte, kind model.SymbolKind) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, src)

	sym := &model.Symbol{
		Name:        name,
		Kind:        kind,
		Span:        nodeSpan(n),
		ParentChain: parentChain(n, src),
		Metadata:    metadataOf(n, src),
	}
	sym.Signature = signatureFor(n, src, sym)
	return sym
}

func buildMethodSymbol(n *sitter.Node, src []byte) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sym := &model.Symbol{
		Name:        nodeText(nameNode, src),
		Kind:        model.KindMethod,
		Span:        nodeSpan(n),
		ParentChain: parentChain(n, src),
		Metadata:    metadataOf(n, src),
	}
	sym.Signature = functionSignature(n, src, sym.Name, sym.Metadata.Async)
	return sym
}

func buildPropertySymbol(n *sitter.Node, src []byte) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sym := &model.Symbol{
		Name:        nodeText(nameNode, src),
		Kind:        model.KindProperty,
		Span:        nodeSpan(n),
		ParentChain: parentChain(n, src),
		Metadata:    metadataOf(n, src),
	}
	firstLine := nodeText(n, src)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	sym.Signature = strings.TrimSpace(firstLine)
	return sym
}

func buildVariableSymbol(n *sitter.Node, src []byte) *model.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	kind := model.KindVariable
	keyword := "let"
	if decl := n.Parent(); decl != nil && decl.Kind() == "lexical_declaration" {
		kw := decl.Child(0)
		if kw != nil {
			keyword = nodeText(kw, src)
		}
		if keyword == "const" {
			kind = model.KindConstant
		}
	}

	// A function/class expression bound to a const is reported as that
	// callable kind, not as a constant — e.g. `const add = (a, b) => a+b`.
	if valueNode := n.ChildByFieldName("value"); valueNode != nil {
		switch valueNode.Kind() {
		case "arrow_function", "function_expression", "generator_function":
			kind = model.KindFunction
		case "class":
			kind = model.KindClass
		}
	}

	sym := &model.Symbol{
		Name:        nodeText(nameNode, src),
		Kind:        kind,
		Span:        nodeSpan(n),
		ParentChain: parentChain(n, src),
		Metadata:    metadataOf(n, src),
	}
	if kind == model.KindFunction {
		sym.Signature = functionSignature(n.ChildByFieldName("value"), src, sym.Name, sym.Metadata.Async)
	} else {
		sym.Signature = truncate(keyword+" "+nodeText(n, src), 200)
	}
	return sym
}

// parentChain collects the names of enclosing class/interface/namespace/
// module declarations, outer→inner.
func parentChain(n *sitter.Node, src []byte) []string {
	var chain []string
	anc := ancestors(n)
	for i := len(anc) - 1; i >= 0; i-- {
		p := anc[i]
		switch p.Kind() {
		case "class_declaration", "interface_declaration", "module", "internal_module":
			if name := p.ChildByFieldName("name"); name != nil {
				chain = append(chain, nodeText(name, src))
			}
		}
	}
	return chain
}

// metadataOf scans n's modifiers and walks upward to detect an enclosing
// export statement (spec §4.D).
func metadataOf(n *sitter.Node, src []byte) model.SymbolMetadata {
	meta := model.SymbolMetadata{}

	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "async":
			meta.Async = true
		case "static":
			meta.Static = true
		case "abstract":
			meta.Abstract = true
		case "accessibility_modifier":
			switch nodeText(c, src) {
			case "private":
				meta.Visibility = model.VisibilityPrivate
			case "protected":
				meta.Visibility = model.VisibilityProtected
			default:
				meta.Visibility = model.VisibilityPublic
			}
		case "decorator":
			meta.Decorators = append(meta.Decorators, strings.TrimSpace(nodeText(c, src)))
		}
	}

	for _, p := range ancestors(n) {
		if p.Kind() == "export_statement" {
			meta.Exported = true
			break
		}
	}
	if meta.Visibility == "" {
		meta.Visibility = model.VisibilityPublic
	}
	return meta
}

func signatureFor(n *sitter.Node, src []byte, sym *model.Symbol) string {
	switch sym.Kind {
	case model.KindFunction:
		return functionSignature(n, src, sym.Name, sym.Metadata.Async)
	case model.KindClass:
		heritage := ""
		if h := findChildOfKind(n, "class_heritage"); h != nil {
			heritage = " " + nodeText(h, src)
		}
		return "class " + sym.Name + heritage
	case model.KindInterface:
		extends := ""
		if h := findChildOfKind(n, "extends_clause"); h != nil {
			extends = " " + nodeText(h, src)
		}
		return "interface " + sym.Name + extends
	case model.KindType:
		rhs := ""
		if v := n.ChildByFieldName("value"); v != nil {
			rhs = nodeText(v, src)
		}
		return truncate("type "+sym.Name+" = "+rhs, 200)
	case model.KindEnum:
		return "enum " + sym.Name
	default:
		return ""
	}
}

func functionSignature(n *sitter.Node, src []byte, name string, async bool) string {
	if n == nil {
		return ""
	}
	params := ""
	if p := n.ChildByFieldName("parameters"); p != nil {
		params = nodeText(p, src)
	}
	ret := ""
	if r := n.ChildByFieldName("return_type"); r != nil {
		ret = nodeText(r, src)
	}
	prefix := "function "
	if async {
		prefix = "async function "
	}
	return prefix + name + params + ret
}

func findChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c.Kind() == kind {
			return c
		}
	}
	return nil
}
