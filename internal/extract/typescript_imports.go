package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func (tsExtractor) ExtractImportsExports(tree *synparse.Tree, filePath string) ([]model.Import, []model.Export, []error) {
	src := tree.Source
	var imports []model.Import
	var exports []model.Export

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			imports = append(imports, buildImports(n, src)...)
			return false
		case "export_statement":
			exports = append(exports, buildExport(n, src))
		}
		return true
	})

	return imports, exports, nil
}

func buildImports(n *sitter.Node, src []byte) []model.Import {
	span := nodeSpan(n)
	source := importSource(n, src)

	// Side-effect import: `import "./setup";` — no clause at all.
	clause := findChildOfKind(n, "import_clause")
	if clause == nil {
		return []model.Import{{Kind: model.ImportSideEffect, Source: source, Span: span}}
	}

	var out []model.Import
	for i := uint(0); i < clause.ChildCount(); i++ {
		c := clause.Child(i)
		switch c.Kind() {
		case "identifier":
			out = append(out, model.Import{
				Kind:       model.ImportDefault,
				Source:     source,
				Specifiers: []model.ImportSpecifier{{Local: nodeText(c, src)}},
				Span:       span,
			})
		case "namespace_import":
			name := nodeText(lastChild(c), src)
			out = append(out, model.Import{
				Kind:       model.ImportNamespace,
				Source:     source,
				Specifiers: []model.ImportSpecifier{{Local: name}},
				Span:       span,
			})
		case "named_imports":
			var specs []model.ImportSpecifier
			for j := uint(0); j < c.ChildCount(); j++ {
				spec := c.Child(j)
				if spec.Kind() != "import_specifier" {
					continue
				}
				specs = append(specs, importSpecifier(spec, src))
			}
			out = append(out, model.Import{Kind: model.ImportNamed, Source: source, Specifiers: specs, Span: span})
		}
	}
	if len(out) == 0 {
		out = append(out, model.Import{Kind: model.ImportSideEffect, Source: source, Span: span})
	}
	return out
}

func importSpecifier(n *sitter.Node, src []byte) model.ImportSpecifier {
	name := n.ChildByFieldName("name")
	alias := n.ChildByFieldName("alias")
	imported := nodeText(name, src)
	local := imported
	if alias != nil {
		local = nodeText(alias, src)
	}
	return model.ImportSpecifier{Imported: imported, Local: local}
}

func importSource(n *sitter.Node, src []byte) *string {
	s := n.ChildByFieldName("source")
	if s == nil {
		return nil
	}
	text := strings.Trim(nodeText(s, src), `"'`)
	return &text
}

func lastChild(n *sitter.Node) *sitter.Node {
	if n.ChildCount() == 0 {
		return nil
	}
	return n.Child(n.ChildCount() - 1)
}

func buildExport(n *sitter.Node, src []byte) model.Export {
	span := nodeSpan(n)

	hasDefault := false
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.Child(i).Kind() == "default" {
			hasDefault = true
		}
	}
	if hasDefault {
		return model.Export{Kind: model.ExportDefault, Span: span}
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		return model.Export{Kind: model.ExportDeclaration, Span: span}
	}

	source := importSource(n, src)
	var specs []model.ExportSpecifier
	if clause := findChildOfKind(n, "export_clause"); clause != nil {
		for i := uint(0); i < clause.ChildCount(); i++ {
			spec := clause.Child(i)
			if spec.Kind() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("name")
			alias := spec.ChildByFieldName("alias")
			local := nodeText(name, src)
			exported := local
			if alias != nil {
				exported = nodeText(alias, src)
			}
			specs = append(specs, model.ExportSpecifier{Local: local, Exported: exported})
		}
	}
	if source != nil {
		return model.Export{Kind: model.ExportNamespace, Source: source, Specifiers: specs, Span: span}
	}
	return model.Export{Kind: model.ExportNamed, Specifiers: specs, Span: span}
}
