package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func (pyExtractor) ExtractImportsExports(tree *synparse.Tree, filePath string) ([]model.Import, []model.Export, []error) {
	src := tree.Source
	var imports []model.Import

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			for i := uint(0); i < n.ChildCount(); i++ {
				c := n.Child(i)
				if c.Kind() != "dotted_name" && c.Kind() != "aliased_import" {
					continue
				}
				imports = append(imports, pyImportSpec(c, src))
			}
		case "import_from_statement":
			moduleNode := n.ChildByFieldName("module_name")
			source := nodeText(moduleNode, src)
			var specs []model.ImportSpecifier
			for i := uint(0); i < n.ChildCount(); i++ {
				c := n.Child(i)
				if c.Kind() == "dotted_name" && c != moduleNode {
					specs = append(specs, model.ImportSpecifier{Imported: nodeText(c, src), Local: nodeText(c, src)})
				}
				if c.Kind() == "aliased_import" {
					specs = append(specs, pyAliasedSpecifier(c, src))
				}
				if c.Kind() == "wildcard_import" {
					specs = append(specs, model.ImportSpecifier{Imported: "*", Local: "*"})
				}
			}
			imports = append(imports, model.Import{
				Kind:       model.ImportNamed,
				Source:     &source,
				Specifiers: specs,
				Span:       nodeSpan(n),
			})
			return false
		}
		return true
	})

	// Python has no export statement; module-level public names (those not
	// prefixed with "_") are implicitly exported — the spec's Export model
	// has no Python-specific representation to emit here, so exports is
	// intentionally empty for this language.
	return imports, nil, nil
}

func pyImportSpec(n *sitter.Node, src []byte) model.Import {
	if n.Kind() == "aliased_import" {
		spec := pyAliasedSpecifier(n, src)
		source := spec.Imported
		return model.Import{Kind: model.ImportDefault, Source: &source, Specifiers: []model.ImportSpecifier{spec}, Span: nodeSpan(n)}
	}
	name := nodeText(n, src)
	return model.Import{
		Kind:       model.ImportDefault,
		Source:     &name,
		Specifiers: []model.ImportSpecifier{{Local: name}},
		Span:       nodeSpan(n),
	}
}

func pyAliasedSpecifier(n *sitter.Node, src []byte) model.ImportSpecifier {
	name := n.ChildByFieldName("name")
	alias := n.ChildByFieldName("alias")
	imported := nodeText(name, src)
	local := imported
	if alias != nil {
		local = nodeText(alias, src)
	}
	return model.ImportSpecifier{Imported: imported, Local: local}
}

func (pyExtractor) ExtractCalls(tree *synparse.Tree, filePath string) ([]model.CallSite, []error) {
	src := tree.Source
	var calls []model.CallSite

	walk(tree.Root(), func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		fn := n.ChildByFieldName("function")
		args := n.ChildByFieldName("arguments")
		call := model.CallSite{Span: nodeSpan(n), ArgumentCount: countPyArguments(args)}

		if fn == nil {
			call.Callee = model.DynamicCallee
			call.Kind = model.CallDynamic
			calls = append(calls, call)
			return true
		}

		switch fn.Kind() {
		case "identifier":
			call.Callee = nodeText(fn, src)
			call.Kind = model.CallFunction
			if call.Callee == "super" {
				call.Kind = model.CallSuper
			}
		case "attribute":
			obj := fn.ChildByFieldName("object")
			attr := fn.ChildByFieldName("attribute")
			if attr == nil {
				call.Callee = model.DynamicCallee
				call.Kind = model.CallDynamic
				break
			}
			call.Callee = nodeText(attr, src)
			call.Kind = model.CallMethod
			if obj != nil {
				recv := nodeText(obj, src)
				call.Receiver = &recv
			}
		default:
			call.Callee = model.DynamicCallee
			call.Kind = model.CallDynamic
		}

		calls = append(calls, call)
		return true
	})

	return calls, nil
}

func countPyArguments(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < args.ChildCount(); i++ {
		c := args.Child(i)
		if c.Kind() == "," || c.Kind() == "(" || c.Kind() == ")" {
			continue
		}
		count++
	}
	return count
}

func (pyExtractor) ExtractComments(tree *synparse.Tree, filePath string) ([]model.Comment, []error) {
	src := tree.Source
	var comments []model.Comment

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "comment":
			comments = append(comments, model.Comment{
				Text: nodeText(n, src),
				Kind: model.CommentLine,
				Span: nodeSpan(n),
			})
		case "function_definition", "class_definition", "module":
			if text := pyDocstringNodeText(n, src); text != "" {
				comments = append(comments, model.Comment{
					Text:             text,
					Kind:             model.CommentDocstring,
					Span:             pyDocstringSpan(n),
					AssociatedSymbol: pyDocstringOwnerName(n, src),
					Documentation:    parsePyDocstring(text),
				})
			}
		}
		return true
	})

	return comments, nil
}

func pyDocstringOwnerName(n *sitter.Node, src []byte) string {
	if n.Kind() == "module" {
		return ""
	}
	chain := pyParentChain(n, src)
	name := nodeText(n.ChildByFieldName("name"), src)
	q := name
	for _, p := range chain {
		q = p + "." + q
	}
	return q
}

func pyDocstringSpan(n *sitter.Node) model.Span {
	body := n.ChildByFieldName("body")
	if n.Kind() == "module" {
		body = n
	}
	if body == nil || body.ChildCount() == 0 {
		return nodeSpan(n)
	}
	return nodeSpan(body.Child(0))
}

func pyDocstringNodeText(n *sitter.Node, src []byte) string {
	if n.Kind() == "module" {
		return pyModuleDocstring(n, src)
	}
	return pyDocstring(n, src)
}

// pyModuleDocstring returns the text of the module's first statement when
// it is a bare string literal. Unlike function/class bodies, a module's
// statements are direct children of the "module" node itself.
func pyModuleDocstring(module *sitter.Node, src []byte) string {
	if module.ChildCount() == 0 {
		return ""
	}
	first := module.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Kind() != "string" {
		return ""
	}
	return pyStringLiteralText(str, src)
}

func parsePyDocstring(text string) *model.Documentation {
	return &model.Documentation{Description: text, Tags: map[string]string{}}
}
