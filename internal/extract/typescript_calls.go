package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

func (tsExtractor) ExtractCalls(tree *synparse.Tree, filePath string) ([]model.CallSite, []error) {
	src := tree.Source
	var calls []model.CallSite

	walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "call_expression":
			calls = append(calls, buildCall(n, src))
		case "new_expression":
			calls = append(calls, buildNewCall(n, src))
		}
		return true
	})

	return calls, nil
}

func buildCall(n *sitter.Node, src []byte) model.CallSite {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	call := model.CallSite{
		Span:          nodeSpan(n),
		ArgumentCount: countArguments(args),
	}

	if fn == nil {
		call.Callee = model.DynamicCallee
		call.Kind = model.CallDynamic
		return call
	}

	switch fn.Kind() {
	case "identifier":
		name := nodeText(fn, src)
		if name == "super" {
			call.Callee = name
			call.Kind = model.CallSuper
			return call
		}
		call.Callee = name
		call.Kind = model.CallFunction
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop == nil {
			call.Callee = model.DynamicCallee
			call.Kind = model.CallDynamic
			return call
		}
		call.Callee = nodeText(prop, src)
		call.Kind = model.CallMethod
		if obj != nil {
			recv := nodeText(obj, src)
			call.Receiver = &recv
		}
		if chain := buildChain(fn, src); chain != nil {
			call.Chain = chain
		}
	case "subscript_expression":
		call.Callee = model.DynamicCallee
		call.Kind = model.CallDynamic
	default:
		call.Callee = model.DynamicCallee
		call.Kind = model.CallDynamic
	}

	return call
}

func buildNewCall(n *sitter.Node, src []byte) model.CallSite {
	ctor := n.ChildByFieldName("constructor")
	args := n.ChildByFieldName("arguments")
	name := model.DynamicCallee
	if ctor != nil {
		name = nodeText(ctor, src)
	}
	return model.CallSite{
		Callee:        name,
		Kind:          model.CallConstructor,
		ArgumentCount: countArguments(args),
		Span:          nodeSpan(n),
	}
}

func countArguments(args *sitter.Node) int {
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

// buildChain detects a.b().c() style chained calls: when the object of a
// member expression is itself a call expression, this call shares a chain
// context with its neighbors (spec §3 Call site).
func buildChain(memberExpr *sitter.Node, src []byte) *model.CallChain {
	obj := memberExpr.ChildByFieldName("object")
	if obj == nil || obj.Kind() != "call_expression" {
		return nil
	}
	position := 0
	for cur := obj; cur != nil && cur.Kind() == "call_expression"; {
		position++
		inner := cur.ChildByFieldName("function")
		if inner == nil || inner.Kind() != "member_expression" {
			break
		}
		cur = inner.ChildByFieldName("object")
	}
	prev := nodeText(obj, src)
	return &model.CallChain{Position: position, Previous: &prev}
}
