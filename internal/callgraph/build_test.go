package callgraph

import (
	"testing"

	"github.com/mvp-joe/project-cortex/internal/astdoc"
	"github.com/mvp-joe/project-cortex/internal/model"
)

func sym(name string, start, end int) model.Symbol {
	return model.Symbol{
		Name: name,
		Kind: model.KindFunction,
		Span: model.Span{StartLine: start, EndLine: end},
	}
}

func TestBuildResolvesCallWithinProject(t *testing.T) {
	docs := []astdoc.Document{
		{
			FilePath: "a.ts",
			Symbols: map[string][]model.Symbol{
				"function": {sym("main", 1, 10)},
			},
			Calls: []model.CallSite{
				{Callee: "helper", Kind: model.CallFunction, Span: model.Span{StartLine: 5, EndLine: 5}},
			},
		},
		{
			FilePath: "b.ts",
			Symbols: map[string][]model.Symbol{
				"function": {sym("helper", 1, 3)},
			},
		},
	}

	data := Build(docs)

	if len(data.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(data.Nodes))
	}
	if len(data.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(data.Edges))
	}
	edge := data.Edges[0]
	if edge.From != "a.ts#main" || edge.To != "b.ts#helper" {
		t.Errorf("edge = %+v, want a.ts#main -> b.ts#helper", edge)
	}
}

func TestBuildSkipsDynamicAndUnresolvedCallees(t *testing.T) {
	docs := []astdoc.Document{
		{
			FilePath: "a.ts",
			Symbols: map[string][]model.Symbol{
				"function": {sym("main", 1, 10)},
			},
			Calls: []model.CallSite{
				{Callee: model.DynamicCallee, Kind: model.CallDynamic, Span: model.Span{StartLine: 2, EndLine: 2}},
				{Callee: "externalLibCall", Kind: model.CallFunction, Span: model.Span{StartLine: 3, EndLine: 3}},
			},
		},
	}

	data := Build(docs)
	if len(data.Edges) != 0 {
		t.Errorf("len(Edges) = %d, want 0 for dynamic/unresolved callees", len(data.Edges))
	}
}

func TestGraphCallersAndCallees(t *testing.T) {
	data := &Data{
		Nodes: []Node{
			{ID: "a.ts#main", Kind: NodeFunction, File: "a.ts"},
			{ID: "b.ts#helper", Kind: NodeFunction, File: "b.ts"},
		},
		Edges: []Edge{
			{From: "a.ts#main", To: "b.ts#helper", Type: EdgeCalls},
		},
	}
	g := NewGraph(data)

	if callees := g.Callees("a.ts#main"); len(callees) != 1 || callees[0] != "b.ts#helper" {
		t.Errorf("Callees(main) = %v, want [b.ts#helper]", callees)
	}
	if callers := g.Callers("b.ts#helper"); len(callers) != 1 || callers[0] != "a.ts#main" {
		t.Errorf("Callers(helper) = %v, want [a.ts#main]", callers)
	}

	path, err := g.ShortestPath("a.ts#main", "b.ts#helper")
	if err != nil {
		t.Fatalf("ShortestPath() error: %v", err)
	}
	if len(path) != 2 {
		t.Errorf("path = %v, want 2 hops", path)
	}
}

func TestGraphOrphansReportsUnconnectedNodes(t *testing.T) {
	data := &Data{
		Nodes: []Node{
			{ID: "a.ts#main", Kind: NodeFunction, File: "a.ts"},
			{ID: "b.ts#unused", Kind: NodeFunction, File: "b.ts"},
		},
	}
	g := NewGraph(data)
	orphans := g.Orphans()
	if len(orphans) != 2 {
		t.Errorf("Orphans() = %v, want both nodes", orphans)
	}
}
