package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-cortex/internal/callgraph"
	mcputils "github.com/mvp-joe/project-cortex/internal/mcp-utils"
)

type graphRequest struct {
	Operation string `json:"operation"`
	Target    string `json:"target"`
	To        string `json:"to"`
}

// addGraphTool registers codeindex_graph, exposing call-graph traversal:
// callers, callees, and shortest-path between two qualified symbol IDs
// (file.go#Qualified.Name, as produced by internal/callgraph).
func addGraphTool(s *server.MCPServer, graph *callgraph.Graph) {
	tool := mcp.NewTool(
		"codeindex_graph",
		mcp.WithDescription("Query the whole-project call graph. Operations: 'callers' (who calls this symbol), 'callees' (what this symbol calls), 'path' (shortest call path between two symbols)."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("One of: callers, callees, path")),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Qualified symbol ID, e.g. 'internal/ranker/ranker.go#Ranker.Search'")),
		mcp.WithString("to",
			mcp.Description("Second qualified symbol ID, required for the path operation")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if graph == nil {
			return mcp.NewToolResultError("call graph has not been built yet; run `codeindex index` first"), nil
		}

		var args graphRequest
		if err := mcputils.CoerceBindArguments(req, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Target == "" {
			return mcp.NewToolResultError("target parameter is required"), nil
		}
		if _, ok := graph.Node(args.Target); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown symbol: %s", args.Target)), nil
		}

		var result interface{}
		switch args.Operation {
		case "callers":
			result = graph.Callers(args.Target)
		case "callees":
			result = graph.Callees(args.Target)
		case "path":
			if args.To == "" {
				return mcp.NewToolResultError("to parameter is required for the path operation"), nil
			}
			path, err := graph.ShortestPath(args.Target, args.To)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("no path found: %v", err)), nil
			}
			result = path
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid operation: %s (must be one of: callers, callees, path)", args.Operation)), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(payload)), nil
	})
}
