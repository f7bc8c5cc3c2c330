package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/project-cortex/internal/mcp-utils"
	"github.com/mvp-joe/project-cortex/internal/ranker"
)

// searchRequest is the codeindex_search tool's argument shape. Limit is
// bound leniently: MCP clients that stringify numeric arguments still
// coerce cleanly via mcputils.CoerceBindArguments.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// addSearchTool registers codeindex_search, a hybrid lexical+vector query
// over the project's chunks, fused and diversified by the Hybrid Ranker.
func addSearchTool(s *server.MCPServer, rnk *ranker.Ranker) {
	tool := mcp.NewTool(
		"codeindex_search",
		mcp.WithDescription("Search the codebase with a hybrid lexical+semantic ranker. Returns ranked code/doc chunks with file path, line number, and a fused relevance score."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := searchRequest{Limit: 10}
		if err := mcputils.CoerceBindArguments(req, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}
		if args.Limit <= 0 {
			args.Limit = 10
		}

		results, _, err := rnk.Search(ctx, args.Query, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		payload, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(payload)), nil
	})
}
