package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/project-cortex/internal/mcp-utils"
	"github.com/mvp-joe/project-cortex/internal/symindex"
)

type symbolRequest struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	MaxDistance int    `json:"max_distance"`
}

// addSymbolTool registers codeindex_symbol, exposing the Symbol Index's
// exact/prefix/substring/fuzzy lookups for a symbol name.
func addSymbolTool(s *server.MCPServer, symbols *symindex.Index) {
	tool := mcp.NewTool(
		"codeindex_symbol",
		mcp.WithDescription("Look up a symbol by name. Modes: 'exact' (case-sensitive exact match), 'prefix', 'substring', 'fuzzy' (edit-distance tolerant)."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Symbol name or fragment to look up")),
		mcp.WithString("mode",
			mcp.Description("One of exact, prefix, substring, fuzzy (default: exact)")),
		mcp.WithNumber("max_distance",
			mcp.Description("Maximum edit distance for fuzzy mode (default: 2)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := symbolRequest{Mode: "exact", MaxDistance: 2}
		if err := mcputils.CoerceBindArguments(req, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		var entries []symindex.Entry
		switch args.Mode {
		case "exact":
			entries = symbols.Exact(args.Name)
		case "prefix":
			entries = symbols.Prefix(args.Name)
		case "substring":
			entries = symbols.Substring(args.Name)
		case "fuzzy":
			maxDistance := args.MaxDistance
			if maxDistance <= 0 {
				maxDistance = 2
			}
			entries = symbols.Fuzzy(args.Name, maxDistance)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid mode: %s (must be one of: exact, prefix, substring, fuzzy)", args.Mode)), nil
		}

		payload, err := json.Marshal(entries)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(payload)), nil
	})
}
