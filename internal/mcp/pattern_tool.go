package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/mvp-joe/project-cortex/internal/mcp-utils"
	"github.com/mvp-joe/project-cortex/internal/pattern"
)

type patternToolRequest struct {
	Pattern      string   `json:"pattern"`
	Language     string   `json:"language"`
	FilePaths    []string `json:"file_paths"`
	ContextLines int      `json:"context_lines"`
	Strictness   string   `json:"strictness"`
	Limit        int      `json:"limit"`
}

// addPatternTool registers codeindex_pattern, a structural (AST-aware)
// search over a single language's grammar, complementing the name-based
// Symbol Index and the token-based Hybrid Ranker with a metavariable-
// capturing structural match.
func addPatternTool(s *server.MCPServer, searcher pattern.PatternSearcher, projectRoot string) {
	tool := mcp.NewTool(
		"codeindex_pattern",
		mcp.WithDescription("Search for structural code patterns using ast-grep syntax (e.g. 'try { $$$ } catch ($ERR) { $$$ }'). Captures metavariables ($FOO) from matches. Complements codeindex_search for shape-based queries that keyword or semantic search can't express."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("ast-grep pattern with metavariables, e.g. 'function $NAME($$$ARGS) { $$$ }'")),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Target language, e.g. javascript, python, go, rust, java, ruby, php, typescript")),
		mcp.WithArray("file_paths",
			mcp.Description("Optional glob filters to restrict which files are searched")),
		mcp.WithNumber("context_lines",
			mcp.Description("Lines of context before/after each match, 0-10 (default: 3)")),
		mcp.WithString("strictness",
			mcp.Description("ast-grep matching algorithm: smart, cst, ast, relaxed, signature (default: smart)")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of matches to return, 1-100 (default: 50)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := patternToolRequest{ContextLines: 3, Strictness: "smart", Limit: 50}
		if err := mcputils.CoerceBindArguments(req, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Pattern == "" || args.Language == "" {
			return mcp.NewToolResultError("pattern and language parameters are required"), nil
		}

		contextLines := args.ContextLines
		limit := args.Limit
		resp, err := searcher.Search(ctx, &pattern.PatternRequest{
			Pattern:      args.Pattern,
			Language:     args.Language,
			FilePaths:    args.FilePaths,
			ContextLines: &contextLines,
			Strictness:   args.Strictness,
			Limit:        &limit,
		}, projectRoot)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("pattern search failed: %v", err)), nil
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(payload)), nil
	})
}
