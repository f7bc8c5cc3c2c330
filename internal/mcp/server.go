// Package mcp exposes the Symbol Index and Hybrid Ranker as MCP tools so
// external collaborators (editor assistants, agent harnesses) can query
// the index without depending on its on-disk formats (spec §10).
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-cortex/internal/callgraph"
	"github.com/mvp-joe/project-cortex/internal/pattern"
	"github.com/mvp-joe/project-cortex/internal/ranker"
	"github.com/mvp-joe/project-cortex/internal/symindex"
)

// Server wraps a configured MCP server exposing codeindex_search,
// codeindex_symbol, codeindex_graph, and codeindex_pattern tools over stdio.
type Server struct {
	mcp *server.MCPServer
}

// New builds the MCP server. graph may be nil if the call graph has not
// been built yet; the tool is still registered, and each codeindex_graph
// call then returns an error result asking the caller to run the indexer.
func New(rnk *ranker.Ranker, symbols *symindex.Index, graph *callgraph.Graph, projectRoot string) *Server {
	s := server.NewMCPServer(
		"codeindex-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	addSearchTool(s, rnk)
	addSymbolTool(s, symbols)
	addGraphTool(s, graph)
	addPatternTool(s, pattern.NewAstGrepProvider(symbols), projectRoot)

	return &Server{mcp: s}
}

// Serve runs the MCP server on stdio until ctx is cancelled or an
// interrupt/TERM signal arrives.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	}
}
