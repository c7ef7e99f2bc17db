// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes vault metadata lookups to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultmeta/internal/apperr"
	"github.com/starford/vaultmeta/internal/metadata"
	"github.com/starford/vaultmeta/internal/metaservice"
)

// Server wraps the MCP server with vaultmeta tools.
type Server struct {
	mcp *server.MCPServer
	svc *metaservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *metaservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"vaultmeta",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Look up one metadata field of a vault document. "+
			"For .mdx documents only the \"frontmatter\" type is available; "+
			".md documents also expose title, tags, links, headings, checksum and mtime."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative document path (e.g. notes/a.mdx)")),
		mcp.WithString("type", mcp.Description("Metadata type; defaults to \"frontmatter\"")),
	), s.getMetadata)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List .md and .mdx documents in the vault or in one folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listDocuments)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ := req.GetString("type", metadata.TypeFrontmatter)

	res, err := s.svc.GetMetadata(ctx, path, typ)
	if errors.Is(err, apperr.ErrNotApplicable) {
		return mcp.NewToolResultError(fmt.Sprintf("no provider handles %q for %s", typ, path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Found {
		return mcp.NewToolResultText("no metadata found"), nil
	}
	out, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListDocuments(ctx, req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}
