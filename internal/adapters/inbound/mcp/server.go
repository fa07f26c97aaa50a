package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/openkraft/kraftlint/internal/domain"
)

// NewServer creates an MCP server with all kraftlint tools and resources
// registered. projectPath is the project whose .kraftlint.yaml drives the
// runs. The engine, and with it the parse cache, is shared by every call.
func NewServer(projectPath string, logger *slog.Logger) (*server.MCPServer, error) {
	capacity := domain.DefaultParseCacheCap
	if cfg, err := bootstrap.LoadConfig(projectPath, ""); err == nil {
		capacity = cfg.ParseCache.Capacity
	}
	engine, err := bootstrap.NewEngine(capacity, logger)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"kraftlint",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, engine, projectPath)
	registerResources(s, engine, projectPath)

	return s, nil
}
