package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
)

// registerResources registers all kraftlint MCP resources on the given server.
func registerResources(s *server.MCPServer, engine *bootstrap.Engine, projectPath string) {
	// 1. kraftlint://rules - registered rules
	s.AddResource(
		mcplib.NewResource(
			"kraftlint://rules",
			"Rules",
			mcplib.WithResourceDescription("Every registered rule with its validation result"),
			mcplib.WithMIMEType("application/json"),
		),
		func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
			return jsonContents("kraftlint://rules", engine.RuleResults())
		},
	)

	// 2. kraftlint://config - resolved configuration
	s.AddResource(
		mcplib.NewResource(
			"kraftlint://config",
			"Configuration",
			mcplib.WithResourceDescription("Resolved run configuration for the project, defaults included"),
			mcplib.WithMIMEType("application/json"),
		),
		func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
			cfg, err := bootstrap.LoadConfig(projectPath, "")
			if err != nil {
				return nil, fmt.Errorf("loading config: %w", err)
			}
			if len(cfg.Rules) == 0 {
				cfg.Rules = engine.Registry.Defaults()
			}
			return jsonContents("kraftlint://config", cfg)
		},
	)

	// 3. kraftlint://rules/{id} - one rule's validation result
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"kraftlint://rules/{id}",
			"Rule",
			mcplib.WithTemplateDescription("Descriptor and validation result for a single rule"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
			id := templateArg(request.Params.Arguments["id"])
			if id == "" {
				return nil, fmt.Errorf("rule id is required")
			}
			return jsonContents(request.Params.URI, engine.Validator.Validate(id))
		},
	)
}

// templateArg reads a URI template variable, which arrives as a string or
// a single-element list depending on the matcher.
func templateArg(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case []string:
		if len(a) > 0 {
			return a[0]
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
