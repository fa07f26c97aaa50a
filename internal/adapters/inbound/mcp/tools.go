package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
)

// registerTools registers all kraftlint MCP tools on the given server.
func registerTools(s *server.MCPServer, engine *bootstrap.Engine, projectPath string) {
	// 1. kraftlint_run
	s.AddTool(
		mcplib.NewTool("kraftlint_run",
			mcplib.WithDescription("Run rules over the project and return the full run report as JSON"),
			mcplib.WithString("rules", mcplib.Description("Comma-separated rule identifiers (default: configured or default rules)")),
			mcplib.WithNumber("workers", mcplib.Description("Files checked concurrently per rule")),
			mcplib.WithBoolean("no_cache", mcplib.Description("Skip the discovery cache")),
		),
		handleRun(engine, projectPath),
	)

	// 2. kraftlint_list_rules
	s.AddTool(
		mcplib.NewTool("kraftlint_list_rules",
			mcplib.WithDescription("List every registered rule with its descriptor and validation status"),
		),
		handleListRules(engine),
	)

	// 3. kraftlint_validate_rules
	s.AddTool(
		mcplib.NewTool("kraftlint_validate_rules",
			mcplib.WithDescription("Validate rules against the rule contract and return per-rule errors and warnings"),
			mcplib.WithString("rules", mcplib.Description("Comma-separated rule identifiers (default: all registered)")),
		),
		handleValidateRules(engine),
	)

	// 4. kraftlint_discover
	s.AddTool(
		mcplib.NewTool("kraftlint_discover",
			mcplib.WithDescription("List the files a run would analyze, with discovery cache statistics"),
			mcplib.WithBoolean("no_cache", mcplib.Description("Skip the discovery cache")),
		),
		handleDiscover(engine, projectPath),
	)
}

func handleRun(engine *bootstrap.Engine, projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := bootstrap.LoadConfig(projectPath, "")
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		args := request.GetArguments()
		if ids := splitList(args["rules"]); len(ids) > 0 {
			cfg.Rules = ids
		}
		if w, ok := args["workers"].(float64); ok {
			cfg.Execution.Workers = int(w)
		}
		if noCache, _ := args["no_cache"].(bool); noCache {
			cfg.Discovery.NoCache = true
		}

		report, runErr := engine.Run(ctx, projectPath, cfg)
		result, err := jsonResult(report)
		if err != nil {
			return nil, err
		}
		if runErr != nil {
			result.IsError = true
			result.Content = append(result.Content, mcplib.NewTextContent(runErr.Error()))
		}
		return result, nil
	}
}

func handleListRules(engine *bootstrap.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(engine.RuleResults())
	}
}

func handleValidateRules(engine *bootstrap.Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ids := splitList(request.GetArguments()["rules"])
		if len(ids) == 0 {
			ids = engine.Registry.IDs()
		}
		return jsonResult(engine.Validator.ValidateAll(ids))
	}
}

func handleDiscover(engine *bootstrap.Engine, projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := bootstrap.LoadConfig(projectPath, "")
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if noCache, _ := request.GetArguments()["no_cache"].(bool); noCache {
			cfg.Discovery.NoCache = true
		}

		res, err := engine.Scanner(cfg.Discovery).Discover(ctx, cfg.Roots)
		if err != nil {
			return errorResult(fmt.Sprintf("discovery failed: %v", err)), nil
		}
		if len(res.Files) == 0 {
			return textResult("No files discovered."), nil
		}
		return jsonResult(res)
	}
}

// splitList accepts a comma-separated string argument.
func splitList(v any) []string {
	s, _ := v.(string)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
