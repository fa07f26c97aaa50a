// Package bootstrap wires the outbound adapters and the run service
// together for the inbound adapters (CLI and MCP server).
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/parsecache"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/reportsink"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/rules"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
	"github.com/openkraft/kraftlint/internal/application"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/contract"
)

// Engine holds the long-lived pieces shared by every run: the rule
// registry and the parse cache built-in rules read through.
type Engine struct {
	Registry   *contract.Registry
	Validator  *contract.Validator
	ParseCache *parsecache.Cache[*domain.AnalyzedFile]
	Logger     *slog.Logger

	git  domain.GitInfo
	sink domain.ReportSink
}

// NewEngine registers the built-in rules behind a parse cache of the
// given capacity.
func NewEngine(parseCapacity int, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc := rules.NewParseCache(parseCapacity)
	reg := contract.NewRegistry()
	if err := rules.Register(reg, pc); err != nil {
		return nil, err
	}
	return &Engine{
		Registry:   reg,
		Validator:  contract.NewValidator(reg),
		ParseCache: pc,
		Logger:     logger,
		git:        gitinfo.New(),
		sink:       reportsink.New(),
	}, nil
}

// LoadConfig reads configFile when set, otherwise .kraftlint.yaml in
// projectPath.
func LoadConfig(projectPath, configFile string) (domain.RunConfig, error) {
	loader := config.New()
	if configFile != "" {
		cfg, err := loader.LoadFile(configFile)
		if err != nil {
			return domain.RunConfig{}, fmt.Errorf("loading %s: %w", configFile, err)
		}
		return cfg, nil
	}
	return loader.Load(projectPath)
}

// Scanner returns a discoverer persisting its cache at cfg.CachePath.
// The cache directory is created before the walk so the first save does
// not change the mtime of a root that contains it.
func (e *Engine) Scanner(cfg domain.DiscoveryConfig) *scanner.FileScanner {
	var store domain.CacheStore
	if !cfg.NoCache && cfg.CachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
			e.Logger.Warn("creating cache directory", slog.String("path", cfg.CachePath), slog.Any("error", err))
		}
		store = cache.New(cfg.CachePath, cache.WithLogger(e.Logger))
	}
	return scanner.New(cfg, store, scanner.WithLogger(e.Logger))
}

// Run fills in default rules when none are configured, executes the run,
// attaches the HEAD commit of projectPath and writes the report to
// cfg.Report.Output when set. The report is never nil.
func (e *Engine) Run(ctx context.Context, projectPath string, cfg domain.RunConfig, opts ...application.RunOption) (*domain.RunReport, error) {
	if len(cfg.Rules) == 0 {
		cfg.Rules = e.Registry.Defaults()
	}

	base := []application.RunOption{
		application.WithLogger(e.Logger),
		application.WithParseCache(e.ParseCache),
	}
	svc := application.NewRunService(e.Registry, e.Validator, e.Scanner(cfg.Discovery), append(base, opts...)...)

	report, err := svc.Run(ctx, cfg)
	if e.git.IsGitRepo(projectPath) {
		report.CommitHash, _ = e.git.CommitHash(projectPath)
		report.Branch, _ = e.git.Branch(projectPath)
	}
	if cfg.Report.Output != "" {
		if werr := e.sink.Write(cfg.Report.Output, report); werr != nil {
			e.Logger.Warn("writing report", slog.String("path", cfg.Report.Output), slog.Any("error", werr))
		}
	}
	return report, err
}

// RuleResults validates every registered rule, for listings.
func (e *Engine) RuleResults() []domain.ValidationResult {
	return e.Validator.ValidateAll(e.Registry.IDs())
}

// DefaultSet returns the enabled-by-default identifiers as a set.
func (e *Engine) DefaultSet() map[string]bool {
	set := map[string]bool{}
	for _, id := range e.Registry.Defaults() {
		set[id] = true
	}
	return set
}
