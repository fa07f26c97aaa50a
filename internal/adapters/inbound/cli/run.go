package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/bootstrap"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/history"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/reportsink"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/tui"
	"github.com/openkraft/kraftlint/internal/application"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/spf13/cobra"
)

// ErrViolations is returned in CI mode when a run reports any diagnostic.
var ErrViolations = errors.New("violations found")

// ErrNoFiles is returned with --fail-on-empty when discovery finds nothing.
var ErrNoFiles = errors.New("no files discovered")

type runOptions struct {
	configFile  string
	roots       []string
	rules       []string
	workers     int
	ruleTimeout time.Duration
	output      string
	noCache     bool
	jsonOut     bool
	showHistory bool
	failOnEmpty bool
	ci          bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Run the configured rules over the project",
		Long: "Load .kraftlint.yaml from path (default: current directory), discover files under the " +
			"configured roots and run every valid rule over every file. Rule faults are reported, not fatal.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, g, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configFile, "config", "c", "", "Config file (default: <path>/.kraftlint.yaml)")
	f.StringSliceVar(&o.roots, "root", nil, "Scan root, repeatable (overrides config)")
	f.StringSliceVarP(&o.rules, "rule", "r", nil, "Rule identifier, repeatable (overrides config)")
	f.IntVarP(&o.workers, "workers", "w", 1, "Files checked concurrently per rule")
	f.DurationVar(&o.ruleTimeout, "rule-timeout", 0, "Per-file rule deadline, 0 disables")
	f.StringVarP(&o.output, "output", "o", "", "Write the JSON report to this file")
	f.BoolVar(&o.noCache, "no-cache", false, "Skip the discovery cache")
	f.BoolVar(&o.jsonOut, "json", false, "Print the report as JSON")
	f.BoolVar(&o.showHistory, "history", false, "Show the run history trend after the report")
	f.BoolVar(&o.failOnEmpty, "fail-on-empty", false, "Exit non-zero when no file is discovered")
	f.BoolVar(&o.ci, "ci", false, "Exit non-zero when any violation is reported")
	return cmd
}

func runLint(cmd *cobra.Command, g *globalOptions, o *runOptions, args []string) error {
	logger := commandLogger(cmd, g)
	abs, cfg, err := loadProjectConfig(args, o.configFile)
	if err != nil {
		return err
	}
	if err := o.apply(cmd, &cfg); err != nil {
		return err
	}

	engine, err := bootstrap.NewEngine(cfg.ParseCache.Capacity, logger)
	if err != nil {
		return err
	}
	progress := func(step, total int, msg string) {
		logger.Debug("progress", slog.Int("step", step), slog.Int("total", total), slog.String("message", msg))
	}

	report, runErr := engine.Run(cmd.Context(), abs, cfg, application.WithProgress(progress))

	hist := history.New()
	if report.State == domain.StateCompleted {
		entry := domain.RunEntry{
			Timestamp:  report.StartedAt.UTC().Format(time.RFC3339),
			RunID:      report.RunID,
			CommitHash: report.CommitHash,
			Branch:     report.Branch,
			Files:      report.Statistics.FilesScanned,
			Violations: report.Statistics.TotalViolations,
			Errors:     report.Summary.Errors,
		}
		if err := hist.Save(abs, entry); err != nil {
			logger.Warn("saving run history", slog.Any("error", err))
		}
	}

	out := cmd.OutOrStdout()
	if o.jsonOut {
		if err := reportsink.Encode(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, tui.RenderRunReport(report))
		if o.showHistory {
			entries, err := hist.Load(abs)
			if err != nil {
				logger.Warn("loading run history", slog.Any("error", err))
			}
			fmt.Fprint(out, tui.RenderHistory(entries))
		}
	}

	switch {
	case runErr != nil:
		return runErr
	case o.failOnEmpty && report.Statistics.FilesScanned == 0:
		return ErrNoFiles
	case o.ci && report.Statistics.TotalViolations > 0:
		return fmt.Errorf("%w: %d", ErrViolations, report.Statistics.TotalViolations)
	}
	return nil
}

// apply overrides cfg with the flags set on the command line.
func (o *runOptions) apply(cmd *cobra.Command, cfg *domain.RunConfig) error {
	f := cmd.Flags()
	if f.Changed("root") {
		roots, err := absAll(o.roots)
		if err != nil {
			return err
		}
		cfg.Roots = roots
	}
	if f.Changed("rule") {
		cfg.Rules = o.rules
	}
	if f.Changed("workers") {
		cfg.Execution.Workers = o.workers
	}
	if f.Changed("rule-timeout") {
		cfg.Execution.RuleTimeout = o.ruleTimeout
	}
	if f.Changed("output") {
		outs, err := absAll([]string{o.output})
		if err != nil {
			return err
		}
		cfg.Report.Output = outs[0]
	}
	if o.noCache {
		cfg.Discovery.NoCache = true
	}
	return nil
}
