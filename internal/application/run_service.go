package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/contract"
)

var (
	// ErrInvalidConfig is wrapped by the FatalError returned when
	// configuration validation fails.
	ErrInvalidConfig = errors.New("configuration is invalid")
	// ErrRunPanicked is wrapped when the orchestrator itself panics.
	ErrRunPanicked = errors.New("run aborted by internal fault")
)

// RunService orchestrates one analysis run:
// validate config -> validate rules -> discover files -> run rules x files -> report.
type RunService struct {
	registry   *contract.Registry
	validator  *contract.Validator
	discoverer domain.FileDiscoverer
	logger     *slog.Logger
	progress   domain.ProgressFunc
	now        domain.Clock
	newID      func() string
	parseStats domain.ParseCacheReporter
}

// RunOption configures a RunService.
type RunOption func(*RunService)

func WithLogger(l *slog.Logger) RunOption { return func(s *RunService) { s.logger = l } }

// WithProgress registers a callback notified at pipeline checkpoints.
func WithProgress(fn domain.ProgressFunc) RunOption {
	return func(s *RunService) { s.progress = fn }
}

func WithClock(c domain.Clock) RunOption { return func(s *RunService) { s.now = c } }

func WithIDGenerator(fn func() string) RunOption { return func(s *RunService) { s.newID = fn } }

// WithParseCache reports the shared parse cache's activity in the run's
// performance section.
func WithParseCache(r domain.ParseCacheReporter) RunOption {
	return func(s *RunService) { s.parseStats = r }
}

func NewRunService(
	registry *contract.Registry,
	validator *contract.Validator,
	discoverer domain.FileDiscoverer,
	opts ...RunOption,
) *RunService {
	s := &RunService{
		registry:   registry,
		validator:  validator,
		discoverer: discoverer,
		logger:     slog.Default(),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ValidateRules checks each identifier without running anything.
func (s *RunService) ValidateRules(ids []string) []domain.ValidationResult {
	return s.validator.ValidateAll(ids)
}

// run carries the mutable state of one invocation.
type run struct {
	cfg    domain.RunConfig
	report *domain.RunReport
	step   int
	total  int
}

// Run executes the pipeline. The returned report is never nil. A non-nil
// error is always a *domain.FatalError: CONFIGURATION when validation
// aborted the run before scanning, CRITICAL for cancellation or an
// internal fault.
func (s *RunService) Run(ctx context.Context, cfg domain.RunConfig) (report *domain.RunReport, err error) {
	start := s.now()
	r := &run{cfg: cfg, report: domain.NewRunReport(s.newID(), start)}
	report = r.report
	r.total = 4 + len(uniqueRules(cfg.Rules))

	var before domain.ParseCacheStats
	if s.parseStats != nil {
		before = s.parseStats.Snapshot()
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("run panicked", slog.Any("panic", p))
			err = s.abort(r, domain.LogCritical, fmt.Errorf("%w: %v", ErrRunPanicked, p))
		}
		if s.parseStats != nil {
			report.Performance.ParseCache = parseDelta(before, s.parseStats.Snapshot())
		}
		report.Performance.TotalTime = s.now().Sub(start)
		report.Summarize()
	}()

	s.logger.Info("run started", slog.String("run_id", report.RunID),
		slog.Int("roots", len(cfg.Roots)), slog.Int("rules", len(cfg.Rules)))
	s.notify(r, "starting run")

	// ValidatingConfig
	report.State = domain.StateValidatingConfig
	rules, ok := s.validateConfig(r)
	if !ok {
		return report, s.abort(r, domain.LogConfiguration, ErrInvalidConfig)
	}
	s.notify(r, fmt.Sprintf("validated configuration: %d runnable rule(s)", len(rules)))

	// Discovering
	report.State = domain.StateDiscovering
	disc, derr := s.discoverer.Discover(ctx, cfg.Roots)
	if disc != nil {
		report.Performance.Discovery = disc.Stats
		report.Performance.ScanTime = disc.Stats.Elapsed
		for _, w := range disc.Warnings {
			report.AddWarning(w)
		}
	}
	if derr != nil {
		return report, s.abort(r, domain.LogCritical, fmt.Errorf("discovering files: %w", derr))
	}
	files := disc.Files
	report.Statistics.FilesScanned = len(files)
	s.notify(r, fmt.Sprintf("discovered %d file(s)", len(files)))

	// Executing
	report.State = domain.StateExecuting
	if len(files) == 0 {
		report.AddWarning(s.entry(domain.LogFileScanning, "no analyzable files found under the configured roots", "", ""))
		r.step = r.total - 1
	} else {
		var collected []domain.Diagnostic
		for _, rr := range rules {
			if rr.result == nil {
				s.notify(r, fmt.Sprintf("skipping invalid rule %s", rr.id))
				continue
			}
			s.notify(r, fmt.Sprintf("running rule %s", rr.id))
			diags, failed, cerr := s.executeRule(ctx, r, rr, files)
			collected = append(collected, diags...)
			report.Statistics.RulesProcessed++
			if failed {
				report.Statistics.RulesFailed++
			}
			if cerr != nil {
				report.Diagnostics = domain.DedupDiagnostics(collected)
				report.Statistics.TotalViolations = len(report.Diagnostics)
				return report, s.abort(r, domain.LogCritical, cerr)
			}
		}
		report.Diagnostics = domain.DedupDiagnostics(collected)
	}

	// Finalizing
	report.State = domain.StateFinalizing
	r.step = r.total - 1
	s.notify(r, "finalizing report")
	report.Statistics.TotalViolations = len(report.Diagnostics)
	report.State = domain.StateCompleted

	s.logger.Info("run completed", slog.String("run_id", report.RunID),
		slog.Int("files", report.Statistics.FilesScanned),
		slog.Int("violations", report.Statistics.TotalViolations),
		slog.Int("errors", len(report.Errors)))
	return report, nil
}

// ruleRun is one configured rule after validation. result is nil when
// validation excluded the rule.
type ruleRun struct {
	id     string
	result *domain.ValidationResult
}

// validateConfig runs structural, path and per-rule checks. It returns
// false when a configuration-level error must abort the run.
func (s *RunService) validateConfig(r *run) ([]ruleRun, bool) {
	report := r.report
	fatal := false

	for _, issue := range r.cfg.Validate() {
		fatal = true
		report.AddError(s.entry(domain.LogConfiguration, issue.Message, "", ""))
	}
	for _, root := range r.cfg.Roots {
		if root == "" {
			continue
		}
		if err := checkRoot(root); err != nil {
			fatal = true
			report.AddError(s.entry(domain.LogConfiguration, fmt.Sprintf("scan root %s: %v", root, err), "", root))
		}
	}
	if fatal {
		return nil, false
	}

	ids := uniqueRules(r.cfg.Rules)
	if len(ids) < len(r.cfg.Rules) {
		report.AddInfo(s.entry(domain.LogConfiguration,
			fmt.Sprintf("collapsed %d duplicate rule identifier(s)", len(r.cfg.Rules)-len(ids)), "", ""))
	}

	results := s.validator.ValidateAll(ids)
	report.Validation = results

	runs := make([]ruleRun, 0, len(ids))
	runnable := 0
	for i := range results {
		res := &results[i]
		for _, w := range res.Warnings {
			report.AddWarning(s.entry(domain.LogRuleProcessing, ruleIssueMessage(w), res.RuleID, ""))
		}
		for _, note := range res.Info {
			report.AddInfo(s.entry(domain.LogRuleProcessing, note, res.RuleID, ""))
		}
		if !res.Valid {
			for _, e := range res.Errors {
				report.AddError(s.entry(domain.LogRuleProcessing, ruleIssueMessage(e), res.RuleID, ""))
			}
			report.Statistics.RulesFailed++
			s.logger.Warn("rule excluded", slog.String("rule", res.RuleID), slog.Int("errors", len(res.Errors)))
			runs = append(runs, ruleRun{id: res.RuleID})
			continue
		}
		runnable++
		runs = append(runs, ruleRun{id: res.RuleID, result: res})
	}

	if runnable == 0 {
		report.AddError(s.entry(domain.LogConfiguration, "no configured rule passed validation", "", ""))
		return nil, false
	}
	return runs, true
}

func ruleIssueMessage(i domain.ValidationIssue) string {
	if i.Suggestion == "" {
		return fmt.Sprintf("%s: %s", i.Type, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Type, i.Message, i.Suggestion)
}

// checkRoot verifies a scan root is a readable directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("does not exist")
		}
		return err
	}
	if !info.IsDir() {
		return errors.New("is not a directory")
	}
	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("is not readable: %w", err)
	}
	return f.Close()
}

func uniqueRules(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// abort moves the run to Aborted and builds the fatal error carrying the
// error log.
func (s *RunService) abort(r *run, cat domain.LogCategory, cause error) error {
	report := r.report
	if cat == domain.LogCritical {
		report.AddError(s.entry(domain.LogCritical, cause.Error(), "", ""))
	}
	report.State = domain.StateAborted
	s.logger.Error("run aborted", slog.String("run_id", report.RunID),
		slog.String("category", string(cat)), slog.Any("error", cause))
	return &domain.FatalError{
		Category: cat,
		Entries:  append([]domain.LogEntry(nil), report.Errors...),
		Err:      cause,
	}
}

func (s *RunService) entry(cat domain.LogCategory, msg, ruleID, file string) domain.LogEntry {
	return domain.LogEntry{Time: s.now(), Category: cat, Message: msg, RuleID: ruleID, File: file}
}

func (s *RunService) notify(r *run, msg string) {
	r.step++
	if r.step > r.total {
		r.step = r.total
	}
	if s.progress != nil {
		s.progress(r.step, r.total, msg)
	}
}

func parseDelta(before, after domain.ParseCacheStats) *domain.ParseCacheStats {
	return &domain.ParseCacheStats{
		Hits:      after.Hits - before.Hits,
		Misses:    after.Misses - before.Misses,
		Evictions: after.Evictions - before.Evictions,
		Entries:   after.Entries,
		ParseTime: after.ParseTime - before.ParseTime,
	}
}
