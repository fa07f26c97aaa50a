package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Fault types recorded on RULE_ERROR entries besides the error's Go type.
const (
	faultPanic   = "panic"
	faultTimeout = "timeout"
)

// outcome is the result of one (rule, file) pair.
type outcome struct {
	diagnostics []domain.Diagnostic
	skip        error // file vanished or became unreadable
	fault       string
	faultMsg    string
	abandoned   bool // the rule instance is still running and must be replaced
	ran         bool
}

// checkFile runs one rule over one file, converting errors, panics and
// timeouts into a fault instead of propagating them.
func checkFile(rule domain.Rule, path string, timeout time.Duration) outcome {
	if err := readable(path); err != nil {
		return outcome{skip: err}
	}
	if timeout <= 0 {
		return invoke(rule, path)
	}

	done := make(chan outcome, 1)
	go func() { done <- invoke(rule, path) }()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case o := <-done:
		return o
	case <-timer.C:
		return outcome{
			ran:       true,
			fault:     faultTimeout,
			faultMsg:  fmt.Sprintf("check exceeded %s", timeout),
			abandoned: true,
		}
	}
}

func invoke(rule domain.Rule, path string) (o outcome) {
	o.ran = true
	defer func() {
		if p := recover(); p != nil {
			o = outcome{ran: true, fault: faultPanic, faultMsg: fmt.Sprint(p)}
		}
	}()
	diags, err := rule.Check(path)
	if err != nil {
		return outcome{ran: true, fault: fmt.Sprintf("%T", err), faultMsg: err.Error()}
	}
	o.diagnostics = diags
	return o
}

func readable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("file no longer exists")
		}
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file is not readable: %w", err)
	}
	return f.Close()
}

// executeRule runs one validated rule over every file and folds the
// outcomes into the report. It returns the accepted diagnostics in file
// order, whether the rule faulted on any file, and a non-nil error only
// when the context was cancelled.
func (s *RunService) executeRule(ctx context.Context, r *run, rr ruleRun, files []string) ([]domain.Diagnostic, bool, error) {
	started := s.now()
	defer func() {
		r.report.Performance.RuleTimes[rr.id] += s.now().Sub(started)
	}()

	outcomes, err := s.runFiles(ctx, rr.id, files, r.cfg.Execution)

	desc := *rr.result.Descriptor
	var (
		accepted []domain.Diagnostic
		failed   bool
	)
	for i, o := range outcomes {
		file := files[i]
		switch {
		case !o.ran && o.skip == nil:
			// never reached: cancelled, or the rule could not be constructed
		case o.skip != nil:
			r.report.AddWarning(s.entry(domain.LogFileProcessing,
				fmt.Sprintf("skipped: %v", o.skip), rr.id, file))
		case o.fault != "":
			failed = true
			e := s.entry(domain.LogRuleError, o.faultMsg, rr.id, file)
			e.Fault = o.fault
			r.report.AddError(e)
			s.logger.Warn("rule fault", slog.String("rule", rr.id),
				slog.String("file", file), slog.String("fault", o.fault))
		default:
			accepted = append(accepted, s.admit(r, rr.id, desc, file, o.diagnostics)...)
		}
	}
	if err != nil {
		var inst *instanceError
		if errors.As(err, &inst) {
			failed = true
			r.report.AddError(s.entry(domain.LogRuleError, inst.Error(), rr.id, ""))
			if n := unreached(outcomes); n > 0 {
				r.report.AddWarning(s.entry(domain.LogFileProcessing,
					fmt.Sprintf("%d of %d files not checked by %s", n, len(files), rr.id), rr.id, ""))
			}
			return accepted, failed, nil
		}
		return accepted, failed, err
	}
	s.logger.Debug("rule finished", slog.String("rule", rr.id),
		slog.Int("files", len(files)), slog.Int("diagnostics", len(accepted)))
	return accepted, failed, nil
}

func unreached(outcomes []outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.ran && o.skip == nil {
			n++
		}
	}
	return n
}

// admit validates diagnostics and fills fields the rule left empty from
// its descriptor.
func (s *RunService) admit(r *run, id string, desc domain.RuleDescriptor, file string, diags []domain.Diagnostic) []domain.Diagnostic {
	out := make([]domain.Diagnostic, 0, len(diags))
	for i, d := range diags {
		if err := d.Validate(); err != nil {
			r.report.AddWarning(s.entry(domain.LogViolationValidation,
				fmt.Sprintf("diagnostic #%d dropped: %v", i, err), id, file))
			continue
		}
		if d.File == "" {
			d.File = file
		}
		d.RuleID = id
		if !domain.IsValidSeverity(d.Severity) {
			d.Severity = desc.Severity
			if !domain.IsValidSeverity(d.Severity) {
				d.Severity = domain.SeverityWarning
			}
		}
		if d.Category == "" {
			d.Category = desc.Category
			if !d.Category.IsValid() {
				d.Category = domain.CategoryGeneral
			}
		}
		if d.Tags == nil && len(desc.Tags) > 0 {
			d.Tags = append([]string(nil), desc.Tags...)
		}
		out = append(out, d)
	}
	return out
}

// instanceError reports that a worker could not construct its rule
// instance, either at start or to replace one abandoned after a timeout.
// The files that worker had not reached are skipped.
type instanceError struct {
	id      string
	rebuild bool
	err     error
}

func (e *instanceError) Error() string {
	if e.rebuild {
		return fmt.Sprintf("rebuilding %s after timeout: %v", e.id, e.err)
	}
	return fmt.Sprintf("constructing %s: %v", e.id, e.err)
}

func (e *instanceError) Unwrap() error { return e.err }

// runFiles produces one outcome per file, in file order. With more than one
// worker, each worker owns its own rule instance.
func (s *RunService) runFiles(ctx context.Context, id string, files []string, exec domain.ExecutionConfig) ([]outcome, error) {
	outcomes := make([]outcome, len(files))
	workers := exec.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	if workers == 1 {
		return outcomes, s.worker(ctx, id, files, exec.RuleTimeout, seq(len(files)), outcomes)
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return s.worker(gctx, id, files, exec.RuleTimeout, jobs, outcomes)
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return outcomes, err
}

// worker drains indices from jobs, writing each outcome to its slot.
func (s *RunService) worker(ctx context.Context, id string, files []string, timeout time.Duration, jobs <-chan int, outcomes []outcome) error {
	rule, err := s.instance(id, files)
	if err != nil {
		return &instanceError{id: id, err: err}
	}
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := checkFile(rule, files[i], timeout)
		outcomes[i] = o
		if o.abandoned {
			if rule, err = s.instance(id, files); err != nil {
				return &instanceError{id: id, rebuild: true, err: err}
			}
		}
	}
	return ctx.Err()
}

// instance builds a fresh rule and hands it the run's file list when it
// asks for one.
func (s *RunService) instance(id string, files []string) (domain.Rule, error) {
	rule, err := s.registry.New(id)
	if err != nil {
		return nil, err
	}
	if fa, ok := rule.(domain.FileSetAware); ok {
		fa.SetFiles(files)
	}
	return rule, nil
}

func seq(n int) <-chan int {
	ch := make(chan int, n)
	for i := 0; i < n; i++ {
		ch <- i
	}
	close(ch)
	return ch
}
