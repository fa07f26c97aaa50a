package domain

import (
	"fmt"
	"strings"
	"time"
)

// LogCategory tags an entry in the run log.
type LogCategory string

const (
	LogConfiguration       LogCategory = "CONFIGURATION"
	LogFileScanning        LogCategory = "FILE_SCANNING"
	LogFileProcessing      LogCategory = "FILE_PROCESSING"
	LogRuleProcessing      LogCategory = "RULE_PROCESSING"
	LogRuleError           LogCategory = "RULE_ERROR"
	LogViolationValidation LogCategory = "VIOLATION_VALIDATION"
	LogCritical            LogCategory = "CRITICAL"
)

// RunState is a step of the orchestrator's state machine.
type RunState string

const (
	StateIdle             RunState = "idle"
	StateValidatingConfig RunState = "validating_config"
	StateDiscovering      RunState = "discovering"
	StateExecuting        RunState = "executing"
	StateFinalizing       RunState = "finalizing"
	StateCompleted        RunState = "completed"
	StateAborted          RunState = "aborted"
)

// LogEntry is one timestamped record in the errors, warnings or info log.
type LogEntry struct {
	Time     time.Time   `json:"time"`
	Category LogCategory `json:"category"`
	Message  string      `json:"message"`
	RuleID   string      `json:"rule_id,omitempty"`
	File     string      `json:"file,omitempty"`
	Fault    string      `json:"fault,omitempty"`
}

// Summary holds the headline counts of a run.
type Summary struct {
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Info     int  `json:"info"`
	Valid    bool `json:"valid"`
}

// DiscoveryStats records how the file discovery pass went.
type DiscoveryStats struct {
	Roots     int           `json:"roots"`
	Hits      int           `json:"hits"`
	Misses    int           `json:"misses"`
	Files     int           `json:"files"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	HitRoots  []string      `json:"hit_roots,omitempty"`
	MissRoots []string      `json:"miss_roots,omitempty"`
}

// ParseCacheStats records diagnostic cache activity for the run.
type ParseCacheStats struct {
	Hits      int           `json:"hits"`
	Misses    int           `json:"misses"`
	Evictions int           `json:"evictions"`
	Entries   int           `json:"entries"`
	ParseTime time.Duration `json:"parse_time_ns"`
}

// Performance holds timing data for the run.
type Performance struct {
	TotalTime  time.Duration            `json:"total_time_ns"`
	ScanTime   time.Duration            `json:"scan_time_ns"`
	RuleTimes  map[string]time.Duration `json:"rule_times_ns"`
	Discovery  DiscoveryStats           `json:"discovery"`
	ParseCache *ParseCacheStats         `json:"parse_cache,omitempty"`
}

// Statistics holds aggregate counters for the run.
type Statistics struct {
	FilesScanned    int `json:"files_scanned"`
	RulesProcessed  int `json:"rules_processed"`
	RulesFailed     int `json:"rules_failed"`
	TotalViolations int `json:"total_violations"`
}

// RunReport is the complete output of one orchestrator invocation.
type RunReport struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	CommitHash  string             `json:"commit_hash,omitempty"`
	Branch      string             `json:"branch,omitempty"`
	State       RunState           `json:"state"`
	Summary     Summary            `json:"summary"`
	Performance Performance        `json:"performance"`
	Statistics  Statistics         `json:"statistics"`
	Errors      []LogEntry         `json:"errors"`
	Warnings    []LogEntry         `json:"warnings"`
	Info        []LogEntry         `json:"info"`
	Validation  []ValidationResult `json:"validation,omitempty"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
}

// NewRunReport returns an empty report with non-nil collections.
func NewRunReport(runID string, started time.Time) *RunReport {
	return &RunReport{
		RunID:       runID,
		StartedAt:   started,
		State:       StateIdle,
		Performance: Performance{RuleTimes: make(map[string]time.Duration)},
		Errors:      []LogEntry{},
		Warnings:    []LogEntry{},
		Info:        []LogEntry{},
		Diagnostics: []Diagnostic{},
	}
}

func (r *RunReport) AddError(e LogEntry)   { r.Errors = append(r.Errors, e) }
func (r *RunReport) AddWarning(e LogEntry) { r.Warnings = append(r.Warnings, e) }
func (r *RunReport) AddInfo(e LogEntry)    { r.Info = append(r.Info, e) }

// EntriesFor returns all log entries (any level) for the given category.
func (r *RunReport) EntriesFor(cat LogCategory) []LogEntry {
	var out []LogEntry
	for _, list := range [][]LogEntry{r.Errors, r.Warnings, r.Info} {
		for _, e := range list {
			if e.Category == cat {
				out = append(out, e)
			}
		}
	}
	return out
}

// Summarize recomputes the summary counts from the logs.
func (r *RunReport) Summarize() {
	r.Summary = Summary{
		Errors:   len(r.Errors),
		Warnings: len(r.Warnings),
		Info:     len(r.Info),
		Valid:    len(r.Errors) == 0 && r.State != StateAborted,
	}
}

// FatalError aborts a run. The report that accompanies it carries the
// full error log; Entries is a copy for callers that only keep the error.
type FatalError struct {
	Category LogCategory
	Entries  []LogEntry
	Err      error
}

func (e *FatalError) Error() string {
	if len(e.Entries) == 0 {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	msgs := make([]string, 0, len(e.Entries))
	for _, en := range e.Entries {
		msgs = append(msgs, en.Message)
	}
	return fmt.Sprintf("%s: %v: %s", e.Category, e.Err, strings.Join(msgs, "; "))
}

func (e *FatalError) Unwrap() error { return e.Err }

// RunEntry is one line of run history.
type RunEntry struct {
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id"`
	CommitHash string `json:"commit_hash,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Files      int    `json:"files"`
	Violations int    `json:"violations"`
	Errors     int    `json:"errors"`
}
