package domain

import (
	"context"
	"time"
)

// FileDiscoverer walks scan roots and returns the analyzable files.
type FileDiscoverer interface {
	Discover(ctx context.Context, roots []string) (*DiscoveryResult, error)
}

// DiscoveryResult holds the files found across all roots plus the
// non-fatal problems met on the way.
type DiscoveryResult struct {
	Files    []string       `json:"files"`
	Stats    DiscoveryStats `json:"stats"`
	Warnings []LogEntry     `json:"warnings,omitempty"`
}

// CacheStore persists discovery cache entries keyed by path hash.
// Deleting the backing storage is always safe.
type CacheStore interface {
	Load() (map[string]*CacheEntry, error)
	Save(entries map[string]*CacheEntry) error
	Invalidate() error
}

// ConfigLoader reads a RunConfig from a project directory.
type ConfigLoader interface {
	Load(projectPath string) (RunConfig, error)
}

// RunHistory stores one entry per completed run.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// GitInfo provides git metadata for a project.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	Branch(projectPath string) (string, error)
}

// ReportSink persists a finished run report.
type ReportSink interface {
	Write(path string, report *RunReport) error
}

// ParseCacheReporter exposes diagnostic cache counters to the orchestrator.
type ParseCacheReporter interface {
	Snapshot() ParseCacheStats
}

// ProgressFunc is notified synchronously at pipeline checkpoints. It must
// not block and must not call back into the orchestrator.
type ProgressFunc func(step, total int, message string)

// Clock returns the current time; tests substitute it.
type Clock func() time.Time
