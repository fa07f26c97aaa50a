package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/openkraft/kraftlint/internal/domain"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryInterval  = 50 * time.Millisecond
)

// file is the on-disk layout. Version guards against loading entries
// written by an incompatible build.
type file struct {
	Version int                           `json:"version"`
	Entries map[string]*domain.CacheEntry `json:"entries"`
}

const fileVersion = 1

// Store is a file-based implementation of domain.CacheStore. Reads and
// writes are serialized across processes with a sibling .lock file.
type Store struct {
	path        string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long Load and Save wait for the file lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithLogger sets the logger used for recoverable cache problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a file-based cache store persisting to path.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, lockTimeout: defaultLockTimeout, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the cache file location.
func (s *Store) Path() string { return s.path }

// Load reads all entries. A missing or unreadable cache is a cold cache,
// not an error; only lock failures are reported.
func (s *Store) Load() (map[string]*domain.CacheEntry, error) {
	entries := make(map[string]*domain.CacheEntry)

	unlock, err := s.acquire(false)
	if err != nil {
		return entries, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading discovery cache", slog.String("path", s.path), slog.Any("error", err))
		}
		return entries, nil
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		s.logger.Warn("discarding corrupt discovery cache", slog.String("path", s.path), slog.Any("error", err))
		return entries, nil
	}
	if f.Version != fileVersion {
		s.logger.Debug("discarding discovery cache from another version",
			slog.Int("version", f.Version), slog.Int("want", fileVersion))
		return entries, nil
	}
	for k, e := range f.Entries {
		if e != nil {
			entries[k] = e
		}
	}
	return entries, nil
}

// Save replaces the cache file with entries, creating directories as needed.
func (s *Store) Save(entries map[string]*domain.CacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	unlock, err := s.acquire(true)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(file{Version: fileVersion, Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding discovery cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing discovery cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing discovery cache: %w", err)
	}
	return nil
}

// Invalidate removes the cache file. Removing a missing file is not an error.
func (s *Store) Invalidate() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// acquire takes the lock and returns the function that releases it. A
// shared lock is used for reads.
func (s *Store) acquire(exclusive bool) (unlock func(), err error) {
	if _, err := os.Stat(filepath.Dir(s.path)); os.IsNotExist(err) {
		// Nothing to lock yet; Save creates the directory first.
		return func() {}, nil
	}

	fl := flock.New(s.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)

	var locked bool
	if exclusive {
		locked, err = fl.TryLockContext(ctx, lockRetryInterval)
	} else {
		locked, err = fl.TryRLockContext(ctx, lockRetryInterval)
	}
	if !locked || err != nil {
		cancel()
		return nil, fmt.Errorf("could not acquire discovery cache lock %s within %s", fl.Path(), s.lockTimeout)
	}

	return func() {
		_ = fl.Unlock()
		cancel()
	}, nil
}
