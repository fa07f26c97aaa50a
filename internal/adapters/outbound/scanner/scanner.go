package scanner

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openkraft/kraftlint/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"bin":          true,
	"testdata":     true,
}

// FileScanner implements domain.FileDiscoverer by walking the filesystem,
// serving unchanged roots from a domain.CacheStore.
type FileScanner struct {
	cfg    domain.DiscoveryConfig
	store  domain.CacheStore
	logger *slog.Logger
	now    domain.Clock
}

// Option configures a FileScanner.
type Option func(*FileScanner)

func WithLogger(l *slog.Logger) Option { return func(s *FileScanner) { s.logger = l } }

func WithClock(c domain.Clock) Option { return func(s *FileScanner) { s.now = c } }

// New returns a scanner. A nil store disables caching.
func New(cfg domain.DiscoveryConfig, store domain.CacheStore, opts ...Option) *FileScanner {
	s := &FileScanner{cfg: cfg, store: store, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CacheKey returns the stable cache key of a canonical root path.
func CacheKey(canonical string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(canonical)))
}

// PolicyFingerprint hashes the inclusion policy a cache entry was built
// under. Entries recorded under a different policy are rescanned.
func PolicyFingerprint(cfg domain.DiscoveryConfig) string {
	exts := make([]string, 0, len(cfg.EffectiveExtensions()))
	for _, e := range cfg.EffectiveExtensions() {
		exts = append(exts, strings.ToLower(e))
	}
	sort.Strings(exts)
	exclude := append([]string(nil), cfg.Exclude...)
	sort.Strings(exclude)

	h := sha256.New()
	fmt.Fprintf(h, "ext=%s\x00exclude=%s\x00max=%d\x00mtime=%t",
		strings.Join(exts, ","), strings.Join(exclude, "\x01"), cfg.MaxFileSize, cfg.TrackMTimeEnabled())
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Discover returns the sorted union of analyzable files under roots.
// Missing roots and unreadable subtrees produce warnings, not errors; the
// only error is context cancellation.
func (s *FileScanner) Discover(ctx context.Context, roots []string) (*domain.DiscoveryResult, error) {
	start := s.now()
	res := &domain.DiscoveryResult{Files: []string{}}
	res.Stats.Roots = len(roots)

	entries := s.loadEntries(res)
	policy := PolicyFingerprint(s.cfg)
	dirty := false
	seen := make(map[string]bool)

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		canonical, err := canonicalize(root)
		if err != nil {
			s.warn(res, root, fmt.Sprintf("skipping scan root %s: %v", root, err))
			continue
		}

		key := CacheKey(canonical)
		entry := entries[key]
		if s.cacheEnabled() && entry != nil && entry.Policy == policy && entry.IsUsable(s.now(), s.cfg.CacheTTL, s.cfg.TrackMTimeEnabled(), os.Stat) {
			res.Stats.Hits++
			res.Stats.HitRoots = append(res.Stats.HitRoots, canonical)
			s.logger.Debug("discovery cache hit", slog.String("root", canonical), slog.Int("files", len(entry.Files)))
		} else {
			res.Stats.Misses++
			res.Stats.MissRoots = append(res.Stats.MissRoots, canonical)
			entry, err = s.walk(ctx, canonical, res)
			if err != nil {
				return res, err
			}
			if entry == nil {
				continue
			}
			entry.Key = key
			entries[key] = entry
			dirty = true
			s.logger.Debug("discovery cache miss", slog.String("root", canonical), slog.Int("files", len(entry.Files)))
		}

		for _, f := range entry.Files {
			if !seen[f] {
				seen[f] = true
				res.Files = append(res.Files, f)
			}
		}
	}

	sort.Strings(res.Files)
	if dirty && s.cacheEnabled() {
		if err := s.store.Save(entries); err != nil {
			s.warn(res, "", fmt.Sprintf("saving discovery cache: %v", err))
		}
	}

	res.Stats.Files = len(res.Files)
	res.Stats.Elapsed = s.now().Sub(start)
	return res, nil
}

func (s *FileScanner) cacheEnabled() bool {
	return s.store != nil && !s.cfg.NoCache
}

func (s *FileScanner) loadEntries(res *domain.DiscoveryResult) map[string]*domain.CacheEntry {
	if !s.cacheEnabled() {
		return make(map[string]*domain.CacheEntry)
	}
	entries, err := s.store.Load()
	if err != nil {
		s.warn(res, "", fmt.Sprintf("loading discovery cache: %v", err))
	}
	if entries == nil {
		entries = make(map[string]*domain.CacheEntry)
	}
	return entries
}

func (s *FileScanner) warn(res *domain.DiscoveryResult, path, msg string) {
	s.logger.Warn(msg, slog.String("path", path))
	res.Warnings = append(res.Warnings, domain.LogEntry{
		Time:     s.now(),
		Category: domain.LogFileScanning,
		Message:  msg,
		File:     path,
	})
}

// canonicalize resolves root to an absolute, symlink-free directory path.
func canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("does not exist")
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory")
	}
	return abs, nil
}

// walk scans one root and builds a fresh cache entry. Unreadable subtrees
// are logged and contribute no files. A nil entry means the root itself
// could not be read.
func (s *FileScanner) walk(ctx context.Context, root string, res *domain.DiscoveryResult) (*domain.CacheEntry, error) {
	track := s.cfg.TrackMTimeEnabled()
	entry := &domain.CacheEntry{
		Path:       root,
		Files:      []string{},
		SnapshotAt: s.now(),
		Policy:     PolicyFingerprint(s.cfg),
	}
	if track {
		entry.FileMTimes = make(map[string]time.Time)
		entry.DirMTimes = make(map[string]time.Time)
	}
	extensions := s.cfg.EffectiveExtensions()

	rootFailed := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == root {
				rootFailed = true
			}
			s.warn(res, path, fmt.Sprintf("cannot read %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if path != root && (isHidden(name) || skipDirs[name] || s.excluded(name, rel)) {
				return filepath.SkipDir
			}
			if track {
				if info, err := d.Info(); err == nil {
					entry.DirMTimes[path] = info.ModTime()
					entry.AggregateMTime = latest(entry.AggregateMTime, info.ModTime())
				}
			}
			return nil
		}

		if !d.Type().IsRegular() || isHidden(name) || !hasExtension(name, extensions) || s.excluded(name, rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// Vanished between listing and stat.
			return nil
		}
		// Oversized candidates are fingerprinted too so shrinking one
		// invalidates the entry.
		if track {
			entry.FileMTimes[path] = info.ModTime()
			entry.AggregateMTime = latest(entry.AggregateMTime, info.ModTime())
		}
		if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
			s.logger.Debug("skipping oversized file", slog.String("path", path), slog.Int64("size", info.Size()))
			return nil
		}

		entry.Files = append(entry.Files, path)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.warn(res, root, fmt.Sprintf("walking %s: %v", root, err))
		return nil, nil
	}
	if rootFailed {
		return nil, nil
	}

	sort.Strings(entry.Files)
	return entry, nil
}

// excluded matches configured patterns against the base name and the
// root-relative path. Patterns with glob metacharacters use filepath.Match;
// anything else is a substring of the relative path.
func (s *FileScanner) excluded(name, rel string) bool {
	for _, p := range s.cfg.Exclude {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, _ := filepath.Match(p, name); ok {
				return true
			}
			if ok, _ := filepath.Match(p, rel); ok {
				return true
			}
			continue
		}
		if strings.Contains(rel, p) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
