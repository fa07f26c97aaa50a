package domain

import (
	"os"
	"time"
)

// CacheEntry is a cached snapshot of one discovery root.
type CacheEntry struct {
	Path           string               `json:"path"`
	Key            string               `json:"key"`
	Files          []string             `json:"files"`
	SnapshotAt     time.Time            `json:"snapshot_at"`
	FileMTimes     map[string]time.Time `json:"file_mtimes,omitempty"`
	DirMTimes      map[string]time.Time `json:"dir_mtimes,omitempty"`
	AggregateMTime time.Time            `json:"aggregate_mtime"`
	// Policy fingerprints the discovery settings the entry was built with.
	Policy string `json:"policy,omitempty"`
}

// StatFunc matches os.Stat; tests substitute it.
type StatFunc func(name string) (os.FileInfo, error)

// IsUsable reports whether the entry can be served without rescanning.
// With trackMTime off only the TTL is consulted.
func (c *CacheEntry) IsUsable(now time.Time, ttl time.Duration, trackMTime bool, stat StatFunc) bool {
	if c == nil {
		return false
	}
	if ttl <= 0 || now.Sub(c.SnapshotAt) >= ttl {
		return false
	}
	if !trackMTime {
		return true
	}
	if stat == nil {
		stat = os.Stat
	}

	root, err := stat(c.Path)
	if err != nil || !root.IsDir() || root.ModTime().After(c.AggregateMTime) {
		return false
	}
	for dir, recorded := range c.DirMTimes {
		info, err := stat(dir)
		if err != nil || info.ModTime().After(recorded) {
			return false
		}
	}
	for file, recorded := range c.FileMTimes {
		info, err := stat(file)
		if err != nil || info.ModTime().After(recorded) {
			return false
		}
	}
	return true
}
