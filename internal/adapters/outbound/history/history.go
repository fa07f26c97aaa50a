// Package history keeps a bounded log of completed runs per project.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/openkraft/kraftlint/internal/domain"
)

// RelPath is the history file location inside a project.
const RelPath = ".kraftlint/history/runs.json"

// DefaultLimit caps how many runs are kept; older entries are dropped.
const DefaultLimit = 200

const lockTimeout = 5 * time.Second

// FileHistory implements domain.RunHistory as a JSON array on disk.
// Save is a read-modify-write under a file lock, so concurrent runs
// against one project do not drop each other's entries.
type FileHistory struct {
	limit int
}

func New() *FileHistory { return WithLimit(DefaultLimit) }

// WithLimit returns a FileHistory keeping at most n entries; n <= 0 keeps
// everything.
func WithLimit(n int) *FileHistory { return &FileHistory{limit: n} }

// Path returns the history file for projectPath.
func Path(projectPath string) string { return filepath.Join(projectPath, RelPath) }

func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	fp := Path(projectPath)
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	lock := flock.New(fp + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking run history: %w", err)
	}
	if !ok {
		return errors.New("run history is locked by another process")
	}
	defer lock.Unlock()

	entries, err := read(fp)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if h.limit > 0 && len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(fp), "runs-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fp)
}

// Load returns the recorded runs, oldest first. A project without history
// yields no entries and no error.
func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	return read(Path(projectPath))
}

func read(fp string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(fp)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("reading run history: %w", err)
	}
	return entries, nil
}
