package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/history"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		Timestamp:  "2026-02-25T10:00:00Z",
		RunID:      "run-1",
		CommitHash: "abc1234",
		Files:      12,
		Violations: 3,
	}

	require.NoError(t, h.Save(dir, entry))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t1", Violations: 47}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t2", Violations: 20}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t3", Violations: 5}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 47, entries[0].Violations)
	assert.Equal(t, 5, entries[2].Violations)
}

func TestHistory_LimitDropsOldest(t *testing.T) {
	dir := t.TempDir()
	h := history.WithLimit(2)

	for i := 1; i <= 3; i++ {
		require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: fmt.Sprintf("t%d", i)}))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t2", entries[0].Timestamp)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	fp := history.Path(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("{nope"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, domain.RunEntry{Timestamp: "t1"}))

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistory_ConcurrentSavesKeepEveryEntry(t *testing.T) {
	dir := t.TempDir()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, history.New().Save(dir, domain.RunEntry{RunID: fmt.Sprintf("run-%d", i)}))
		}(i)
	}
	wg.Wait()

	entries, err := history.New().Load(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}
