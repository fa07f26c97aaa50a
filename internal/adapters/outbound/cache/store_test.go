package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/cache"
	"github.com/openkraft/kraftlint/internal/domain"
)

func sampleEntries() map[string]*domain.CacheEntry {
	now := time.Now().Truncate(time.Second)
	return map[string]*domain.CacheEntry{
		"abc": {
			Path:           "/src/project",
			Key:            "abc",
			Files:          []string{"/src/project/a.go", "/src/project/b.go"},
			SnapshotAt:     now,
			FileMTimes:     map[string]time.Time{"/src/project/a.go": now},
			AggregateMTime: now,
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "cache", "discovery.json"))

	require.NoError(t, store.Save(sampleEntries()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded, "abc")
	assert.Equal(t, []string{"/src/project/a.go", "/src/project/b.go"}, loaded["abc"].Files)
	assert.True(t, loaded["abc"].SnapshotAt.Equal(sampleEntries()["abc"].SnapshotAt))
}

func TestStore_LoadNonExistent(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "missing", "discovery.json"))

	loaded, err := store.Load()
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_LoadCorruptIsColdCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	loaded, err := cache.New(path).Load()
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_Invalidate(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "discovery.json"))
	require.NoError(t, store.Save(sampleEntries()))

	require.NoError(t, store.Invalidate())
	require.NoError(t, store.Invalidate(), "second invalidate is a no-op")

	loaded, err := store.Load()
	assert.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".kraftlint", "cache")
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err), "cache directory should not exist before save")

	require.NoError(t, cache.New(filepath.Join(dir, "discovery.json")).Save(sampleEntries()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_SaveReplacesWholesale(t *testing.T) {
	store := cache.New(filepath.Join(t.TempDir(), "discovery.json"))
	require.NoError(t, store.Save(sampleEntries()))
	require.NoError(t, store.Save(map[string]*domain.CacheEntry{"def": {Key: "def"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, loaded, "abc")
	assert.Contains(t, loaded, "def")
}

func TestMemory_RoundTrip(t *testing.T) {
	m := cache.NewMemory()
	require.NoError(t, m.Save(sampleEntries()))
	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Contains(t, loaded, "abc")
	assert.Equal(t, 1, m.Saves())

	require.NoError(t, m.Invalidate())
	loaded, _ = m.Load()
	assert.Empty(t, loaded)
}
