// Package parsecache memoizes parsed file representations keyed by path
// and modification time. Editing a file changes its mtime, so stale
// entries are never served and no explicit invalidation is needed.
//
// Eviction is FIFO by insertion order, not LRU: a hit does not refresh an
// entry's position.
package parsecache

import (
	"container/list"
	"os"
	"sync"
	"time"

	"github.com/openkraft/kraftlint/internal/domain"
)

// ParseFunc produces the representation of one file.
type ParseFunc[T any] func(path string) (T, error)

type key struct {
	path  string
	mtime int64
}

type entry[T any] struct {
	key       key
	value     T
	parseTime time.Duration
}

// Cache is a bounded, concurrency-safe memo of parsed files.
type Cache[T any] struct {
	mu       sync.Mutex
	parse    ParseFunc[T]
	capacity int
	order    *list.List // front = oldest insertion
	index    map[key]*list.Element
	stat     func(string) (os.FileInfo, error)
	now      func() time.Time

	hits, misses, evictions int
	parseTime               time.Duration
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithStat replaces os.Stat for mtime lookups.
func WithStat[T any](fn func(string) (os.FileInfo, error)) Option[T] {
	return func(c *Cache[T]) { c.stat = fn }
}

// New returns a cache holding at most capacity entries. A capacity of zero
// or less disables memoization; every call parses.
func New[T any](capacity int, parse ParseFunc[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		parse:    parse,
		capacity: capacity,
		order:    list.New(),
		index:    make(map[key]*list.Element),
		stat:     os.Stat,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetOrParse returns the cached representation of path, parsing it on a
// miss. Parse errors are returned and not cached.
func (c *Cache[T]) GetOrParse(path string) (T, error) {
	var zero T
	info, err := c.stat(path)
	if err != nil {
		return zero, err
	}
	k := key{path: path, mtime: info.ModTime().UnixNano()}

	c.mu.Lock()
	if el, ok := c.index[k]; ok {
		c.hits++
		v := el.Value.(*entry[T]).value
		c.mu.Unlock()
		return v, nil
	}
	c.misses++
	c.mu.Unlock()

	// Parse outside the lock; two workers may race to parse the same file,
	// the second insert is dropped.
	start := c.now()
	v, err := c.parse(path)
	elapsed := c.now().Sub(start)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.parseTime += elapsed
	if c.capacity <= 0 {
		return v, nil
	}
	if _, ok := c.index[k]; ok {
		return v, nil
	}
	el := c.order.PushBack(&entry[T]{key: k, value: v, parseTime: elapsed})
	c.index[k] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry[T]).key)
		c.evictions++
	}
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Snapshot returns the cache counters. It implements
// domain.ParseCacheReporter.
func (c *Cache[T]) Snapshot() domain.ParseCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ParseCacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.order.Len(),
		ParseTime: c.parseTime,
	}
}

// Reset drops every entry and zeroes the counters.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[key]*list.Element)
	c.hits, c.misses, c.evictions = 0, 0, 0
	c.parseTime = 0
}
