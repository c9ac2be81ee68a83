package curie

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/aleksaelezovic/curie/pkg/dataset"
)

// Entry is the cached outcome of loading one prefix's vocabulary
type Entry struct {
	Prefix string
	// Dataset is nil when the vocabulary is unavailable
	Dataset *dataset.Dataset
	// Err records why the vocabulary is unavailable
	Err error

	warned atomic.Bool
}

// Available reports whether the vocabulary was loaded
func (e *Entry) Available() bool {
	return e.Dataset != nil
}

// FetchFunc loads the vocabulary of one prefix
type FetchFunc func(ctx context.Context) (*dataset.Dataset, error)

// Cache memoizes vocabulary datasets per prefix. Entries are written once and
// never replaced, and at most one fetch per prefix is ever in flight.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
	fetches atomic.Int64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// Get returns the entry for prefix if it has been loaded
func (c *Cache) Get(prefix string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[prefix]
	return e, ok
}

// Put seeds the cache with an already parsed dataset. It reports false and
// leaves the cache unchanged when prefix already has an entry.
func (c *Cache) Put(prefix string, ds *dataset.Dataset) bool {
	_, stored := c.store(&Entry{Prefix: prefix, Dataset: ds})
	return stored
}

// Load returns the entry for prefix, calling fetch if nobody has loaded it
// yet. Concurrent callers share one fetch. The fetch runs detached from ctx:
// a caller giving up does not abort it, and its result is cached for everyone.
func (c *Cache) Load(ctx context.Context, prefix string, fetch FetchFunc) (*Entry, error) {
	if e, ok := c.Get(prefix); ok {
		return e, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(prefix, func() (interface{}, error) {
		if e, ok := c.Get(prefix); ok {
			return e, nil
		}

		ds, err := fetch(detached)
		c.fetches.Add(1)
		if err != nil {
			ds = nil
		}
		e, _ := c.store(&Entry{Prefix: prefix, Dataset: ds, Err: err})
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val.(*Entry), nil
	}
}

func (c *Cache) store(e *Entry) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[e.Prefix]; ok {
		return existing, false
	}
	c.entries[e.Prefix] = e
	return e, true
}

// Len returns the number of cached prefixes, available or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prefixes returns the cached prefixes, sorted
func (c *Cache) Prefixes() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for p := range c.entries {
		names = append(names, p)
	}
	c.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Fetches returns how many fetches the cache has performed
func (c *Cache) Fetches() int64 {
	return c.fetches.Load()
}
