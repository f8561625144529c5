// Package cache memoizes parsed input files within one process. Entries are
// keyed on the file's content digest, so an edited file is never served stale;
// callers can still drop entries explicitly.
package cache

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL applies when New is given a non-positive ttl.
const DefaultTTL = 10 * time.Minute

// Store is a content-addressed memo table.
type Store struct {
	c *gocache.Cache

	mu     sync.Mutex
	byPath map[string]map[string]struct{}
}

// New creates a store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		c:      gocache.New(ttl, ttl*2),
		byPath: map[string]map[string]struct{}{},
	}
}

// Key builds a cache key from the dataset kind, content digest and an options
// fingerprint.
func Key(kind, digest, fingerprint string) string {
	return fmt.Sprintf("%s|%s|%s", kind, digest, fingerprint)
}

// Get returns a cached value.
func (s *Store) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return s.c.Get(key)
}

// Set stores v under key and remembers that it came from path.
func (s *Store) Set(path, key string, v any) {
	if s == nil {
		return
	}
	s.c.Set(key, v, gocache.DefaultExpiration)
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.byPath[path]
	if keys == nil {
		keys = map[string]struct{}{}
		s.byPath[path] = keys
	}
	keys[key] = struct{}{}
}

// Invalidate drops every entry loaded from path and returns how many were removed.
func (s *Store) Invalidate(path string) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	keys := s.byPath[path]
	delete(s.byPath, path)
	s.mu.Unlock()
	n := 0
	for k := range keys {
		if _, ok := s.c.Get(k); ok {
			n++
		}
		s.c.Delete(k)
	}
	return n
}

// Flush drops everything.
func (s *Store) Flush() {
	if s == nil {
		return
	}
	s.c.Flush()
	s.mu.Lock()
	s.byPath = map[string]map[string]struct{}{}
	s.mu.Unlock()
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return s.c.ItemCount()
}

// Memo returns the cached value for key or calls load and caches its result.
// hit reports whether the value came from the cache. Errors are not cached.
func Memo[T any](s *Store, path, key string, load func() (T, error)) (v T, hit bool, err error) {
	if cached, ok := s.Get(key); ok {
		if tv, ok := cached.(T); ok {
			return tv, true, nil
		}
	}
	v, err = load()
	if err != nil {
		return v, false, err
	}
	s.Set(path, key, v)
	return v, false, nil
}
