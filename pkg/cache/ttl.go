package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
	lastUsed  time.Time
}

// Store is a mutex-guarded in-memory cache keyed by string. Every value
// carries its fetch timestamp so callers decide freshness per lookup; entries
// past maxEntries are evicted least-recently-used first.
type Store[V any] struct {
	mu         sync.Mutex
	m          map[string]*entry[V]
	maxEntries int
	now        func() time.Time
}

type Option[V any] func(*Store[V])

// WithMaxEntries bounds the store; <= 0 means unbounded.
func WithMaxEntries[V any](n int) Option[V] {
	return func(s *Store[V]) { s.maxEntries = n }
}

// WithClock overrides the time source. Used in tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *Store[V]) { s.now = now }
}

func New[V any](opts ...Option[V]) *Store[V] {
	s := &Store[V]{
		m:   make(map[string]*entry[V]),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached value and its fetch timestamp.
func (s *Store[V]) Get(key string) (V, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		var zero V
		return zero, time.Time{}, false
	}
	e.lastUsed = s.now()
	return e.value, e.fetchedAt, true
}

// GetFresh returns the value only if it was fetched less than maxAge ago.
func (s *Store[V]) GetFresh(key string, maxAge time.Duration) (V, bool) {
	v, fetchedAt, ok := s.Get(key)
	if !ok || s.now().Sub(fetchedAt) >= maxAge {
		var zero V
		return zero, false
	}
	return v, true
}

// Put stores the value with the current time as its fetch timestamp,
// overwriting any prior entry for the key.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.m[key]; !exists && s.maxEntries > 0 && len(s.m) >= s.maxEntries {
		s.evictLRU()
	}
	s.m[key] = &entry[V]{value: value, fetchedAt: now, lastUsed: now}
}

// Fresh reports whether the key holds a value fetched less than maxAge ago.
func (s *Store[V]) Fresh(key string, maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	return ok && s.now().Sub(e.fetchedAt) < maxAge
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// caller holds s.mu
func (s *Store[V]) evictLRU() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, e := range s.m {
		if first || e.lastUsed.Before(oldest) {
			oldest = e.lastUsed
			oldestKey = key
			first = false
		}
	}
	if oldestKey != "" {
		delete(s.m, oldestKey)
	}
}
