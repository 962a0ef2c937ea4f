package tle

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store provides lock-free read access to the current dataset. Readers on
// the request path never contend with a refresh in progress.
type Store struct {
	dataset atomic.Pointer[Dataset]
	mu      sync.Mutex // serializes refresh operations
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (s *Store) Get() *Dataset {
	return s.dataset.Load()
}

// Set atomically replaces the current dataset.
func (s *Store) Set(ds *Dataset) {
	s.dataset.Store(ds)
}

// Lookup finds the entry for a NORAD catalog number in the current dataset.
func (s *Store) Lookup(noradID int) (Entry, bool) {
	ds := s.dataset.Load()
	if ds == nil {
		return Entry{}, false
	}
	for _, e := range ds.Satellites {
		if e.NoradID == noradID {
			return e, true
		}
	}
	return Entry{}, false
}

// AgeSeconds returns the age of the current dataset in seconds, or -1 if no
// dataset is loaded.
func (s *Store) AgeSeconds() float64 {
	ds := s.dataset.Load()
	if ds == nil {
		return -1
	}
	return time.Since(ds.FetchedAt).Seconds()
}

// Lock acquires the refresh mutex. Concurrent refresh requests queue here
// instead of hammering the upstream source.
func (s *Store) Lock() {
	s.mu.Lock()
}

// Unlock releases the refresh mutex.
func (s *Store) Unlock() {
	s.mu.Unlock()
}
