package repository

import (
	"context"
	"sync"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
	"github.com/venuelab/stagecraft/pkg/metrics"
)

// defaultMaxSize bounds the store when no option overrides it.
const defaultMaxSize = 10000

// ResultStore implements Store with a map plus a FIFO ring of ids for
// eviction order. All operations are O(1).
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]calc.Response

	// ring holds ids in arrival order; head is the next eviction victim.
	ring    []string
	head    int
	tail    int
	count   int
	maxSize int
}

// NewResultStore creates a bounded result store with configuration options.
func NewResultStore(opts ...Option) *ResultStore {
	s := &ResultStore{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.results = make(map[string]calc.Response, s.maxSize)
	s.ring = make([]string, s.maxSize)

	metrics.UpdateResultStoreSize(0)

	return s
}

// Put stores a finished response under its request id.
func (s *ResultStore) Put(ctx context.Context, resp calc.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[resp.ID]; exists {
		// Overwrite in place; the id keeps its eviction slot.
		s.results[resp.ID] = resp
		return
	}

	if s.count == s.maxSize {
		victim := s.ring[s.head]
		delete(s.results, victim)
		s.head = (s.head + 1) % s.maxSize
		s.count--
		metrics.RecordResultStoreEviction()
	}

	s.ring[s.tail] = resp.ID
	s.tail = (s.tail + 1) % s.maxSize
	s.count++
	s.results[resp.ID] = resp

	metrics.UpdateResultStoreSize(s.count)
}

// Get returns the response for a request id.
func (s *ResultStore) Get(ctx context.Context, id string) (calc.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp, ok := s.results[id]
	if !ok {
		return calc.Response{}, ErrNotFound
	}
	return resp, nil
}

// Count returns the number of stored responses.
func (s *ResultStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
