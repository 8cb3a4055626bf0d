// Package dedupe defines the interface for request idempotency tracking.
//
// A client that retries an async submission (timeout, reconnect) must not
// fan the same request id out into the queue twice. The guard remembers
// recently accepted ids; the window is bounded, so a very old retry can
// slip through and simply overwrites its own result.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records accepted request IDs to keep retried submissions
// idempotent.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if
	// not. Returns true if id was already seen, false if it was newly
	// recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen window, allowing a retry.
	// Used when a request was recorded but never made it into the queue
	// (backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// slot is one ring entry. The sequence ties the slot to a specific
// recording of the id: unrecording or re-recording leaves earlier slots
// stale, and stale slots are skipped at eviction rather than evicting a
// newer recording of the same id.
type slot struct {
	id  string
	seq uint64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of slots.
// When the window is full the oldest live id is forgotten first.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]uint64

	ring    []slot
	head    int
	tail    int
	count   int
	nextSeq uint64

	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a bounded deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]uint64, d.maxSize)
	d.ring = make([]slot, d.maxSize)

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.count == d.maxSize {
		d.evictOldest()
	}

	d.seen[id] = d.nextSeq
	d.ring[d.tail] = slot{id: id, seq: d.nextSeq}
	d.nextSeq++
	d.tail = (d.tail + 1) % d.maxSize
	d.count++
	d.size.Add(1)

	return false
}

// Unrecord removes an ID from the seen window. The ring slot stays until
// it cycles out; eviction skips slots that no longer back a live id.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
}

// evictOldest advances the ring head past stale slots until one live id is
// forgotten. A slot is live only while its sequence still matches the
// map's, so a re-recorded id is evicted by its newest slot, not its first.
// Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.count > 0 {
		victim := d.ring[d.head]
		d.head = (d.head + 1) % d.maxSize
		d.count--

		if seq, live := d.seen[victim.id]; live && seq == victim.seq {
			delete(d.seen, victim.id)
			d.size.Add(-1)
			return
		}
	}
}

// Size returns the current number of tracked ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
