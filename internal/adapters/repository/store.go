// Package repository defines the calculation result store interface and
// errors.
//
// The store backs the async HTTP flow: workers put finished responses here
// by request id, callers poll until their id shows up. It is bounded with
// FIFO eviction so an abandoned id cannot pin memory forever; an evicted
// result is indistinguishable from an unknown one.
package repository

import (
	"context"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
)

// Store provides write-once, read-many access to finished calculations.
type Store interface {
	// Put stores a finished response under its request id. Re-putting an
	// existing id overwrites it in place without consuming a slot.
	Put(ctx context.Context, resp calc.Response)

	// Get returns the response for a request id.
	// Returns ErrNotFound when the id is unknown or evicted.
	Get(ctx context.Context, id string) (calc.Response, error)

	// Count returns the number of stored responses.
	Count(ctx context.Context) int
}
