package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
)

func resp(id string) calc.Response {
	return calc.Response{ID: id, Type: calc.KindCatenary, Result: id}
}

func TestResultStore_PutGet(t *testing.T) {
	s := NewResultStore(WithMaxSize(10))
	ctx := context.Background()

	s.Put(ctx, resp("a"))

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Result != "a" {
		t.Errorf("expected result a, got %v", got.Result)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResultStore_FIFOEviction(t *testing.T) {
	s := NewResultStore(WithMaxSize(3))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		s.Put(ctx, resp(id))
	}
	if c := s.Count(ctx); c != 3 {
		t.Fatalf("expected count 3, got %d", c)
	}

	// A fourth insert evicts the oldest.
	s.Put(ctx, resp("d"))

	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected a to be evicted, got %v", err)
	}
	for _, id := range []string{"b", "c", "d"} {
		if _, err := s.Get(ctx, id); err != nil {
			t.Errorf("expected %s to survive, got %v", id, err)
		}
	}
	if c := s.Count(ctx); c != 3 {
		t.Errorf("expected count to stay 3, got %d", c)
	}
}

func TestResultStore_OverwriteKeepsSlot(t *testing.T) {
	s := NewResultStore(WithMaxSize(2))
	ctx := context.Background()

	s.Put(ctx, resp("a"))
	s.Put(ctx, resp("b"))

	// Overwriting must not evict anything.
	updated := resp("a")
	updated.Result = "a2"
	s.Put(ctx, updated)

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Result != "a2" {
		t.Errorf("expected overwritten result, got %v", got.Result)
	}
	if _, err := s.Get(ctx, "b"); err != nil {
		t.Errorf("expected b to survive overwrite, got %v", err)
	}
	if c := s.Count(ctx); c != 2 {
		t.Errorf("expected count 2, got %d", c)
	}
}

func TestResultStore_WrapAround(t *testing.T) {
	s := NewResultStore(WithMaxSize(2))
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		s.Put(ctx, resp(fmt.Sprintf("id-%d", i)))
	}

	// Only the two newest remain.
	for i := 0; i < 5; i++ {
		if _, err := s.Get(ctx, fmt.Sprintf("id-%d", i)); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected id-%d evicted", i)
		}
	}
	for i := 5; i < 7; i++ {
		if _, err := s.Get(ctx, fmt.Sprintf("id-%d", i)); err != nil {
			t.Errorf("expected id-%d present, got %v", i, err)
		}
	}
}
