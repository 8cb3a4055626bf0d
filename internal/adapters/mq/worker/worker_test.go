package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/venuelab/stagecraft/internal/adapters/calc"
	"github.com/venuelab/stagecraft/internal/adapters/mq/queue"
	"github.com/venuelab/stagecraft/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type memorySink struct {
	mu    sync.Mutex
	resps []calc.Response
}

func (s *memorySink) Put(ctx context.Context, resp calc.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resps = append(s.resps, resp)
}

func (s *memorySink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resps)
}

func catenaryRequest(id string) calc.Request {
	payload, _ := json.Marshal(map[string]float64{
		"span":             10,
		"suspended_weight": 500,
		"cable_weight":     2,
	})
	return calc.Request{ID: id, Type: calc.KindCatenary, Payload: payload}
}

func TestWorker_RepliesOnChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	w := NewInMemoryWorker(q, calc.NewEngine(), nil, WithName("test-worker"))
	go w.Run(ctx)

	reply := make(chan calc.Response, 1)
	if !q.Enqueue(ctx, queue.Job{Request: catenaryRequest("sync-1"), Reply: reply}) {
		t.Fatal("enqueue failed")
	}

	select {
	case resp := <-reply:
		if resp.ID != "sync-1" {
			t.Errorf("expected sync-1, got %s", resp.ID)
		}
		if resp.Failed() {
			t.Errorf("unexpected error: %s", resp.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reply within deadline")
	}
}

func TestWorker_SinksWhenNoReplyChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	sink := &memorySink{}
	w := NewInMemoryWorker(q, calc.NewEngine(), sink)
	go w.Run(ctx)

	if !q.Enqueue(ctx, queue.Job{Request: catenaryRequest("async-1")}) {
		t.Fatal("enqueue failed")
	}

	deadline := time.After(2 * time.Second)
	for sink.len() == 0 {
		select {
		case <-deadline:
			t.Fatal("response never reached the sink")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorker_DoesNotBlockOnAbandonedReply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	w := NewInMemoryWorker(q, calc.NewEngine(), nil)
	go w.Run(ctx)

	// Unbuffered reply channel nobody reads.
	abandoned := make(chan calc.Response)
	if !q.Enqueue(ctx, queue.Job{Request: catenaryRequest("gone-1"), Reply: abandoned}) {
		t.Fatal("enqueue failed")
	}

	// A second job with a live listener must still get through.
	reply := make(chan calc.Response, 1)
	if !q.Enqueue(ctx, queue.Job{Request: catenaryRequest("live-1"), Reply: reply}) {
		t.Fatal("enqueue failed")
	}

	select {
	case resp := <-reply:
		if resp.ID != "live-1" {
			t.Errorf("expected live-1, got %s", resp.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker blocked on abandoned reply channel")
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(100))
	sink := &memorySink{}
	pool := NewPool(4, q, calc.NewEngine(), sink)
	pool.Start(ctx)

	const jobs = 20
	for i := 0; i < jobs; i++ {
		if !q.Enqueue(ctx, queue.Job{Request: catenaryRequest("")}) {
			t.Fatalf("enqueue %d failed", i)
		}
	}

	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := sink.len(); got != jobs {
		t.Errorf("expected %d sunk responses, got %d", jobs, got)
	}
}
