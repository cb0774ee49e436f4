package event

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bamsammich/taskmap/internal/fault"
)

const (
	// MaxFetch is the largest number of events a single fetch may request.
	MaxFetch = 65535

	// DefaultCapacity is the queue depth used when none is configured.
	DefaultCapacity = 8192

	// minRing is the initial ring allocation; rings grow by doubling.
	minRing = 16

	// shrinkAbove releases a drained ring larger than this many slots.
	shrinkAbove = 1024
)

// Policy selects what Push does when the queue is full.
type Policy int

const (
	// DropOldest evicts the head of the queue to make room.
	DropOldest Policy = iota
	// RejectNew discards the incoming event.
	RejectNew
)

func (p Policy) String() string {
	switch p {
	case DropOldest:
		return "drop-oldest"
	case RejectNew:
		return "reject-new"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "drop-oldest" or "reject-new".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop-oldest":
		return DropOldest, nil
	case "reject-new":
		return RejectNew, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q (use drop-oldest or reject-new)", s)
	}
}

// QueueConfig configures a Queue. Capacity 0 means unbounded: memory is
// reclaimed as events are fetched.
type QueueConfig struct {
	OnDrop   func() // called without the lock held whenever an event is lost to overflow
	Capacity int
	Mask     Kind
	Policy   Policy
}

// QueueStats is a point-in-time read of a queue's counters.
type QueueStats struct {
	Pending  int
	Enqueued uint64
	Fetched  uint64
	Dropped  uint64
	Filtered uint64
}

// Queue is a per-task FIFO of change events. Push may run concurrently with
// fetches; fetches are serialized so each event is delivered exactly once.
type Queue struct {
	notify  chan struct{} // signalled on push, capacity 1
	done    chan struct{} // closed by Close
	fetchCh chan struct{} // fetch token, capacity 1

	onDrop func()

	mu       sync.Mutex
	ring     []ChangeEvent
	head     int
	size     int
	capacity int
	mask     Kind
	policy   Policy
	closed   bool
	stats    QueueStats
}

// NewQueue creates an empty queue.
func NewQueue(cfg QueueConfig) *Queue {
	if cfg.Capacity < 0 {
		cfg.Capacity = 0
	}
	q := &Queue{
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		fetchCh:  make(chan struct{}, 1),
		capacity: cfg.Capacity,
		mask:     cfg.Mask,
		policy:   cfg.Policy,
		onDrop:   cfg.OnDrop,
	}
	q.fetchCh <- struct{}{}
	return q
}

// Mask returns the interest mask applied at enqueue time.
func (q *Queue) Mask() Kind { return q.mask }

// Capacity returns the configured depth (0 = unbounded).
func (q *Queue) Capacity() int { return q.capacity }

// Policy returns the overflow policy.
func (q *Queue) Policy() Policy { return q.policy }

// Push appends ev if its state intersects the queue's mask. It reports
// whether the event was queued. When the queue is full the overflow policy
// decides which event is lost; either way the dropped counter grows.
func (q *Queue) Push(ev ChangeEvent) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if ev.State&q.mask == 0 {
		q.stats.Filtered++
		q.mu.Unlock()
		return false
	}

	dropped := false
	if q.capacity > 0 && q.size == q.capacity {
		q.stats.Dropped++
		dropped = true
		if q.policy == RejectNew {
			q.mu.Unlock()
			q.reportDrop()
			return false
		}
		q.ring[q.head] = ChangeEvent{}
		q.head = (q.head + 1) % len(q.ring)
		q.size--
	}
	if q.size == len(q.ring) {
		q.grow()
	}

	q.ring[(q.head+q.size)%len(q.ring)] = ev
	q.size++
	q.stats.Enqueued++
	q.mu.Unlock()

	if dropped {
		q.reportDrop()
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

func (q *Queue) reportDrop() {
	if q.onDrop != nil {
		q.onDrop()
	}
}

// Fetch removes and returns up to limit events from the head of the queue.
// A short or empty queue is not an error.
func (q *Queue) Fetch(limit int) ([]ChangeEvent, error) {
	return q.FetchWait(context.Background(), limit, 0)
}

// FetchWait behaves like Fetch, but when the queue is empty it waits up to
// timeout for an event to arrive. It returns an empty result when the timeout
// elapses and never blocks past it, the context, or Close.
//
//nolint:revive // cognitive-complexity: select-in-loop with timeout, context and close
func (q *Queue) FetchWait(ctx context.Context, limit int, timeout time.Duration) ([]ChangeEvent, error) {
	if limit < 1 || limit > MaxFetch {
		return nil, fmt.Errorf("fetch count %d outside [1, %d]: %w", limit, MaxFetch, fault.ErrInvalidArgument)
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	// Acquire the fetch token.
	select {
	case <-q.fetchCh:
		defer func() { q.fetchCh <- struct{}{} }()
	case <-q.done:
		return nil, fmt.Errorf("queue closed: %w", fault.ErrNotFound)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-deadline:
		return nil, nil
	}

	for {
		evs, err := q.take(limit)
		if err != nil || len(evs) > 0 || deadline == nil {
			return evs, err
		}

		select {
		case <-q.notify:
		case <-q.done:
			return nil, fmt.Errorf("queue closed: %w", fault.ErrNotFound)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, nil
		}
	}
}

// Close discards pending events and wakes waiting fetches. Later pushes are
// ignored and fetches fail with fault.ErrNotFound.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.ring = nil
	q.head, q.size = 0, 0
	close(q.done)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns the queue's counters.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := q.stats
	st.Pending = q.size
	return st
}

func (q *Queue) take(limit int) ([]ChangeEvent, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, fmt.Errorf("queue closed: %w", fault.ErrNotFound)
	}
	n := min(limit, q.size)
	if n == 0 {
		return nil, nil
	}

	out := make([]ChangeEvent, n)
	for i := range n {
		idx := (q.head + i) % len(q.ring)
		out[i] = q.ring[idx]
		q.ring[idx] = ChangeEvent{}
	}
	q.head = (q.head + n) % len(q.ring)
	q.size -= n
	q.stats.Fetched += uint64(n) //nolint:gosec // G115: n is positive

	if q.size == 0 {
		q.head = 0
		if len(q.ring) > shrinkAbove {
			q.ring = nil
		}
	}
	return out, nil
}

// grow doubles the ring (bounded by capacity), unrolling it so the head is
// at index 0. Callers hold q.mu.
func (q *Queue) grow() {
	n := max(2*len(q.ring), minRing)
	if q.capacity > 0 {
		n = min(n, q.capacity)
	}
	ring := make([]ChangeEvent, n)
	for i := range q.size {
		ring[i] = q.ring[(q.head+i)%len(q.ring)]
	}
	q.ring = ring
	q.head = 0
}
