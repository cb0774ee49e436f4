// Package task owns the set of live tasks. Each task pairs a progress bitmap
// with a filtered queue of change events.
package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bamsammich/taskmap/internal/bitmap"
	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/fault"
)

const (
	// MaxNameLen is the longest task name accepted, in bytes.
	MaxNameLen = 127

	// MaxScopeLen is the longest scope path accepted, in bytes.
	MaxScopeLen = 1023
)

// Task is one registered task. Its identity fields are immutable after
// registration.
type Task struct {
	Registered  time.Time
	Name        string
	Scope       string
	ID          uint32
	Granularity uint32
	Mask        event.Kind

	queue *event.Queue

	// life is held shared by every operation and exclusively by teardown, so
	// deregistration waits out in-flight operations.
	life   sync.RWMutex
	closed bool

	storeMu sync.Mutex
	store   *bitmap.Store
}

// Info is a read-only summary of a task.
type Info struct {
	Registered  time.Time
	Name        string
	Scope       string
	ID          uint32
	Granularity uint32
	Mask        event.Kind
	Pending     int
	Dropped     uint64
	Segments    int
	SetBits     uint64
}

// Batch is the result of a fetch: the events removed from the queue and the
// queue's lifetime dropped-event count.
type Batch struct {
	Events  []event.ChangeEvent
	Dropped uint64
}

// acquire enters an operation on t. The returned release must be called
// when the operation ends.
func (t *Task) acquire() (release func(), err error) {
	t.life.RLock()
	if t.closed {
		t.life.RUnlock()
		return nil, fmt.Errorf("task %d: %w", t.ID, fault.ErrNotFound)
	}
	return t.life.RUnlock, nil
}

// Mark records [off, off+length) as processed.
func (t *Task) Mark(off, length uint64) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	t.storeMu.Lock()
	defer t.storeMu.Unlock()
	return t.store.Mark(off, length)
}

// Unmark records [off, off+length) as unprocessed.
func (t *Task) Unmark(off, length uint64) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	t.storeMu.Lock()
	defer t.storeMu.Unlock()
	return t.store.Unmark(off, length)
}

// Check reports whether every byte of [off, off+length) is marked.
func (t *Task) Check(off, length uint64) (bool, error) {
	release, err := t.acquire()
	if err != nil {
		return false, err
	}
	defer release()

	t.storeMu.Lock()
	defer t.storeMu.Unlock()
	return t.store.IsMarked(off, length)
}

// Fetch removes up to limit events. With wait > 0 an empty queue is polled
// until an event arrives or wait elapses.
func (t *Task) Fetch(ctx context.Context, limit int, wait time.Duration) (Batch, error) {
	release, err := t.acquire()
	if err != nil {
		return Batch{}, err
	}
	defer release()

	evs, err := t.queue.FetchWait(ctx, limit, wait)
	if err != nil {
		return Batch{}, fmt.Errorf("task %d: %w", t.ID, err)
	}
	return Batch{Events: evs, Dropped: t.queue.Stats().Dropped}, nil
}

// Info summarizes the task.
func (t *Task) Info() Info {
	qs := t.queue.Stats()

	t.storeMu.Lock()
	ss := t.store.Stats()
	t.storeMu.Unlock()

	return Info{
		Registered:  t.Registered,
		Name:        t.Name,
		Scope:       t.Scope,
		ID:          t.ID,
		Granularity: t.Granularity,
		Mask:        t.Mask,
		Pending:     qs.Pending,
		Dropped:     qs.Dropped,
		Segments:    ss.Segments,
		SetBits:     ss.SetBits,
	}
}

// push queues ev after aligning its offset to the task's granularity.
func (t *Task) push(ev event.ChangeEvent) bool {
	g := uint64(t.Granularity)
	ev.Offset -= ev.Offset % g
	return t.queue.Push(ev)
}

// inScope reports whether path lies under the task's scope. An empty scope
// matches everything.
func (t *Task) inScope(path string) bool {
	if t.Scope == "" {
		return true
	}
	if !strings.HasPrefix(path, t.Scope) {
		return false
	}
	rest := path[len(t.Scope):]
	return rest == "" || rest[0] == '/' || strings.HasSuffix(t.Scope, "/")
}

// teardown waits for in-flight operations and releases the task's storage.
// The queue must already be closed so waiting fetches return.
func (t *Task) teardown() {
	t.life.Lock()
	defer t.life.Unlock()
	t.closed = true

	t.storeMu.Lock()
	t.store.Reset()
	t.storeMu.Unlock()
}
