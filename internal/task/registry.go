package task

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bamsammich/taskmap/internal/bitmap"
	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/fault"
	"github.com/bamsammich/taskmap/internal/stats"
)

// DefaultMaxTasks bounds the number of concurrently registered tasks.
const DefaultMaxTasks = 255

// Config configures a Registry. Zero values select defaults.
type Config struct {
	Stats         *stats.Collector
	MaxTasks      int
	QueueCapacity int // per-task queue depth; 0 selects event.DefaultCapacity, negative is unbounded
	Policy        event.Policy
	MaxSegments   int
	MaxAddress    uint64
}

// RegisterRequest describes a task to create. Scope, when set, must be an
// absolute path; it is cleaned before use.
type RegisterRequest struct {
	Name        string
	Scope       string
	Granularity uint32
	Mask        event.Kind
}

// Registry is the table of live tasks. It is safe for concurrent use.
type Registry struct {
	cfg   Config
	stats *stats.Collector

	mu    sync.RWMutex
	tasks map[uint32]*Task
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = DefaultMaxTasks
	}
	switch {
	case cfg.QueueCapacity == 0:
		cfg.QueueCapacity = event.DefaultCapacity
	case cfg.QueueCapacity < 0:
		cfg.QueueCapacity = 0
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &Registry{
		cfg:   cfg,
		stats: cfg.Stats,
		tasks: make(map[uint32]*Task),
	}
}

// Stats returns the registry's collector.
func (r *Registry) Stats() *stats.Collector { return r.stats }

// QueueCapacity returns the per-task queue depth (0 = unbounded).
func (r *Registry) QueueCapacity() int { return r.cfg.QueueCapacity }

// Register validates req, allocates the smallest unused positive ID and
// creates the task's bitmap and queue.
func (r *Registry) Register(req RegisterRequest) (uint32, error) {
	if err := validate(req); err != nil {
		return 0, err
	}
	if req.Scope != "" {
		req.Scope = filepath.Clean(req.Scope)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.allocateID()
	if err != nil {
		return 0, err
	}

	t := &Task{
		Registered:  time.Now(),
		Name:        req.Name,
		Scope:       req.Scope,
		ID:          id,
		Granularity: req.Granularity,
		Mask:        req.Mask,
		store: bitmap.NewStore(bitmap.Options{
			Granularity: req.Granularity,
			MaxSegments: r.cfg.MaxSegments,
			MaxAddress:  r.cfg.MaxAddress,
		}),
		queue: event.NewQueue(event.QueueConfig{
			Capacity: r.cfg.QueueCapacity,
			Mask:     req.Mask,
			Policy:   r.cfg.Policy,
			OnDrop:   func() { r.stats.AddEventsDropped(1) },
		}),
	}
	r.tasks[id] = t
	r.stats.AddTasksRegistered(1)

	slog.Debug("task registered", "task", id, "name", req.Name,
		"mask", req.Mask, "granularity", req.Granularity, "scope", req.Scope)
	return id, nil
}

func validate(req RegisterRequest) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("empty task name: %w", fault.ErrDuplicateOrInvalid)
	case len(req.Name) > MaxNameLen:
		return fmt.Errorf("task name longer than %d bytes: %w", MaxNameLen, fault.ErrDuplicateOrInvalid)
	case req.Granularity == 0:
		return fmt.Errorf("zero granularity: %w", fault.ErrDuplicateOrInvalid)
	case len(req.Scope) > MaxScopeLen:
		return fmt.Errorf("scope longer than %d bytes: %w", MaxScopeLen, fault.ErrDuplicateOrInvalid)
	case req.Scope != "" && !filepath.IsAbs(req.Scope):
		return fmt.Errorf("scope %q is not absolute: %w", req.Scope, fault.ErrDuplicateOrInvalid)
	case !req.Mask.Valid():
		return fmt.Errorf("event mask %#x: %w", uint16(req.Mask), fault.ErrInvalidArgument)
	}
	return nil
}

// allocateID returns the smallest positive ID not in use. Callers hold r.mu.
func (r *Registry) allocateID() (uint32, error) {
	for id := uint32(1); id <= uint32(r.cfg.MaxTasks); id++ { //nolint:gosec // G115: MaxTasks is positive
		if _, ok := r.tasks[id]; !ok {
			return id, nil
		}
	}
	return 0, fmt.Errorf("task table full (%d tasks): %w", r.cfg.MaxTasks, fault.ErrInternal)
}

// Deregister removes the task, discards its queued events and waits for
// in-flight operations on it before releasing its bitmap. The ID is
// reusable as soon as the task leaves the table.
func (r *Registry) Deregister(id uint32) error {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("task %d: %w", id, fault.ErrNotFound)
	}
	delete(r.tasks, id)
	r.mu.Unlock()

	t.queue.Close()
	t.teardown()
	r.stats.AddTasksDeregistered(1)

	slog.Debug("task deregistered", "task", id, "name", t.Name)
	return nil
}

// Lookup returns the live task with the given ID.
func (r *Registry) Lookup(id uint32) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, fault.ErrNotFound)
	}
	return t, nil
}

// List returns a summary of every live task, ordered by ID.
func (r *Registry) List() []Info {
	r.mu.RLock()
	tasks := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(tasks, func(a, b *Task) int { return int(a.ID) - int(b.ID) })
	out := make([]Info, len(tasks))
	for i, t := range tasks {
		out[i] = t.Info()
	}
	return out
}

// Len returns the number of live tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Mark records [off, off+length) as processed in task id.
func (r *Registry) Mark(id uint32, off, length uint64) error {
	r.stats.AddMarks(1)
	t, err := r.Lookup(id)
	if err == nil {
		err = t.Mark(off, length)
	}
	return r.countErr(err)
}

// Unmark records [off, off+length) as unprocessed in task id.
func (r *Registry) Unmark(id uint32, off, length uint64) error {
	r.stats.AddUnmarks(1)
	t, err := r.Lookup(id)
	if err == nil {
		err = t.Unmark(off, length)
	}
	return r.countErr(err)
}

// Check reports whether [off, off+length) is fully marked in task id.
func (r *Registry) Check(id uint32, off, length uint64) (bool, error) {
	r.stats.AddChecks(1)
	t, err := r.Lookup(id)
	if err != nil {
		return false, r.countErr(err)
	}
	done, err := t.Check(off, length)
	return done, r.countErr(err)
}

// Fetch removes up to limit events from task id's queue, waiting up to wait
// when the queue is empty.
func (r *Registry) Fetch(ctx context.Context, id uint32, limit int, wait time.Duration) (Batch, error) {
	r.stats.AddFetches(1)
	t, err := r.Lookup(id)
	if err != nil {
		return Batch{}, r.countErr(err)
	}
	b, err := t.Fetch(ctx, limit, wait)
	if err != nil {
		return Batch{}, r.countErr(err)
	}
	r.stats.AddEventsFetched(int64(len(b.Events)))
	return b, nil
}

// Publish offers ev to every live task whose scope contains ev.Path and whose
// mask intersects ev.State. It returns how many tasks queued the event.
// Failures are not reported: a task that disappears mid-publish simply
// misses the event.
func (r *Registry) Publish(ev event.ChangeEvent) int {
	r.stats.AddEventsPublished(1)

	r.mu.RLock()
	defer r.mu.RUnlock()

	queued := 0
	for _, t := range r.tasks {
		if !t.inScope(ev.Path) {
			continue
		}
		if ev.State&t.Mask == 0 {
			r.stats.AddEventsFiltered(1)
			continue
		}
		if t.push(ev) {
			queued++
		}
	}
	r.stats.AddEventsQueued(int64(queued))
	return queued
}

// Close deregisters every task.
func (r *Registry) Close() {
	r.mu.RLock()
	ids := make([]uint32, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Deregister(id)
	}
}

func (r *Registry) countErr(err error) error {
	if err != nil {
		r.stats.AddOpErrors(1)
	}
	return err
}
