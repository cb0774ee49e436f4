package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const ringSize = 60

// Collector tracks engine activity using lock-free atomic counters. It also
// implements prometheus.Collector so the daemon can expose it on /metrics.
type Collector struct {
	tasksRegistered   atomic.Int64
	tasksDeregistered atomic.Int64
	eventsPublished   atomic.Int64
	eventsQueued      atomic.Int64
	eventsFiltered    atomic.Int64
	eventsDropped     atomic.Int64
	eventsFetched     atomic.Int64
	marks             atomic.Int64
	unmarks           atomic.Int64
	checks            atomic.Int64
	fetches           atomic.Int64
	opErrors          atomic.Int64
	startTime         time.Time

	// Ring buffer, written only by Tick.
	mu         sync.Mutex
	queuedRate [ringSize]int64 // events queued per second
	ringIdx    int
	ringCount  int // samples written, capped at ringSize
	lastQueued int64

	descs collectorDescs
}

type collectorDescs struct {
	tasksActive *prometheus.Desc
	registered  *prometheus.Desc
	events      *prometheus.Desc
	ops         *prometheus.Desc
	opErrors    *prometheus.Desc
	queuedRate  *prometheus.Desc
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		descs: collectorDescs{
			tasksActive: prometheus.NewDesc("taskmap_tasks_active",
				"Number of currently registered tasks.", nil, nil),
			registered: prometheus.NewDesc("taskmap_tasks_registered_total",
				"Total number of task registrations.", nil, nil),
			events: prometheus.NewDesc("taskmap_events_total",
				"Change events by outcome.", []string{"outcome"}, nil),
			ops: prometheus.NewDesc("taskmap_operations_total",
				"Task operations by kind.", []string{"op"}, nil),
			opErrors: prometheus.NewDesc("taskmap_operation_errors_total",
				"Task operations that returned an error.", nil, nil),
			queuedRate: prometheus.NewDesc("taskmap_events_queued_per_second",
				"Events queued per second averaged over the last 10 seconds.", nil, nil),
		},
	}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	TasksRegistered   int64
	TasksDeregistered int64
	EventsPublished   int64
	EventsQueued      int64
	EventsFiltered    int64
	EventsDropped     int64
	EventsFetched     int64
	Marks             int64
	Unmarks           int64
	Checks            int64
	Fetches           int64
	OpErrors          int64
	Elapsed           time.Duration
}

// TasksActive returns registrations minus deregistrations.
func (s Snapshot) TasksActive() int64 { return s.TasksRegistered - s.TasksDeregistered }

func (c *Collector) AddTasksRegistered(n int64)   { c.tasksRegistered.Add(n) }
func (c *Collector) AddTasksDeregistered(n int64) { c.tasksDeregistered.Add(n) }
func (c *Collector) AddEventsPublished(n int64)   { c.eventsPublished.Add(n) }
func (c *Collector) AddEventsQueued(n int64)      { c.eventsQueued.Add(n) }
func (c *Collector) AddEventsFiltered(n int64)    { c.eventsFiltered.Add(n) }
func (c *Collector) AddEventsDropped(n int64)     { c.eventsDropped.Add(n) }
func (c *Collector) AddEventsFetched(n int64)     { c.eventsFetched.Add(n) }
func (c *Collector) AddMarks(n int64)             { c.marks.Add(n) }
func (c *Collector) AddUnmarks(n int64)           { c.unmarks.Add(n) }
func (c *Collector) AddChecks(n int64)            { c.checks.Add(n) }
func (c *Collector) AddFetches(n int64)           { c.fetches.Add(n) }
func (c *Collector) AddOpErrors(n int64)          { c.opErrors.Add(n) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TasksRegistered:   c.tasksRegistered.Load(),
		TasksDeregistered: c.tasksDeregistered.Load(),
		EventsPublished:   c.eventsPublished.Load(),
		EventsQueued:      c.eventsQueued.Load(),
		EventsFiltered:    c.eventsFiltered.Load(),
		EventsDropped:     c.eventsDropped.Load(),
		EventsFetched:     c.eventsFetched.Load(),
		Marks:             c.marks.Load(),
		Unmarks:           c.unmarks.Load(),
		Checks:            c.checks.Load(),
		Fetches:           c.fetches.Load(),
		OpErrors:          c.opErrors.Load(),
		Elapsed:           c.Elapsed(),
	}
}

// Tick records the queued-event delta into the ring buffer. The daemon calls
// it once per second.
func (c *Collector) Tick() {
	current := c.eventsQueued.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.queuedRate[c.ringIdx] = current - c.lastQueued
	c.lastQueued = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingQueueRate returns average events queued per second over the last
// n samples.
func (c *Collector) RollingQueueRate(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.queuedRate[idx]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.descs.tasksActive
	ch <- c.descs.registered
	ch <- c.descs.events
	ch <- c.descs.ops
	ch <- c.descs.opErrors
	ch <- c.descs.queuedRate
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()
	d := c.descs

	ch <- prometheus.MustNewConstMetric(d.tasksActive, prometheus.GaugeValue, float64(s.TasksActive()))
	ch <- prometheus.MustNewConstMetric(d.registered, prometheus.CounterValue, float64(s.TasksRegistered))

	for outcome, v := range map[string]int64{
		"published": s.EventsPublished,
		"queued":    s.EventsQueued,
		"filtered":  s.EventsFiltered,
		"dropped":   s.EventsDropped,
		"fetched":   s.EventsFetched,
	} {
		ch <- prometheus.MustNewConstMetric(d.events, prometheus.CounterValue, float64(v), outcome)
	}
	for op, v := range map[string]int64{
		"mark":   s.Marks,
		"unmark": s.Unmarks,
		"check":  s.Checks,
		"fetch":  s.Fetches,
	} {
		ch <- prometheus.MustNewConstMetric(d.ops, prometheus.CounterValue, float64(v), op)
	}
	ch <- prometheus.MustNewConstMetric(d.opErrors, prometheus.CounterValue, float64(s.OpErrors))
	ch <- prometheus.MustNewConstMetric(d.queuedRate, prometheus.GaugeValue, c.RollingQueueRate(10))
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"tasks=%d published=%d queued=%d dropped=%d fetched=%d marks=%d unmarks=%d checks=%d",
		s.TasksActive(), s.EventsPublished, s.EventsQueued, s.EventsDropped,
		s.EventsFetched, s.Marks, s.Unmarks, s.Checks,
	)
}
