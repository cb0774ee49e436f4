package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/fault"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ev(entry uint32, state event.Kind) event.ChangeEvent {
	return event.ChangeEvent{UUID: event.NewUUID(entry, 1), Offset: uint64(entry) * 4096, State: state}
}

func TestQueueDropOldest(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Capacity: 2, Mask: event.KindAll})
	e1, e2, e3 := ev(1, event.Added), ev(2, event.Added), ev(3, event.Modified)

	assert.True(t, q.Push(e1))
	assert.True(t, q.Push(e2))
	assert.True(t, q.Push(e3))

	got, err := q.Fetch(10)
	require.NoError(t, err)
	assert.Equal(t, []event.ChangeEvent{e2, e3}, got)
	assert.Equal(t, uint64(1), q.Stats().Dropped)
}

func TestQueueRejectNew(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Capacity: 2, Mask: event.KindAll, Policy: event.RejectNew})
	e1, e2, e3 := ev(1, event.Added), ev(2, event.Added), ev(3, event.Added)

	assert.True(t, q.Push(e1))
	assert.True(t, q.Push(e2))
	assert.False(t, q.Push(e3))

	got, err := q.Fetch(10)
	require.NoError(t, err)
	assert.Equal(t, []event.ChangeEvent{e1, e2}, got)
	assert.Equal(t, uint64(1), q.Stats().Dropped)
}

func TestQueueFiltersAtEnqueue(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Capacity: 8, Mask: event.Modified | event.Removed})

	assert.False(t, q.Push(ev(1, event.Added)))
	assert.True(t, q.Push(ev(2, event.Added|event.Modified)))
	assert.True(t, q.Push(ev(3, event.Removed)))

	st := q.Stats()
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, uint64(1), st.Filtered)
	assert.Equal(t, uint64(2), st.Enqueued)
}

func TestQueueFetchBoundsAndOrder(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Capacity: 100, Mask: event.KindAll})
	var want []event.ChangeEvent
	for i := range uint32(37) {
		e := ev(i, event.Modified)
		want = append(want, e)
		require.True(t, q.Push(e))
	}

	var got []event.ChangeEvent
	for {
		batch, err := q.Fetch(5)
		require.NoError(t, err)
		require.LessOrEqual(t, len(batch), 5)
		if len(batch) == 0 {
			break
		}
		got = append(got, batch...)
	}
	assert.Equal(t, want, got, "every event delivered once, in order")

	st := q.Stats()
	assert.Equal(t, uint64(37), st.Fetched)
	assert.Zero(t, st.Pending)
	assert.Zero(t, st.Dropped)
}

func TestQueueFetchRejectsBadCount(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})
	for _, n := range []int{0, -1, event.MaxFetch + 1} {
		_, err := q.Fetch(n)
		require.ErrorIs(t, err, fault.ErrInvalidArgument, "count %d", n)
	}

	got, err := q.Fetch(event.MaxFetch)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueueUnboundedGrowsAndWraps(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})
	next := uint32(0)
	expect := uint32(0)

	// Interleave pushes and fetches so the ring wraps before it grows.
	for round := range 50 {
		for range round + 3 {
			require.True(t, q.Push(ev(next, event.Dirty)))
			next++
		}
		batch, err := q.Fetch(round + 1)
		require.NoError(t, err)
		for _, e := range batch {
			require.Equal(t, expect, e.UUID.Entry())
			expect++
		}
	}

	rest, err := q.Fetch(event.MaxFetch)
	require.NoError(t, err)
	for _, e := range rest {
		require.Equal(t, expect, e.UUID.Entry())
		expect++
	}
	assert.Equal(t, next, expect)
	assert.Zero(t, q.Len())
}

func TestQueueFetchWaitTimeout(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})

	start := time.Now()
	got, err := q.FetchWait(context.Background(), 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestQueueFetchWaitWakesOnPush(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})
	e := ev(9, event.Flushed)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(e)
	}()

	got, err := q.FetchWait(context.Background(), 10, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []event.ChangeEvent{e}, got)
}

func TestQueueFetchWaitContextCancel(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.FetchWait(ctx, 1, time.Minute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueCloseWakesWaiter(t *testing.T) {
	t.Parallel()

	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})
	require.True(t, q.Push(ev(1, event.Added)))

	errCh := make(chan error, 1)
	drained := make(chan struct{})
	go func() {
		_, err := q.Fetch(1) // drain
		require.NoError(t, err)
		close(drained)
		_, err = q.FetchWait(context.Background(), 1, time.Minute)
		errCh <- err
	}()

	<-drained
	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, fault.ErrNotFound)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not woken by Close")
	}

	assert.False(t, q.Push(ev(2, event.Added)))
	_, err := q.Fetch(1)
	require.ErrorIs(t, err, fault.ErrNotFound)
	q.Close() // idempotent
}

func TestQueueConcurrentProducersExactlyOnce(t *testing.T) {
	t.Parallel()

	const producers, perProducer = 4, 500
	q := event.NewQueue(event.QueueConfig{Mask: event.KindAll})

	var wg sync.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				q.Push(ev(uint32(p*perProducer+i), event.Modified)) //nolint:gosec // G115: small test values
			}
		})
	}

	seen := make(map[uint32]int)
	var mu sync.Mutex
	var consumers sync.WaitGroup
	stop := make(chan struct{})
	for range 2 {
		consumers.Go(func() {
			for {
				batch, err := q.FetchWait(context.Background(), 64, 10*time.Millisecond)
				if err != nil {
					return
				}
				mu.Lock()
				for _, e := range batch {
					seen[e.UUID.Entry()]++
				}
				mu.Unlock()
				select {
				case <-stop:
					if len(batch) == 0 {
						return
					}
				default:
				}
			}
		})
	}

	wg.Wait()
	close(stop)
	consumers.Wait()

	assert.Len(t, seen, producers*perProducer)
	for entry, n := range seen {
		assert.Equal(t, 1, n, "entry %d delivered %d times", entry, n)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := event.ParsePolicy("reject-new")
	require.NoError(t, err)
	assert.Equal(t, event.RejectNew, p)
	assert.Equal(t, "reject-new", p.String())

	p, err = event.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, event.DropOldest, p)

	_, err = event.ParsePolicy("evict-random")
	require.Error(t, err)
}

func TestQueueOnDropHook(t *testing.T) {
	t.Parallel()

	var drops int
	q := event.NewQueue(event.QueueConfig{
		Capacity: 1,
		Mask:     event.KindAll,
		OnDrop:   func() { drops++ },
	})

	q.Push(ev(1, event.Added))
	q.Push(ev(2, event.Added))
	q.Push(ev(3, event.Added))
	assert.Equal(t, 2, drops)
	assert.Equal(t, uint64(2), q.Stats().Dropped)
}
