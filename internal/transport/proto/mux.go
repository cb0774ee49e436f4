package proto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// ErrMuxClosed is returned when sending on, or waiting for, a stopped mux.
var ErrMuxClosed = errors.New("mux closed")

// CallHandler is invoked in its own goroutine with the first frame of every
// call ID the mux has not seen registered. Servers use it to answer requests.
type CallHandler func(f Frame)

// Mux multiplexes concurrent calls over a single connection.
// A single reader goroutine routes incoming frames to per-call channels.
// A single writer goroutine serializes outgoing frames to the connection.
type Mux struct {
	conn    net.Conn
	err     error
	writeCh chan Frame
	calls   map[uint32]chan Frame
	handler CallHandler
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMux creates a new multiplexer wrapping the given connection.
// Call Run() to start the read/write loops.
func NewMux(conn net.Conn) *Mux {
	//nolint:errcheck // best-effort; non-TCP connections may not support this
	if tc, ok := conn.(interface{ SetNoDelay(bool) error }); ok {
		tc.SetNoDelay(true)
	}
	return &Mux{
		conn:    conn,
		writeCh: make(chan Frame, 256),
		calls:   make(map[uint32]chan Frame),
		done:    make(chan struct{}),
	}
}

// SetHandler sets the callback for frames on unregistered call IDs.
// Without a handler such frames are discarded. Must be called before Run().
func (m *Mux) SetHandler(h CallHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// OpenCall registers a call ID and returns the channel its responses arrive
// on. The caller must call CloseCall when done. The channel is closed only
// when the mux stops.
func (m *Mux) OpenCall(id uint32) <-chan Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.calls[id]; ok {
		return ch
	}

	ch := make(chan Frame, 4)
	m.calls[id] = ch
	return ch
}

// CloseCall unregisters a call ID. Late frames for it are discarded.
func (m *Mux) CloseCall(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calls, id)
}

// Send queues a frame for writing. Returns ErrMuxClosed once the mux has
// stopped.
//
// Run() may close writeCh between the closed check and the channel send; the
// deferred recover turns the resulting panic into ErrMuxClosed.
func (m *Mux) Send(f Frame) (sendErr error) {
	defer func() {
		if recover() != nil {
			sendErr = ErrMuxClosed
		}
	}()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMuxClosed
	}
	m.mu.Unlock()

	select {
	case m.writeCh <- f:
		return nil
	case <-m.done:
		return ErrMuxClosed
	}
}

// Run starts the reader and writer goroutines. Blocks until the connection
// is closed or an error occurs. Returns the first error; a clean close by
// either side returns nil.
func (m *Mux) Run() error {
	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Go(func() {
		errCh <- m.writeLoop()
	})
	wg.Go(func() {
		errCh <- m.readLoop()
	})

	m.err = <-errCh

	// Close conn to unblock both loops.
	m.conn.Close()
	close(m.done)

	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.writeCh)
	}
	m.mu.Unlock()

	wg.Wait()

	// Close remaining call channels so waiting callers unblock.
	m.mu.Lock()
	for id, ch := range m.calls {
		delete(m.calls, id)
		close(ch)
	}
	m.mu.Unlock()

	if errors.Is(m.err, io.EOF) || errors.Is(m.err, net.ErrClosed) || errors.Is(m.err, io.ErrClosedPipe) {
		return nil
	}
	return m.err
}

// Close shuts down the mux by closing the underlying connection.
func (m *Mux) Close() error {
	return m.conn.Close()
}

// Done returns a channel that is closed when the mux has stopped.
func (m *Mux) Done() <-chan struct{} {
	return m.done
}

func (m *Mux) readLoop() error {
	for {
		f, err := ReadFrame(m.conn)
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		m.mu.Lock()
		ch, ok := m.calls[f.CallID]
		handler := m.handler
		m.mu.Unlock()

		switch {
		case ok:
			select {
			case ch <- f:
			case <-m.done:
				return nil
			}
		case handler != nil:
			go handler(f)
		}
		// Otherwise: a late response to an abandoned call; discard.
	}
}

//nolint:revive // cognitive-complexity: flush handling for buffered and compressed writers
func (m *Mux) writeLoop() error {
	bw := bufio.NewWriterSize(m.conn, 64*1024)
	wf, _ := m.conn.(WriteFlusher)

	flush := func() error {
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		if wf != nil {
			if err := wf.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
		return nil
	}

	for f := range m.writeCh {
		if err := WriteFrame(bw, f); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		// Flush when the queue drains so bursts share syscalls.
		if len(m.writeCh) == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
