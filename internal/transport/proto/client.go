package proto

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/tinylib/msgp/msgp"

	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/task"
)

// dialTimeout bounds connection setup, including TLS.
const dialTimeout = 10 * time.Second

// DialConfig selects and secures the daemon connection. Socket wins over
// Addr when both are set.
type DialConfig struct {
	// KnownHosts records fingerprints of TLS daemons on first use when
	// Fingerprint is empty. Nil skips pinning.
	KnownHosts  *KnownHosts
	Socket      string
	Addr        string
	Fingerprint string
	Compress    bool
}

// Client issues control requests to a taskmap daemon. It is safe for
// concurrent use; each request runs on its own call ID.
type Client struct {
	mux      *Mux
	info     HandshakeResp
	runErr   chan error
	nextCall atomic.Uint32
}

// Dial connects to a daemon, performs the handshake and starts the mux.
//
//nolint:revive // cognitive-complexity: unix vs TLS dial with fingerprint pinning
func Dial(ctx context.Context, cfg DialConfig) (*Client, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	switch {
	case cfg.Socket != "":
		c, err := dialer.DialContext(ctx, "unix", cfg.Socket)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.Socket, err)
		}
		conn = c
	case cfg.Addr != "":
		td := &tls.Dialer{NetDialer: dialer, Config: ClientTLSConfig()}
		c, err := td.DialContext(ctx, "tcp", cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
		}
		if err := pin(c.(*tls.Conn), cfg); err != nil {
			c.Close()
			return nil, err
		}
		conn = c
	default:
		return nil, errors.New("no daemon socket or address configured")
	}

	muxConn, info, err := ClientHandshake(conn, HandshakeReq{
		Version:  ProtocolVersion,
		Compress: cfg.Compress,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	return NewClient(muxConn, info), nil
}

func pin(conn *tls.Conn, cfg DialConfig) error {
	if cfg.Fingerprint != "" {
		return VerifyFingerprint(conn, cfg.Fingerprint)
	}
	if cfg.KnownHosts == nil {
		return nil
	}
	fp, err := CertFingerprintFromConn(conn)
	if err != nil {
		return err
	}
	return cfg.KnownHosts.Verify(cfg.Addr, fp)
}

// NewClient starts a client on a connection that has already completed the
// handshake.
func NewClient(conn net.Conn, info HandshakeResp) *Client {
	c := &Client{
		mux:    NewMux(conn),
		info:   info,
		runErr: make(chan error, 1),
	}
	go func() {
		c.runErr <- c.mux.Run()
	}()
	return c
}

// HandshakeInfo returns the daemon's handshake answer.
func (c *Client) HandshakeInfo() HandshakeResp {
	return c.info
}

// Close tears down the connection and waits for the mux to stop.
func (c *Client) Close() error {
	c.mux.Close()
	return <-c.runErr
}

// Ping round-trips seq through the daemon.
func (c *Client) Ping(ctx context.Context, seq uint64) error {
	var resp PongResp
	if err := c.call(ctx, MsgPingReq, PingReq{Seq: seq}, MsgPongResp, &resp); err != nil {
		return err
	}
	if resp.Seq != seq {
		return fmt.Errorf("pong sequence %d, want %d", resp.Seq, seq)
	}
	return nil
}

// Register creates a task and returns its ID.
func (c *Client) Register(ctx context.Context, req task.RegisterRequest) (uint32, error) {
	var resp RegisterResp
	err := c.call(ctx, MsgRegisterReq, &RegisterReq{
		Name:        req.Name,
		Scope:       req.Scope,
		Granularity: req.Granularity,
		Mask:        uint16(req.Mask),
	}, MsgRegisterResp, &resp)
	return resp.TaskID, err
}

// Deregister removes a task.
func (c *Client) Deregister(ctx context.Context, id uint32) error {
	return c.call(ctx, MsgDeregisterReq, TaskReq{TaskID: id}, MsgAckResp, &AckResp{})
}

// Mark records [off, off+length) as done for a task.
func (c *Client) Mark(ctx context.Context, id uint32, off, length uint64) error {
	req := RangeReq{TaskID: id, Offset: off, Length: length}
	return c.call(ctx, MsgMarkReq, req, MsgAckResp, &AckResp{})
}

// Unmark clears [off, off+length) for a task.
func (c *Client) Unmark(ctx context.Context, id uint32, off, length uint64) error {
	req := RangeReq{TaskID: id, Offset: off, Length: length}
	return c.call(ctx, MsgUnmarkReq, req, MsgAckResp, &AckResp{})
}

// Check reports whether every block of [off, off+length) is marked.
func (c *Client) Check(ctx context.Context, id uint32, off, length uint64) (bool, error) {
	var resp CheckResp
	req := RangeReq{TaskID: id, Offset: off, Length: length}
	err := c.call(ctx, MsgCheckReq, req, MsgCheckResp, &resp)
	return resp.Done, err
}

// Fetch drains up to limit pending events from a task. A positive wait
// long-polls on the daemon when the queue is empty.
func (c *Client) Fetch(ctx context.Context, id uint32, limit int, wait time.Duration) (task.Batch, error) {
	req := FetchReq{
		TaskID:     id,
		MaxCount:   uint32(max(limit, 0)), //nolint:gosec // G115: non-negative
		WaitMillis: wait.Milliseconds(),
	}
	var resp FetchResp
	if err := c.call(ctx, MsgFetchReq, req, MsgFetchResp, &resp); err != nil {
		return task.Batch{}, err
	}

	batch := task.Batch{Events: make([]event.ChangeEvent, len(resp.Items)), Dropped: resp.Dropped}
	for i, it := range resp.Items {
		batch.Events[i] = ToChangeEvent(it)
	}
	return batch, nil
}

// List returns every registered task.
func (c *Client) List(ctx context.Context) ([]task.Info, error) {
	var resp ListResp
	if err := c.call(ctx, MsgListReq, ListReq{}, MsgListResp, &resp); err != nil {
		return nil, err
	}
	infos := make([]task.Info, len(resp.Tasks))
	for i, m := range resp.Tasks {
		infos[i] = ToTaskInfo(m)
	}
	return infos, nil
}

func (c *Client) call(
	ctx context.Context,
	reqType byte, req msgp.Marshaler,
	respType byte, resp msgp.Unmarshaler,
) error {
	callID := c.nextCall.Add(1)
	ch := c.mux.OpenCall(callID)
	defer c.mux.CloseCall(callID)

	payload, err := req.MarshalMsg(nil)
	if err != nil {
		return err
	}
	if err := c.mux.Send(Frame{CallID: callID, MsgType: reqType, Payload: payload}); err != nil {
		return err
	}

	var f Frame
	select {
	case fr, ok := <-ch:
		if !ok {
			return ErrMuxClosed
		}
		f = fr
	case <-ctx.Done():
		return ctx.Err()
	}

	switch f.MsgType {
	case respType:
		if _, err := resp.UnmarshalMsg(f.Payload); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case MsgErrorResp:
		return decodeError(f.Payload)
	default:
		return fmt.Errorf("unexpected message type 0x%02x, want 0x%02x", f.MsgType, respType)
	}
}
