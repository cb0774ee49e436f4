package proto

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/taskmap/internal/bitmap"
	"github.com/bamsammich/taskmap/internal/task"
)

// drainTimeout is how long open connections may linger after shutdown.
const drainTimeout = 30 * time.Second

// DaemonConfig configures a taskmap protocol daemon.
type DaemonConfig struct {
	Registry *task.Registry
	// TLSCert is used by the TCP listener. Nil generates a self-signed cert.
	TLSCert *tls.Certificate
	// Socket is the unix socket path. Empty disables the local listener.
	Socket string
	// ListenAddr is the TCP address for TLS clients. Empty disables it.
	ListenAddr        string
	MaxFetchWait      time.Duration
	RequestsPerSecond float64
	Granularity       uint32
	Compress          bool
}

// Daemon serves the taskmap control protocol on a unix socket and,
// optionally, on a TLS listener.
type Daemon struct {
	unixLn      net.Listener
	tcpLn       net.Listener
	conns       map[net.Conn]struct{}
	fingerprint string
	cfg         DaemonConfig
	mu          sync.Mutex
}

// NewDaemon opens the configured listeners. Call Serve to start accepting
// connections.
//
//nolint:revive // cognitive-complexity: two optional listeners with cleanup on failure
func NewDaemon(cfg DaemonConfig) (*Daemon, error) {
	if cfg.Registry == nil {
		return nil, errors.New("daemon requires a task registry")
	}
	if cfg.Socket == "" && cfg.ListenAddr == "" {
		return nil, errors.New("daemon requires a socket path or a listen address")
	}
	if cfg.Granularity == 0 {
		cfg.Granularity = bitmap.DefaultGranularity
	}

	d := &Daemon{
		cfg:   cfg,
		conns: make(map[net.Conn]struct{}),
	}

	if cfg.Socket != "" {
		ln, err := listenUnix(cfg.Socket)
		if err != nil {
			return nil, err
		}
		d.unixLn = ln
	}

	if cfg.ListenAddr != "" {
		ln, fp, err := listenTLS(cfg.ListenAddr, cfg.TLSCert)
		if err != nil {
			d.closeListeners()
			return nil, err
		}
		d.tcpLn = ln
		d.fingerprint = fp
	}

	return d, nil
}

func listenUnix(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	// A stale socket from a crashed daemon blocks bind; a live daemon answers.
	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		conn.Close()
		return nil, fmt.Errorf("daemon already listening on %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return ln, nil
}

func listenTLS(addr string, cert *tls.Certificate) (net.Listener, string, error) {
	var tlsCert tls.Certificate
	if cert != nil {
		tlsCert = *cert
	} else {
		var err error
		host, _, _ := net.SplitHostPort(addr) //nolint:errcheck // listen reports a bad address
		tlsCert, err = GenerateSelfSignedCert(host)
		if err != nil {
			return nil, "", fmt.Errorf("generate self-signed cert: %w", err)
		}
	}
	fp, err := CertFingerprint(tlsCert)
	if err != nil {
		return nil, "", fmt.Errorf("compute cert fingerprint: %w", err)
	}
	if cert == nil {
		slog.Info("generated self-signed TLS certificate", "fingerprint", fp)
	}

	ln, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return nil, "", fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, fp, nil
}

// Addr returns the TCP listener's address, or nil without one.
func (d *Daemon) Addr() net.Addr {
	if d.tcpLn == nil {
		return nil
	}
	return d.tcpLn.Addr()
}

// SocketPath returns the unix socket path, or "" without one.
func (d *Daemon) SocketPath() string {
	return d.cfg.Socket
}

// Fingerprint returns the TLS certificate fingerprint, or "" without a TCP
// listener.
func (d *Daemon) Fingerprint() string {
	return d.fingerprint
}

// Serve accepts connections until ctx is cancelled, then closes open
// connections. Blocks until every connection handler has returned.
func (d *Daemon) Serve(ctx context.Context) error {
	slog.Info("taskmap daemon listening",
		"socket", d.cfg.Socket, "addr", d.cfg.ListenAddr, "compress", d.cfg.Compress)

	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		d.closeListeners()

		time.AfterFunc(drainTimeout, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			for conn := range d.conns {
				conn.Close()
			}
		})
	}()

	var accepters sync.WaitGroup
	for _, ln := range []net.Listener{d.unixLn, d.tcpLn} {
		if ln == nil {
			continue
		}
		accepters.Go(func() {
			d.acceptLoop(ctx, ln, &wg)
		})
	}
	accepters.Wait()

	wg.Wait()
	slog.Info("taskmap daemon stopped")
	return nil
}

func (d *Daemon) acceptLoop(ctx context.Context, ln net.Listener, wg *sync.WaitGroup) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept error", "error", err)
			continue
		}

		d.mu.Lock()
		d.conns[conn] = struct{}{}
		d.mu.Unlock()

		wg.Go(func() {
			defer func() {
				d.mu.Lock()
				delete(d.conns, conn)
				d.mu.Unlock()
			}()
			d.handleConn(ctx, conn)
		})
	}
}

func (d *Daemon) handleConn(ctx context.Context, raw net.Conn) {
	defer raw.Close()

	connID := uuid.NewString()
	slog.Debug("new connection", "conn", connID, "remote", raw.RemoteAddr().String())

	conn, req, err := ServerHandshake(raw, HandshakeResp{
		Compress:      d.cfg.Compress,
		Granularity:   d.cfg.Granularity,
		QueueCapacity: d.cfg.Registry.QueueCapacity(),
	})
	if err != nil {
		slog.Warn("handshake failed", "conn", connID, "error", err)
		return
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := NewMux(conn)
	handler := NewHandler(connCtx, mux, HandlerConfig{
		Registry:          d.cfg.Registry,
		Granularity:       d.cfg.Granularity,
		MaxFetchWait:      d.cfg.MaxFetchWait,
		RequestsPerSecond: d.cfg.RequestsPerSecond,
		ConnID:            connID,
	})
	mux.SetHandler(handler.ServeCall)

	go func() {
		select {
		case <-mux.Done():
		case <-ctx.Done():
			mux.Close()
		}
	}()

	slog.Debug("connection ready", "conn", connID, "compress", req.Compress)
	if err := mux.Run(); err != nil {
		slog.Debug("connection error", "conn", connID, "error", err)
	}
	cancel()
	if cs, ok := compressionStatsOf(conn); ok {
		slog.Debug("connection closed", "conn", connID,
			"plain_bytes", cs.PlainIn+cs.PlainOut,
			"wire_bytes", cs.WireIn+cs.WireOut,
			"ratio", fmt.Sprintf("%.2f", cs.Ratio()))
		return
	}
	slog.Debug("connection closed", "conn", connID)
}

// Close stops the listeners and removes the unix socket. Open connections
// are left to Serve's drain.
func (d *Daemon) Close() error {
	d.closeListeners()
	return nil
}

func (d *Daemon) closeListeners() {
	if d.tcpLn != nil {
		d.tcpLn.Close()
	}
	if d.unixLn != nil {
		// Closing a unix listener unlinks the socket file.
		d.unixLn.Close()
	}
}
