package proto

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

// WriteFlusher is implemented by connections that buffer writes. The mux
// flushes them whenever its write queue drains.
type WriteFlusher interface {
	Flush() error
}

// CompressionStats reports how many bytes crossed a compressed connection
// before and after zstd.
type CompressionStats struct {
	PlainIn, PlainOut uint64
	WireIn, WireOut   uint64
}

// Ratio returns wire bytes over plain bytes in both directions, or 1 when
// nothing has been sent.
func (s CompressionStats) Ratio() float64 {
	plain := s.PlainIn + s.PlainOut
	if plain == 0 {
		return 1
	}
	return float64(s.WireIn+s.WireOut) / float64(plain)
}

// countingConn counts the bytes the zstd streams move over the socket.
type countingConn struct {
	net.Conn
	in, out atomic.Uint64
}

func (c *countingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	c.in.Add(uint64(n)) //nolint:gosec // G115: n is non-negative
	return n, err
}

func (c *countingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	c.out.Add(uint64(n)) //nolint:gosec // G115: n is non-negative
	return n, err
}

// compressedConn runs zstd streams in both directions over a countingConn.
type compressedConn struct {
	*countingConn
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	plainIn, plainOut atomic.Uint64
}

// NewCompressedConn wraps conn with zstd streaming compression. Control
// frames are small, so the encoder runs single-threaded at the fastest level.
func NewCompressedConn(conn net.Conn) (net.Conn, error) {
	wire := &countingConn{Conn: conn}

	encoder, err := zstd.NewWriter(wire,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(wire, zstd.WithDecoderConcurrency(1))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &compressedConn{
		countingConn: wire,
		encoder:      encoder,
		decoder:      decoder,
	}, nil
}

func (c *compressedConn) Read(p []byte) (int, error) {
	n, err := c.decoder.Read(p)
	c.plainIn.Add(uint64(n)) //nolint:gosec // G115: n is non-negative
	return n, err
}

func (c *compressedConn) Write(p []byte) (int, error) {
	n, err := c.encoder.Write(p)
	c.plainOut.Add(uint64(n)) //nolint:gosec // G115: n is non-negative
	return n, err
}

// Flush ends the current zstd block so the peer can decode everything
// written so far.
func (c *compressedConn) Flush() error {
	return c.encoder.Flush()
}

// CompressionStats returns the connection's byte counters.
func (c *compressedConn) CompressionStats() CompressionStats {
	return CompressionStats{
		PlainIn:  c.plainIn.Load(),
		PlainOut: c.plainOut.Load(),
		WireIn:   c.in.Load(),
		WireOut:  c.out.Load(),
	}
}

// Close stops the encoder, closes the socket so a blocked decoder read
// returns, then releases the decoder.
func (c *compressedConn) Close() error {
	c.encoder.Close()
	err := c.Conn.Close()
	c.decoder.Close()
	return err
}

// compressionStatsOf returns conn's counters if it is compressed.
func compressionStatsOf(conn net.Conn) (CompressionStats, bool) {
	cc, ok := conn.(interface{ CompressionStats() CompressionStats })
	if !ok {
		return CompressionStats{}, false
	}
	return cc.CompressionStats(), true
}
