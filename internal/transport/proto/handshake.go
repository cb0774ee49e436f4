package proto

import (
	"fmt"
	"net"
	"time"
)

// handshakeTimeout bounds the plain-text exchange that opens a connection.
const handshakeTimeout = 10 * time.Second

// ClientHandshake sends req on a fresh connection and waits for the daemon's
// answer. When both sides agree to compress, the returned conn is wrapped
// with zstd; otherwise conn is returned unchanged.
func ClientHandshake(conn net.Conn, req HandshakeReq) (net.Conn, HandshakeResp, error) {
	if err := conn.SetDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return nil, HandshakeResp{}, fmt.Errorf("set handshake deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{}) //nolint:errcheck // best-effort reset

	if err := writeMsg(conn, HandshakeCall, MsgHandshakeReq, req); err != nil {
		return nil, HandshakeResp{}, fmt.Errorf("send handshake: %w", err)
	}

	f, err := ReadFrame(conn)
	if err != nil {
		return nil, HandshakeResp{}, fmt.Errorf("read handshake: %w", err)
	}
	if f.MsgType == MsgErrorResp {
		return nil, HandshakeResp{}, decodeError(f.Payload)
	}
	if f.MsgType != MsgHandshakeResp {
		return nil, HandshakeResp{}, fmt.Errorf("unexpected handshake response type 0x%02x", f.MsgType)
	}

	var resp HandshakeResp
	if _, err := resp.UnmarshalMsg(f.Payload); err != nil {
		return nil, HandshakeResp{}, fmt.Errorf("decode HandshakeResp: %w", err)
	}
	if resp.Version != ProtocolVersion {
		return nil, HandshakeResp{}, fmt.Errorf(
			"protocol version mismatch: client %d, daemon %d", ProtocolVersion, resp.Version)
	}

	if !resp.Compress {
		return conn, resp, nil
	}
	cc, err := NewCompressedConn(conn)
	if err != nil {
		return nil, HandshakeResp{}, err
	}
	return cc, resp, nil
}

// ServerHandshake reads the client's HandshakeReq and answers with info.
// info.Compress is the daemon's willingness; the reply enables compression
// only if the client asked for it too.
func ServerHandshake(conn net.Conn, info HandshakeResp) (net.Conn, HandshakeReq, error) {
	if err := conn.SetDeadline(time.Now().Add(handshakeTimeout)); err != nil {
		return nil, HandshakeReq{}, fmt.Errorf("set handshake deadline: %w", err)
	}
	defer conn.SetDeadline(time.Time{}) //nolint:errcheck // best-effort reset

	f, err := ReadFrame(conn)
	if err != nil {
		return nil, HandshakeReq{}, fmt.Errorf("read handshake: %w", err)
	}
	if f.MsgType != MsgHandshakeReq {
		return nil, HandshakeReq{}, fmt.Errorf("expected handshake, got message type 0x%02x", f.MsgType)
	}

	var req HandshakeReq
	if _, err := req.UnmarshalMsg(f.Payload); err != nil {
		return nil, HandshakeReq{}, fmt.Errorf("decode HandshakeReq: %w", err)
	}
	if req.Version != ProtocolVersion {
		err := fmt.Errorf("protocol version mismatch: client %d, daemon %d", req.Version, ProtocolVersion)
		_ = writeMsg(conn, HandshakeCall, MsgErrorResp, ErrorResp{Message: err.Error()}) //nolint:errcheck // closing anyway
		return nil, req, err
	}

	info.Version = ProtocolVersion
	info.Compress = info.Compress && req.Compress
	if err := writeMsg(conn, HandshakeCall, MsgHandshakeResp, &info); err != nil {
		return nil, req, fmt.Errorf("send handshake: %w", err)
	}

	if !info.Compress {
		return conn, req, nil
	}
	cc, err := NewCompressedConn(conn)
	if err != nil {
		return nil, req, err
	}
	return cc, req, nil
}
