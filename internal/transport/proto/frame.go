package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// FrameHeaderSize is the length prefix (4 bytes) plus the call ID
	// (4 bytes) plus the message type (1 byte).
	FrameHeaderSize = 9

	// MaxFrameSize bounds a whole frame, header included.
	MaxFrameSize = 4 << 20

	// HandshakeCall is the call ID of the handshake exchanged before the
	// connection is multiplexed. Request calls use IDs from 1.
	HandshakeCall uint32 = 0

	// lengthCovered is the part of the header counted by the length prefix.
	lengthCovered = FrameHeaderSize - 4
)

// Frame is one message on the wire. The length prefix counts the call ID,
// the message type and the payload.
type Frame struct {
	Payload []byte
	CallID  uint32
	MsgType byte
}

var (
	// ErrFrameTooLarge is returned for frames over MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	// ErrFrameTooSmall is returned when a length prefix cannot cover the
	// call ID and message type.
	ErrFrameTooSmall = errors.New("frame shorter than its header")
)

// AppendFrame appends f's wire encoding to dst.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	if len(f.Payload) > MaxFrameSize-FrameHeaderSize {
		return dst, ErrFrameTooLarge
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(lengthCovered+len(f.Payload))) //nolint:gosec // G115: bounded above
	dst = binary.BigEndian.AppendUint32(dst, f.CallID)
	dst = append(dst, f.MsgType)
	return append(dst, f.Payload...), nil
}

// WriteFrame writes f to w in a single Write call.
func WriteFrame(w io.Writer, f Frame) error {
	buf, err := AppendFrame(make([]byte, 0, FrameHeaderSize+len(f.Payload)), f)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame from r. The payload is nil for empty messages.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Frame{}, err
	}

	n := binary.BigEndian.Uint32(hdr[:4])
	switch {
	case n > MaxFrameSize-4:
		return Frame{}, ErrFrameTooLarge
	case n < lengthCovered:
		return Frame{}, fmt.Errorf("%w: length %d", ErrFrameTooSmall, n)
	}

	f := Frame{
		CallID:  binary.BigEndian.Uint32(hdr[4:8]),
		MsgType: hdr[8],
	}
	if n == lengthCovered {
		return f, nil
	}
	f.Payload = make([]byte, n-lengthCovered)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return Frame{}, fmt.Errorf("read frame payload: %w", err)
	}
	return f, nil
}
