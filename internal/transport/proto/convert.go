package proto

import (
	"fmt"
	"io"
	"time"

	"github.com/tinylib/msgp/msgp"

	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/fault"
	"github.com/bamsammich/taskmap/internal/task"
)

// ToChangeEvent converts a wire ItemMsg to an event.ChangeEvent.
func ToChangeEvent(m ItemMsg) event.ChangeEvent {
	return event.ChangeEvent{
		UUID:   event.UUID(m.UUID),
		Offset: m.Offset,
		State:  event.Kind(m.State),
	}
}

// FromChangeEvent converts an event.ChangeEvent to a wire ItemMsg. The
// producer-side path is not sent.
func FromChangeEvent(ev event.ChangeEvent) ItemMsg {
	return ItemMsg{
		UUID:   uint64(ev.UUID),
		Offset: ev.Offset,
		State:  uint16(ev.State),
	}
}

// ToTaskInfo converts a wire TaskInfoMsg to a task.Info.
func ToTaskInfo(m TaskInfoMsg) task.Info {
	return task.Info{
		Registered:  time.Unix(0, m.Registered),
		Name:        m.Name,
		Scope:       m.Scope,
		ID:          m.ID,
		Granularity: m.Granularity,
		Mask:        event.Kind(m.Mask),
		Pending:     m.Pending,
		Dropped:     m.Dropped,
		Segments:    m.Segments,
		SetBits:     m.SetBits,
	}
}

// FromTaskInfo converts a task.Info to a wire TaskInfoMsg.
func FromTaskInfo(i task.Info) TaskInfoMsg {
	return TaskInfoMsg{
		Name:        i.Name,
		Scope:       i.Scope,
		Registered:  i.Registered.UnixNano(),
		Dropped:     i.Dropped,
		SetBits:     i.SetBits,
		Pending:     i.Pending,
		Segments:    i.Segments,
		ID:          i.ID,
		Granularity: i.Granularity,
		Mask:        uint16(i.Mask),
	}
}

// decode unmarshals a request payload. Malformed payloads are the caller's
// fault.
func decode(payload []byte, m msgp.Unmarshaler) error {
	if _, err := m.UnmarshalMsg(payload); err != nil {
		return fmt.Errorf("decode %T: %w: %w", m, fault.ErrInvalidArgument, err)
	}
	return nil
}

// decodeError rebuilds the error carried by an ErrorResp payload.
func decodeError(payload []byte) error {
	var resp ErrorResp
	if _, err := resp.UnmarshalMsg(payload); err != nil {
		return fmt.Errorf("decode ErrorResp: %w", err)
	}
	return fault.FromWire(resp.Code, resp.Message)
}

// writeMsg encodes m and writes it as a single frame directly to w.
func writeMsg(w io.Writer, callID uint32, msgType byte, m msgp.Marshaler) error {
	payload, err := m.MarshalMsg(nil)
	if err != nil {
		return err
	}
	return WriteFrame(w, Frame{CallID: callID, MsgType: msgType, Payload: payload})
}
