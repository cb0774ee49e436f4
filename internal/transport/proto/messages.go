package proto

//go:generate msgp -io=false

// Protocol version. Bump only on breaking wire changes.
const ProtocolVersion = 1

// Message type constants for the taskmap control protocol.
const (
	// Connection setup and keep-alive.
	MsgHandshakeReq  byte = 0x01
	MsgHandshakeResp byte = 0x02
	MsgPingReq       byte = 0x03
	MsgPongResp      byte = 0x04

	// Task lifecycle.
	MsgRegisterReq   byte = 0x10
	MsgRegisterResp  byte = 0x11
	MsgDeregisterReq byte = 0x12
	MsgListReq       byte = 0x13
	MsgListResp      byte = 0x14

	// Progress bitmap.
	MsgMarkReq   byte = 0x20
	MsgUnmarkReq byte = 0x21
	MsgCheckReq  byte = 0x22
	MsgCheckResp byte = 0x23

	// Event queue.
	MsgFetchReq  byte = 0x30
	MsgFetchResp byte = 0x31

	MsgAckResp   byte = 0x40
	MsgErrorResp byte = 0xFF
)

// HandshakeReq is the first frame a client sends, before multiplexing.
type HandshakeReq struct {
	Version  int  `msg:"version"`
	Compress bool `msg:"compress"`
}

// HandshakeResp answers HandshakeReq. Compress reports whether both sides
// switch to zstd after this frame.
type HandshakeResp struct {
	Version       int    `msg:"version"`
	Compress      bool   `msg:"compress"`
	Granularity   uint32 `msg:"granularity"` // daemon default for new tasks
	QueueCapacity int    `msg:"queue_capacity"`
}

// PingReq is a keep-alive request.
type PingReq struct {
	Seq uint64 `msg:"seq"`
}

// PongResp is the response to a PingReq.
type PongResp struct {
	Seq uint64 `msg:"seq"`
}

// RegisterReq creates a task. Granularity 0 selects the daemon default.
type RegisterReq struct {
	Name        string `msg:"name"`
	Scope       string `msg:"scope"`
	Granularity uint32 `msg:"granularity"`
	Mask        uint16 `msg:"mask"`
}

// RegisterResp returns the new task's ID.
type RegisterResp struct {
	TaskID uint32 `msg:"task_id"`
}

// TaskReq addresses a task by ID (deregister).
type TaskReq struct {
	TaskID uint32 `msg:"task_id"`
}

// RangeReq addresses a byte range of a task (mark, unmark, check).
type RangeReq struct {
	TaskID uint32 `msg:"task_id"`
	Offset uint64 `msg:"offset"`
	Length uint64 `msg:"length"`
}

// CheckResp reports whether the checked range is fully marked.
type CheckResp struct {
	Done bool `msg:"done"`
}

// FetchReq removes up to MaxCount events. WaitMillis > 0 long-polls an
// empty queue.
type FetchReq struct {
	TaskID     uint32 `msg:"task_id"`
	MaxCount   uint32 `msg:"max_count"`
	WaitMillis int64  `msg:"wait_millis"`
}

// ItemMsg is the wire representation of event.ChangeEvent.
type ItemMsg struct {
	UUID   uint64 `msg:"uuid"`
	Offset uint64 `msg:"offset"`
	State  uint16 `msg:"state"`
}

// FetchResp returns fetched events in queue order and the task's lifetime
// dropped-event count.
type FetchResp struct {
	Items   []ItemMsg `msg:"items"`
	Dropped uint64    `msg:"dropped"`
}

// ListReq requests a summary of every registered task.
type ListReq struct{}

// TaskInfoMsg is the wire representation of task.Info.
type TaskInfoMsg struct {
	Name        string `msg:"name"`
	Scope       string `msg:"scope"`
	Registered  int64  `msg:"registered"` // unix nanoseconds
	Dropped     uint64 `msg:"dropped"`
	SetBits     uint64 `msg:"set_bits"`
	Pending     int    `msg:"pending"`
	Segments    int    `msg:"segments"`
	ID          uint32 `msg:"id"`
	Granularity uint32 `msg:"granularity"`
	Mask        uint16 `msg:"mask"`
}

// ListResp returns task summaries ordered by ID.
type ListResp struct {
	Tasks []TaskInfoMsg `msg:"tasks"`
}

// AckResp is a generic success acknowledgment.
type AckResp struct{}

// ErrorResp is the error response for any request. Code carries the
// fault kind so clients can match it with errors.Is.
type ErrorResp struct {
	Message string `msg:"message"`
	Code    uint8  `msg:"code"`
}
