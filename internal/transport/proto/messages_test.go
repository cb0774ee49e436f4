package proto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/task"
	"github.com/bamsammich/taskmap/internal/transport/proto"
)

func TestFetchRespRoundTrip(t *testing.T) {
	t.Parallel()

	orig := proto.FetchResp{
		Items: []proto.ItemMsg{
			{UUID: uint64(event.NewUUID(12, 3)), Offset: 1 << 40, State: uint16(event.Added | event.Dirty)},
			{UUID: 1, Offset: 0, State: uint16(event.Removed)},
		},
		Dropped: 17,
	}

	data, err := orig.MarshalMsg(nil)
	require.NoError(t, err)

	var decoded proto.FetchResp
	rest, err := decoded.UnmarshalMsg(data)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, orig, decoded)
}

func TestChangeEventConversion(t *testing.T) {
	t.Parallel()

	ev := event.ChangeEvent{
		Path:   "/var/lib/data.db",
		UUID:   event.NewUUID(0xdeadbeef, 9),
		Offset: 8192,
		State:  event.Modified | event.Flushed,
	}

	got := proto.ToChangeEvent(proto.FromChangeEvent(ev))
	ev.Path = ""
	assert.Equal(t, ev, got)
}

func TestTaskInfoConversion(t *testing.T) {
	t.Parallel()

	info := task.Info{
		Registered:  time.Unix(1700000000, 1234).UTC(),
		Name:        "backup",
		Scope:       "/srv",
		ID:          4,
		Granularity: 65536,
		Mask:        event.Added | event.Moved,
		Pending:     10,
		Dropped:     3,
		Segments:    2,
		SetBits:     99,
	}

	m := proto.FromTaskInfo(info)
	data, err := m.MarshalMsg(nil)
	require.NoError(t, err)

	var msg proto.TaskInfoMsg
	_, err = msg.UnmarshalMsg(data)
	require.NoError(t, err)

	got := proto.ToTaskInfo(msg)
	assert.True(t, info.Registered.Equal(got.Registered))
	got.Registered = info.Registered
	assert.Equal(t, info, got)
}

func TestMapEncoding(t *testing.T) {
	t.Parallel()

	// Messages use map encoding (string keys, not positional arrays).
	data, err := proto.RangeReq{TaskID: 1, Offset: 2, Length: 3}.MarshalMsg(nil)
	require.NoError(t, err)

	// fixmap 0x80-0x8f, map16 0xde, map32 0xdf.
	require.NotEmpty(t, data)
	firstByte := data[0]
	isMap := (firstByte >= 0x80 && firstByte <= 0x8f) || firstByte == 0xde || firstByte == 0xdf
	assert.True(t, isMap, "expected map encoding, got first byte 0x%02x", firstByte)
}

func TestUnknownFieldsIgnored(t *testing.T) {
	t.Parallel()

	// A newer peer sending an extra field.
	var buf []byte
	buf = msgp.AppendMapHeader(buf, 4)
	buf = msgp.AppendString(buf, "task_id")
	buf = msgp.AppendUint32(buf, 3)
	buf = msgp.AppendString(buf, "future_field")
	buf = msgp.AppendArrayHeader(buf, 2)
	buf = msgp.AppendString(buf, "a")
	buf = msgp.AppendInt(buf, 1)
	buf = msgp.AppendString(buf, "max_count")
	buf = msgp.AppendUint32(buf, 512)
	buf = msgp.AppendString(buf, "wait_millis")
	buf = msgp.AppendInt64(buf, 250)

	var decoded proto.FetchReq
	_, err := decoded.UnmarshalMsg(buf)
	require.NoError(t, err)

	assert.Equal(t, proto.FetchReq{TaskID: 3, MaxCount: 512, WaitMillis: 250}, decoded)
}

func TestTruncatedPayloadRejected(t *testing.T) {
	t.Parallel()

	req := proto.RegisterReq{Name: "backup", Scope: "/srv", Granularity: 4096, Mask: 1}
	data, err := req.MarshalMsg(nil)
	require.NoError(t, err)

	var decoded proto.RegisterReq
	_, err = decoded.UnmarshalMsg(data[:len(data)-3])
	require.Error(t, err)
}
