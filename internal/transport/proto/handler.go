package proto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinylib/msgp/msgp"
	"golang.org/x/time/rate"

	"github.com/bamsammich/taskmap/internal/bitmap"
	"github.com/bamsammich/taskmap/internal/event"
	"github.com/bamsammich/taskmap/internal/fault"
	"github.com/bamsammich/taskmap/internal/task"
)

// DefaultMaxFetchWait caps how long a single fetch may long-poll.
const DefaultMaxFetchWait = 30 * time.Second

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Registry *task.Registry
	// Granularity is applied to RegisterReq messages that leave it zero.
	Granularity  uint32
	MaxFetchWait time.Duration
	// RequestsPerSecond limits calls on one connection; 0 disables the limit.
	RequestsPerSecond float64
	// ConnID tags log lines for this connection.
	ConnID string
}

// Handler answers control requests on one connection by routing them to the
// task registry. Every call runs in its own goroutine.
type Handler struct {
	ctx     context.Context
	mux     *Mux
	reg     *task.Registry
	limiter *rate.Limiter
	cfg     HandlerConfig
}

// NewHandler creates a request handler for mux. ctx bounds long-polling
// fetches and is cancelled when the connection goes away.
func NewHandler(ctx context.Context, mux *Mux, cfg HandlerConfig) *Handler {
	if cfg.MaxFetchWait <= 0 {
		cfg.MaxFetchWait = DefaultMaxFetchWait
	}
	if cfg.Granularity == 0 {
		cfg.Granularity = bitmap.DefaultGranularity
	}
	limit := rate.Inf
	burst := 0
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	return &Handler{
		ctx:     ctx,
		mux:     mux,
		reg:     cfg.Registry,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
	}
}

// ServeCall answers a single request frame. It is a CallHandler.
func (h *Handler) ServeCall(f Frame) {
	if err := h.limiter.Wait(h.ctx); err != nil {
		return // connection is going away
	}
	if err := h.dispatch(f); err != nil {
		slog.Debug("request failed", "conn", h.cfg.ConnID, "call", f.CallID,
			"msg_type", f.MsgType, "error", err)
		h.sendError(f.CallID, err)
	}
}

//nolint:gocyclo,revive // cyclomatic: protocol message dispatcher with one case per message type
func (h *Handler) dispatch(f Frame) error {
	switch f.MsgType {
	case MsgPingReq:
		return h.handlePing(f)
	case MsgRegisterReq:
		return h.handleRegister(f)
	case MsgDeregisterReq:
		return h.handleDeregister(f)
	case MsgListReq:
		return h.handleList(f)
	case MsgMarkReq, MsgUnmarkReq:
		return h.handleMarkUnmark(f)
	case MsgCheckReq:
		return h.handleCheck(f)
	case MsgFetchReq:
		return h.handleFetch(f)
	default:
		return fmt.Errorf("unknown message type 0x%02x: %w", f.MsgType, fault.ErrInvalidArgument)
	}
}

func (h *Handler) handlePing(f Frame) error {
	var req PingReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}
	return h.reply(f.CallID, MsgPongResp, PongResp{Seq: req.Seq})
}

func (h *Handler) handleRegister(f Frame) error {
	var req RegisterReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}
	if req.Granularity == 0 {
		req.Granularity = h.cfg.Granularity
	}

	id, err := h.reg.Register(task.RegisterRequest{
		Name:        req.Name,
		Scope:       req.Scope,
		Granularity: req.Granularity,
		Mask:        event.Kind(req.Mask),
	})
	if err != nil {
		return err
	}
	slog.Info("task registered", "conn", h.cfg.ConnID, "task", id, "name", req.Name)
	return h.reply(f.CallID, MsgRegisterResp, RegisterResp{TaskID: id})
}

func (h *Handler) handleDeregister(f Frame) error {
	var req TaskReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}
	if err := h.reg.Deregister(req.TaskID); err != nil {
		return err
	}
	slog.Info("task deregistered", "conn", h.cfg.ConnID, "task", req.TaskID)
	return h.reply(f.CallID, MsgAckResp, AckResp{})
}

func (h *Handler) handleList(f Frame) error {
	infos := h.reg.List()
	resp := ListResp{Tasks: make([]TaskInfoMsg, len(infos))}
	for i, info := range infos {
		resp.Tasks[i] = FromTaskInfo(info)
	}
	return h.reply(f.CallID, MsgListResp, &resp)
}

func (h *Handler) handleMarkUnmark(f Frame) error {
	var req RangeReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}

	var err error
	if f.MsgType == MsgMarkReq {
		err = h.reg.Mark(req.TaskID, req.Offset, req.Length)
	} else {
		err = h.reg.Unmark(req.TaskID, req.Offset, req.Length)
	}
	if err != nil {
		return err
	}
	return h.reply(f.CallID, MsgAckResp, AckResp{})
}

func (h *Handler) handleCheck(f Frame) error {
	var req RangeReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}
	done, err := h.reg.Check(req.TaskID, req.Offset, req.Length)
	if err != nil {
		return err
	}
	return h.reply(f.CallID, MsgCheckResp, CheckResp{Done: done})
}

func (h *Handler) handleFetch(f Frame) error {
	var req FetchReq
	if err := decode(f.Payload, &req); err != nil {
		return err
	}

	wait := h.cfg.MaxFetchWait
	if req.WaitMillis < wait.Milliseconds() {
		wait = time.Duration(max(req.WaitMillis, 0)) * time.Millisecond
	}
	batch, err := h.reg.Fetch(h.ctx, req.TaskID, int(req.MaxCount), wait)
	if err != nil {
		return err
	}

	resp := FetchResp{Items: make([]ItemMsg, len(batch.Events)), Dropped: batch.Dropped}
	for i, ev := range batch.Events {
		resp.Items[i] = FromChangeEvent(ev)
	}
	return h.reply(f.CallID, MsgFetchResp, &resp)
}

func (h *Handler) reply(callID uint32, msgType byte, m msgp.Marshaler) error {
	payload, err := m.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("encode response: %w: %w", fault.ErrInternal, err)
	}
	return h.mux.Send(Frame{CallID: callID, MsgType: msgType, Payload: payload})
}

func (h *Handler) sendError(callID uint32, origErr error) {
	if errors.Is(origErr, ErrMuxClosed) {
		return
	}
	resp := ErrorResp{Message: origErr.Error(), Code: fault.Code(origErr)}
	payload, err := resp.MarshalMsg(nil)
	if err != nil {
		slog.Error("failed to marshal error response", "error", err)
		return
	}
	if err := h.mux.Send(
		Frame{CallID: callID, MsgType: MsgErrorResp, Payload: payload},
	); err != nil {
		slog.Debug("failed to send error response", "conn", h.cfg.ConnID, "error", err)
	}
}
