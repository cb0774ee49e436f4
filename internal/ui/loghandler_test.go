package ui_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/taskmap/internal/ui"
)

func TestMultiHandlerFanOut(t *testing.T) {
	t.Parallel()

	var stderr, logFile bytes.Buffer
	text := slog.NewTextHandler(&stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	jsonH := slog.NewJSONHandler(&logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(ui.NewMultiHandler(text, jsonH))

	logger.Debug("task registered", "task", 7)
	logger.Warn("queue overflow", "task", 7, "dropped", 3)

	assert.NotContains(t, stderr.String(), "task registered")
	assert.Contains(t, stderr.String(), "queue overflow")
	assert.Contains(t, stderr.String(), "dropped=3")

	dec := json.NewDecoder(&logFile)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "task registered", first["msg"])
	assert.Equal(t, "queue overflow", second["msg"])
	assert.InDelta(t, 7, second["task"], 0)
}

func TestMultiHandlerEnabled(t *testing.T) {
	t.Parallel()

	warn := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	info := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	ctx := context.Background()

	tests := []struct {
		name     string
		handlers []slog.Handler
		level    slog.Level
		want     bool
	}{
		{"no handlers", nil, slog.LevelError, false},
		{"below every handler", []slog.Handler{warn, info}, slog.LevelDebug, false},
		{"accepted by one", []slog.Handler{warn, info}, slog.LevelInfo, true},
		{"accepted by all", []slog.Handler{warn, info}, slog.LevelError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ui.NewMultiHandler(tt.handlers...).Enabled(ctx, tt.level))
		})
	}
}

func TestMultiHandlerAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	m := ui.NewMultiHandler(
		slog.NewTextHandler(&text, nil),
		slog.NewJSONHandler(&js, nil),
	)
	logger := slog.New(m.WithAttrs([]slog.Attr{slog.String("conn", "c1")}).WithGroup("call"))

	logger.Info("fetch", "task", 2, "count", 512)

	assert.Contains(t, text.String(), "conn=c1")
	assert.Contains(t, text.String(), "call.task=2")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	assert.Equal(t, "c1", rec["conn"])
	group, ok := rec["call"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 512, group["count"], 0)
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestMultiHandlerJoinsErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	m := ui.NewMultiHandler(failingHandler{ok}, ok)

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "mark", 0)
	err := m.Handle(context.Background(), r)
	require.ErrorContains(t, err, "disk full")
	assert.Contains(t, buf.String(), "msg=mark")
}
