package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tsload/internal/adapters/logger"
)

func TestPrettyHandler_Handle_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info level", level: slog.LevelInfo, msg: "compiled test.ts", goldenName: "handler_info"},
		{name: "warn level", level: slog.LevelWarn, msg: "disk cache write failed", goldenName: "handler_warn"},
		{name: "error level", level: slog.LevelError, msg: "compilation failed", goldenName: "handler_error"},
		{name: "debug level filtered", level: slog.LevelDebug, msg: "probe output", goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, tt.msg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	tests := []struct {
		name  string
		setup func(slog.Handler) slog.Handler
		attrs []any
		want  string
	}{
		{
			name:  "record attrs",
			setup: func(h slog.Handler) slog.Handler { return h },
			attrs: []any{"backend", "engine", "files", 2},
			want:  "msg backend=engine files=2\n",
		},
		{
			name: "handler attrs precede record attrs",
			setup: func(h slog.Handler) slog.Handler {
				return h.WithAttrs([]slog.Attr{slog.String("cache", "disk")})
			},
			attrs: []any{"hit", true},
			want:  "msg cache=disk hit=true\n",
		},
		{
			name: "nested groups qualify keys",
			setup: func(h slog.Handler) slog.Handler {
				return h.WithGroup("compiler").WithGroup("process")
			},
			attrs: []any{"exit", 1},
			want:  "msg compiler.process.exit=1\n",
		},
		{
			name:  "empty group is ignored",
			setup: func(h slog.Handler) slog.Handler { return h.WithGroup("") },
			attrs: []any{"key", "val"},
			want:  "msg key=val\n",
		},
		{
			name:  "values with spaces are quoted",
			setup: func(h slog.Handler) slog.Handler { return h },
			attrs: []any{"path", "my dir/a.ts"},
			want:  "msg path=\"my dir/a.ts\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			h := tt.setup(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			slog.New(h).Info("msg", tt.attrs...)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name         string
		handlerLevel slog.Level
		recordLevel  slog.Level
		want         bool
	}{
		{"debug below info", slog.LevelInfo, slog.LevelDebug, false},
		{"info at info", slog.LevelInfo, slog.LevelInfo, true},
		{"error above info", slog.LevelInfo, slog.LevelError, true},
		{"debug at debug", slog.LevelDebug, slog.LevelDebug, true},
		{"warn below error", slog.LevelError, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: tt.handlerLevel})
			assert.Equal(t, tt.want, h.Enabled(t.Context(), tt.recordLevel))
		})
	}
}

func TestPrettyHandler_DebugIcon(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	lg.Debug("probing node")

	assert.Equal(t, "○ probing node\n", buf.String())
}

func TestPrettyHandler_NilWriter(t *testing.T) {
	require.NotPanics(t, func() {
		_ = logger.NewPrettyHandler(nil, nil)
	})
}

func TestPrettyHandler_Handle_ReturnsError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	h := logger.NewPrettyHandler(&brokenWriter{}, nil)
	require.NotPanics(t, func() {
		slog.New(h).Info("this will fail to write")
	})
}

type brokenWriter struct{}

func (bw *brokenWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}
