package logging

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/simheat/pkg/errors"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/sub/simheat.log"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("rendered",
		String("dataset", "co1121"),
		Int("atoms", 24),
		Float64("max", 9.5),
		Bool("symmetric", true),
		Duration("elapsed", 150*time.Millisecond),
		Strings("labels", []string{"a", "b"}),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "co1121", ctx["dataset"])
	assert.Equal(t, int64(24), ctx["atoms"])
	assert.Equal(t, 9.5, ctx["max"])
	assert.Equal(t, true, ctx["symmetric"])
	assert.Equal(t, 150*time.Millisecond, ctx["elapsed"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("plotting").With(Component("renderer"))
	child.Info("start")

	entry := logs.All()[0]
	assert.Equal(t, "plotting", entry.LoggerName)
	assert.Equal(t, "renderer", entry.ContextMap()["component"])
}

func TestErrAndCode(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
	assert.Equal(t, "boom", Err(stderrors.New("boom")).Value)

	appErr := errors.New(errors.ErrCodeReportTruncated, "short")
	assert.Equal(t, "RPT_003", Code(appErr).Value)
	assert.Equal(t, "UNKNOWN", Code(stderrors.New("x")).Value)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
		l.With(String("k", "v")).Named("x").Info("msg")
	})
	assert.NoError(t, l.Sync())
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(nil)
	assert.Equal(t, prev, Default())

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Equal(t, l, Default())
}

//Personal.AI order the ending
