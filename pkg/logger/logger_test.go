package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger(t *testing.T) {
	t.Helper()
	log = nil
	once = sync.Once{}
	atom = zap.AtomicLevel{}
	t.Cleanup(func() {
		log = nil
		once = sync.Once{}
		atom = zap.AtomicLevel{}
	})
}

func TestGetLoggerBeforeInitIsNop(t *testing.T) {
	resetLogger(t)
	require.NotNil(t, GetLogger())
	Info(context.Background(), "dropped")
	SetLevel(zapcore.ErrorLevel)
}

func TestInitAndContextLogging(t *testing.T) {
	resetLogger(t)
	Init("development")
	require.NotNil(t, GetLogger())

	ctx := context.WithValue(context.Background(), "request_id", "req-1")
	assert.NotNil(t, WithContext(ctx))

	Info(ctx, "info")
	Debug(ctx, "debug")
	Warn(ctx, "warn")
	Error(ctx, "error")
	LogRequest(ctx, "GET", "/health", 200, 10*time.Millisecond, "127.0.0.1")
	SetLevel(zapcore.WarnLevel)
}

func TestWithContextFields(t *testing.T) {
	resetLogger(t)
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	ctx := context.WithValue(context.Background(), RequestIDKey, "typed-req-id")
	ctx = context.WithValue(ctx, UserIDKey, "user-7")
	Warn(ctx, "orphan blob", zap.String("key", "listings/a.png"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "typed-req-id", fields["request_id"])
	assert.Equal(t, "user-7", fields["user_id"])
	assert.Equal(t, "listings/a.png", fields["key"])

	assert.NotNil(t, WithContext(nil))
}

func TestInit_Production(t *testing.T) {
	resetLogger(t)
	Init("production")
	require.NotNil(t, GetLogger())
	assert.NotNil(t, WithContext(context.Background()))
}

func TestInit_PanicWhenLoggerBuildFails(t *testing.T) {
	resetLogger(t)
	origBuild := buildLogger
	t.Cleanup(func() { buildLogger = origBuild })

	buildLogger = func(zap.Config) (*zap.Logger, error) {
		return nil, errors.New("build failed")
	}

	assert.Panics(t, func() { Init("production") })
}
