package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/go-servici/pkg/application"
)

func TestZapAppLoggerAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAppLoggerFrom(zap.New(core))

	ctx := application.WithRequestID(context.Background(), "abc-123")
	logger.Info(ctx, "command executed", map[string]interface{}{"command": "do something"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "command executed", entries[0].Message)
	assert.Equal(t, "abc-123", fields["request_id"])
	assert.Equal(t, "do something", fields["command"])
}

func TestZapAppLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAppLoggerFrom(zap.New(core))
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Trace(ctx, "trace", nil)
	logger.Error(ctx, "error", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	_, hasRequestID := entries[0].ContextMap()["request_id"]
	assert.False(t, hasRequestID)
}

func TestNewZapAppLogger(t *testing.T) {
	logger, err := NewZapAppLogger("servici-test")
	require.NoError(t, err)
	require.NotNil(t, logger)
}
