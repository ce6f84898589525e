package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"acmeshell/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)
			})
		}
	}
}

func TestFromContext(t *testing.T) {
	t.Run("logger stored in context", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})

	t.Run("no logger in context", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})

	t.Run("derived context keeps logger", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Production, "info")
		require.NoError(t, err)

		type ctxKeyType struct{}
		ctx := context.WithValue(logger.NewContext(context.Background(), testLogger), ctxKeyType{}, "value")

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})
}

func TestLogFallsBackToGlobal(t *testing.T) {
	t.Cleanup(func() { logger.SetGlobalLogger(nil) })

	global, err := logger.NewLogger(logger.Production, "info")
	require.NoError(t, err)
	logger.SetGlobalLogger(global)

	assert.Same(t, global, logger.Log(context.Background()))

	local, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	assert.Same(t, local, logger.Log(logger.NewContext(context.Background(), local)))
}

func TestLogWithoutGlobalReturnsFallback(t *testing.T) {
	logger.SetGlobalLogger(nil)

	assert.NotNil(t, logger.Log(context.Background()))
}

func TestInitGlobalLoggerWithLevel(t *testing.T) {
	t.Cleanup(func() { logger.SetGlobalLogger(nil) })
	logger.SetGlobalLogger(nil)

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Development, "debug"))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLoggerWithLevel(logger.Production, "error"))
	assert.Same(t, first, logger.Log(context.Background()))
}

func TestRequestIDIsAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))

	ctx := logger.NewRequestIDContext(context.Background(), "req-42")
	log.Info(ctx, "with id")
	log.Info(context.Background(), "without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-42", entries[0].ContextMap()[logger.RequestID])
	assert.NotContains(t, entries[1].ContextMap(), logger.RequestID)
}

func TestNewRequestIDContext(t *testing.T) {
	t.Run("keeps provided id", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "fixed")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Equal(t, "fixed", id)
	})

	t.Run("generates id when empty", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")
		id, ok := logger.GetRequestID(ctx)
		require.True(t, ok)
		assert.Len(t, id, 36)
	})

	t.Run("missing id", func(t *testing.T) {
		_, ok := logger.GetRequestID(context.Background())
		assert.False(t, ok)
	})
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core)).With(zap.String("component", "test"))

	log.Debug(context.Background(), "debug")
	log.Warn(context.Background(), "warn")
	log.Error(context.Background(), "error")

	require.Equal(t, 3, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "test", entry.ContextMap()["component"])
	}
}
