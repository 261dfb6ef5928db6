package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAddsModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("CacheService", "thread cached", map[string]interface{}{"chat_id": "c1"})
	l.Error("CacheService", "redis get failed", map[string]interface{}{"error": errors.New("boom")})
	l.Warn("CacheService", "nil details", nil)

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "thread cached", entries[0].Message)
		assert.Equal(t, "CacheService", entries[0].ContextMap()["module"])

		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])

		assert.NotNil(t, entries[2].ContextMap()["details"])
	}
}
