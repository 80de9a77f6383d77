package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogfDisabledIsNoop(t *testing.T) {
	prev := enabled
	enabled = false
	t.Cleanup(func() { enabled = prev })

	assert.NotPanics(t, func() {
		Logf("value %d", 1)
		Logw("msg", "key", "value")
		Sync()
	})
	assert.False(t, Enabled())
}

func TestLogwStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	once.Do(func() {})
	prevLogger, prevEnabled := logger, enabled
	if prevLogger == nil {
		prevLogger = zap.NewNop().Sugar()
	}
	logger, enabled = zap.New(core).Sugar(), true
	t.Cleanup(func() { logger, enabled = prevLogger, prevEnabled })

	Logw("wizard: work type selected", "code", "ec_corrective")
	Logf("value %d", 7)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "wizard: work type selected", entries[0].Message)
	assert.Equal(t, "ec_corrective", entries[0].ContextMap()["code"])
	assert.Equal(t, "value 7", entries[1].Message)
}
