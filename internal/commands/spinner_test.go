package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/diogo/chatweb/internal/config"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Connecting")
	s.start()
	time.Sleep(50 * time.Millisecond)
	s.stopWithSuccess("done")

	assert.Contains(t, buf.String(), "done")
	assert.Contains(t, buf.String(), "\033[?25h", "cursor restored")
}

func TestSpinnerLifecycle_StopTwice(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Connecting")
	s.start()
	s.stopWithError()
	s.stopOnce()
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghijklmnopqrstuvwxyz", 5))
	assert.Equal(t, "olá m...", truncate("olá mundo", 5))
}

func TestNewLogger(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())

	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"
	logger, err := newLogger(cfg, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	_ = logger.Sync()

	verbose, err := newLogger(cfg, true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
	_ = verbose.Sync()

	cfg.LogLevel = "loud"
	_, err = newLogger(cfg, false)
	assert.Error(t, err)
}
