package commands

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/diogo/chatweb/internal/config"
)

// newLogger builds the JSON file logger. The TUI owns the terminal, so
// nothing is written to stderr.
func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	if _, err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	logPath, err := config.GetLogPath()
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Sampling = nil
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, nil
}
