package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/teamshuffle/internal/config"
)

// FileName is the log file inside .teamshuffle/logs.
const FileName = "teamshuffle.log"

// New builds a JSON logger appending to .teamshuffle/logs/teamshuffle.log so
// diagnostics survive after the TUI releases the terminal.
func New(projectDir string, debug bool) (*zap.Logger, error) {
	logDir := filepath.Join(projectDir, config.StateDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	return NewAt(filepath.Join(logDir, FileName), debug)
}

// NewAt builds a JSON logger appending to path.
func NewAt(path string, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Sampling = nil
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}
