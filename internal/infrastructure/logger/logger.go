package logger

import (
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-tron-gateway/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger from LogConfig. Output is "stdout", "stderr" or a file path.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "", "json":
		zapConfig.Encoding = "json"
	case "console", "text":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}

	if cfg.LogOutput != "" {
		zapConfig.OutputPaths = []string{cfg.LogOutput}
	}

	return zapConfig.Build()
}
