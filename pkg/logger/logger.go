// Package logger builds the zap logger shared by the CLI, the service and the HTTP server.
package logger

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RawLogLimit caps how much raw model text is written to a log line.
const RawLogLimit = 2000

// New creates a logger writing to stderr. json selects JSON encoding over console, debug lowers the level.
func New(json bool, debug bool) (logger *zap.Logger, err error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	logger, err = cfg.Build()
	if err != nil {
		err = errors.Wrap(err, "failed to build logger")
		return logger, err
	}

	return logger, err
}

// TruncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) (out string) {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return out
	}
	runes := []rune(s)
	if len(runes) <= limit {
		out = s
		return out
	}
	out = string(runes[:limit]) + "..."
	return out
}
