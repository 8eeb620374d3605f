package logging

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv names the environment variable controlling the log level.
const LevelEnv = "LOG_LEVEL"

// NewLogger configures a JSON zap logger writing to stdout with level from LOG_LEVEL.
func NewLogger() (*zap.Logger, error) {
	return New(os.Getenv(LevelEnv))
}

// New builds the service logger for the given level name. Unknown or empty levels fall back to info.
func New(levelName string) (*zap.Logger, error) {
	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(ParseLevel(levelName)),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    EncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) zapcore.Level {
	var level zapcore.Level
	if err := level.Set(strings.ToLower(strings.TrimSpace(name))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// EncoderConfig is the JSON field layout shared by all service logs.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     func(t time.Time, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(t.UTC().Format(time.RFC3339Nano)) },
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
