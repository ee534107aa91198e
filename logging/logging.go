// Package logging builds the console's zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	admin "github.com/goliatone/go-school-admin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level and an optional rotating log file.
type Config struct {
	Level string
	File  string
}

// NewLogger creates a JSON zap.Logger writing to stdout and, when File is
// set, to a lumberjack rotated file.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey: "message",
		LevelKey:   "level",
		TimeKey:    "ts",
		NameKey:    "logger",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(l.String())
		},
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	atom := zap.NewAtomicLevelAt(level)
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), atom),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}), atom))
	}

	return zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// Adapter exposes a zap logger through the admin.Logger interface.
type Adapter struct {
	sugar *zap.SugaredLogger
}

var _ admin.Logger = (*Adapter)(nil)

// NewAdapter wraps logger, naming it name when not empty.
func NewAdapter(logger *zap.Logger, name string) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name != "" {
		logger = logger.Named(name)
	}
	return &Adapter{sugar: logger.Sugar()}
}

func (a *Adapter) Debug(format string, args ...any) {
	a.sugar.Debugf(format, args...)
}

func (a *Adapter) Info(format string, args ...any) {
	a.sugar.Infof(format, args...)
}

func (a *Adapter) Warn(format string, args ...any) {
	a.sugar.Warnf(format, args...)
}

func (a *Adapter) Error(format string, args ...any) {
	a.sugar.Errorf(format, args...)
}

// Sync flushes buffered entries.
func (a *Adapter) Sync() error {
	return a.sugar.Sync()
}
