// Package ecslog wires the core's diagnostic output to zap, with a no-op
// fallback so World/Registry can log unconditionally without a nil check
// at every call site.
package ecslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sink the core writes structured events to: component and
// system registration/removal, background job start, and duplicate or
// missing registrations (World.SetLogger, Registry.SetLogger).
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
	Sync() error
}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Debugw(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *zapLogger) Infow(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *zapLogger) Warnw(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *zapLogger) Errorw(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l *zapLogger) Sync() error                  { return l.s.Sync() }

// Wrap adapts an existing *zap.Logger.
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{s: z.Sugar()}
}

// Level mirrors zapcore.Level's textual names, kept here so callers building
// a Config don't need to import zapcore directly.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the zap encoder preset.
type Format string

const (
	// FormatJSON uses zap's production JSON encoder.
	FormatJSON Format = "json"
	// FormatConsole uses zap's development console encoder with a
	// short time layout, matching the pack's interactive-server logger.
	FormatConsole Format = "console"
)

// New builds a *zap.Logger for level/format and wraps it as a Logger.
func New(level Level, format Format) (Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == FormatJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(z), nil
}

// noopLogger discards every call, letting callers hold a non-nil Logger by
// default instead of branching on a possibly-unset field.
type noopLogger struct{}

func (noopLogger) Debugw(string, ...any) {}
func (noopLogger) Infow(string, ...any)  {}
func (noopLogger) Warnw(string, ...any)  {}
func (noopLogger) Errorw(string, ...any) {}
func (noopLogger) Sync() error           { return nil }

// NoOp returns a Logger that discards everything.
func NoOp() Logger { return noopLogger{} }
