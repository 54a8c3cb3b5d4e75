// Package logger is the application's structured logger.
//
// Every record carries the request-context snapshot of the task it was written
// from, so log lines of one request can be correlated by context_id.
package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kycore/pkg/requestcontext"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode: "prod"/"production" logs JSON at info level,
// anything else is the human-readable development format at debug level.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewFromCore wraps an existing core. Tests pass a zaptest observer core.
func NewFromCore(core zapcore.Core) *Logger {
	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

func (l *Logger) Debug(ctx context.Context, msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, enrich(ctx, keysAndValues)...)
}

// Log writes at info level.
func (l *Logger) Log(ctx context.Context, msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, enrich(ctx, keysAndValues)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, enrich(ctx, keysAndValues)...)
}

func (l *Logger) Error(ctx context.Context, err error, msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, enrich(ctx, append(keysAndValues, "error", err))...)
}

// Critical is for failures that need an operator. It writes at error level with
// severity=critical so alerting can select it, and returns like every other call.
func (l *Logger) Critical(ctx context.Context, err error, msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, enrich(ctx, append(keysAndValues, "error", err, "severity", "critical"))...)
}

func enrich(ctx context.Context, keysAndValues []any) []any {
	attrs := requestcontext.Raw(ctx).Attrs()
	if len(attrs) == 0 {
		return keysAndValues
	}
	out := make([]any, 0, len(keysAndValues)+len(attrs))
	out = append(out, keysAndValues...)
	return append(out, attrs...)
}
