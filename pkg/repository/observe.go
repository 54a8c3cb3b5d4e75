package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "kycore/pkg/repository"

// Logger is the logging port the repository needs. Logging never changes the
// outcome of an operation.
type Logger interface {
	Debug(ctx context.Context, msg string, keysAndValues ...any)
	Warn(ctx context.Context, msg string, keysAndValues ...any)
	Error(ctx context.Context, err error, msg string, keysAndValues ...any)
}

// Metrics is the metrics port the repository reports to.
type Metrics interface {
	ObserveOperation(entity, operation string, d time.Duration)
	IncSaveSkipped(entity string)
	IncTransaction(outcome string)
}

// Transaction outcomes reported to Metrics.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any)        {}
func (nopLogger) Warn(context.Context, string, ...any)         {}
func (nopLogger) Error(context.Context, error, string, ...any) {}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string, time.Duration) {}
func (nopMetrics) IncSaveSkipped(string)                          {}
func (nopMetrics) IncTransaction(string)                          {}

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// track starts a span for operation and returns a function that ends it and
// records the duration. Pass the operation's error to the returned function.
func (r *Repository[E, F, R]) track(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository."+operation,
		trace.WithAttributes(attribute.String("entity", r.name)),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.metrics.ObserveOperation(r.name, operation, time.Since(start))
	}
}
