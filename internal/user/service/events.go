package service

import (
	"context"

	"kycore/internal/platform/logger"
	"kycore/internal/user/models"
	"kycore/pkg/ddd"
	"kycore/pkg/platform/events"
)

// EventLogger writes one log line per user event.
func EventLogger(log *logger.Logger) events.HandlerFunc {
	return func(ctx context.Context, event ddd.Event) error {
		kv := []any{
			"kind", event.Kind().String(),
			"aggregate_id", event.AggregateID().String(),
			"occurred_at", event.OccurredAt().String(),
		}
		if approved, ok := event.(models.KYCApproved); ok {
			kv = append(kv, "email", approved.Email)
		}
		log.Log(ctx, "user event", kv...)
		return nil
	}
}

// RegisterEventHandlers subscribes the user event handlers to d.
func RegisterEventHandlers(d *events.Dispatcher, log *logger.Logger) {
	h := EventLogger(log)
	d.Register(models.EventUserRegistered, h)
	d.Register(models.EventKYCApproved, h)
}
