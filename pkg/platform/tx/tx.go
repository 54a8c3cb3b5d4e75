// Package tx binds a storage transaction to the ambient request context.
//
// Repositories call From on every operation to decide whether to run on the open
// transaction or on their default connection. Work that must only happen once the
// transaction commits (event publication, cache invalidation) is queued with
// AfterCommit and run by Flush.
package tx

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"kycore/pkg/requestcontext"
)

// Hook runs after a successful commit.
type Hook func(ctx context.Context) error

// Handle is an open transaction owned by one task.
type Handle struct {
	db *gorm.DB

	mu    sync.Mutex
	hooks []Hook
}

// NewHandle wraps an open gorm transaction.
func NewHandle(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// DB returns the transaction session.
func (h *Handle) DB() *gorm.DB {
	return h.db
}

// AfterCommit queues fn to run once the transaction commits. Hooks are dropped on
// rollback.
func (h *Handle) AfterCommit(fn Hook) {
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// Flush runs queued hooks in registration order and empties the queue. Every hook
// runs even when an earlier one fails; the failures are joined.
func (h *Handle) Flush(ctx context.Context) error {
	h.mu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register stores h as the task's transaction handle.
func Register(ctx context.Context, h *Handle) error {
	return requestcontext.SetTransaction(ctx, h)
}

// From extracts the task's transaction handle if present. It does not fail outside
// a task scope: there is simply no transaction.
func From(ctx context.Context) (*Handle, bool) {
	raw, err := requestcontext.Transaction(ctx)
	if err != nil || raw == nil {
		return nil, false
	}
	h, ok := raw.(*Handle)
	return h, ok
}

// Release clears the task's transaction handle.
func Release(ctx context.Context) error {
	return requestcontext.ClearTransaction(ctx)
}
