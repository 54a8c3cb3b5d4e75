// Package requestcontext provides the ambient, task-scoped context of a request.
//
// A task (one inbound request, one CLI command, one worker job) enters its scope
// with Run. Everything called with the context handed to the task function, however
// deep, can read and update the scope without the values being passed explicitly:
// request metadata, the authenticated subject and the active transaction handle.
//
// Usage at task entry (middleware, workers):
//
//	err := requestcontext.Run(ctx, requestcontext.Seed{Path: r.URL.Path}, func(ctx context.Context) error {
//		return next(ctx)
//	})
//
// Usage in services and repositories:
//
//	userID, ok := requestcontext.UserID(ctx)
//	handle, err := requestcontext.Transaction(ctx)
//
// Each call to Run creates a fresh scope, so concurrent tasks never observe each
// other's state. Goroutines spawned by a task with its context share the task's
// scope; scope fields are guarded by a mutex.
package requestcontext

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
)

type scopeKey struct{}

// Seed carries the metadata a task starts with.
type Seed struct {
	Path           string
	PathMask       string
	Method         string
	IP             string
	ControllerName string
	HandlerName    string
	UserID         domain.ID
}

type scope struct {
	mu   sync.RWMutex
	id   string
	seed Seed
	tx   any
}

// Run executes fn inside a fresh task scope. The transaction slot is cleared when
// fn returns, including when it panics. The caller's own scope, if any, is left
// untouched.
func Run(ctx context.Context, seed Seed, fn func(ctx context.Context) error) error {
	s := &scope{id: uuid.NewString(), seed: seed}
	defer s.clearTx()
	return fn(context.WithValue(ctx, scopeKey{}, s))
}

func from(ctx context.Context) (*scope, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(scopeKey{}).(*scope)
	return s, ok && s != nil
}

func mustFrom(ctx context.Context) (*scope, error) {
	s, ok := from(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeContextMissing, "no request context is active")
	}
	return s, nil
}

func (s *scope) clearTx() {
	s.mu.Lock()
	s.tx = nil
	s.mu.Unlock()
}

// Has reports whether ctx belongs to a task scope.
func Has(ctx context.Context) bool {
	_, ok := from(ctx)
	return ok
}

// ID returns the task id generated by Run.
func ID(ctx context.Context) (string, error) {
	s, err := mustFrom(ctx)
	if err != nil {
		return "", err
	}
	return s.id, nil
}

// -----------------------------------------------------------------------------
// Caller metadata
// -----------------------------------------------------------------------------

// UserID returns the authenticated subject of the task, if any.
func UserID(ctx context.Context) (domain.ID, bool) {
	s, ok := from(ctx)
	if !ok {
		return domain.ID{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seed.UserID, !s.seed.UserID.IsNil()
}

// SetUserID records the authenticated subject of the task.
func SetUserID(ctx context.Context, userID domain.ID) error {
	s, err := mustFrom(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.seed.UserID = userID
	s.mu.Unlock()
	return nil
}

// SetHandler records the controller and handler serving the task.
func SetHandler(ctx context.Context, controller, handler string) error {
	s, err := mustFrom(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.seed.ControllerName = controller
	s.seed.HandlerName = handler
	s.mu.Unlock()
	return nil
}

// SetPathMask records the route pattern matched by the task, e.g. /users/{id}.
func SetPathMask(ctx context.Context, mask string) error {
	s, err := mustFrom(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.seed.PathMask = mask
	s.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------
// Transaction handle
// -----------------------------------------------------------------------------

// SetTransaction registers the task's transaction handle. A task owns at most one
// handle at a time; registering a second one fails with CodeTransactionOverride.
func SetTransaction(ctx context.Context, handle any) error {
	s, err := mustFrom(ctx)
	if err != nil {
		return err
	}
	if handle == nil {
		return dErrors.New(dErrors.CodeArgumentMissing, "transaction handle is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return dErrors.New(dErrors.CodeTransactionOverride, "a transaction is already active for this request context")
	}
	s.tx = handle
	return nil
}

// Transaction returns the registered handle, or nil when the task is not inside a
// transaction.
func Transaction(ctx context.Context) (any, error) {
	s, err := mustFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tx, nil
}

// ClearTransaction removes the registered handle. Clearing an empty slot is a no-op.
func ClearTransaction(ctx context.Context) error {
	s, err := mustFrom(ctx)
	if err != nil {
		return err
	}
	s.clearTx()
	return nil
}

// -----------------------------------------------------------------------------
// Diagnostics
// -----------------------------------------------------------------------------

// Snapshot is a read-only copy of the scope used for log enrichment.
type Snapshot struct {
	ContextID      string
	Path           string
	PathMask       string
	Method         string
	IP             string
	ControllerName string
	HandlerName    string
	UserID         string
	InTransaction  bool
}

// Raw returns a snapshot of the current scope. It never fails: outside a task the
// zero Snapshot is returned.
func Raw(ctx context.Context) Snapshot {
	s, ok := from(ctx)
	if !ok {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ContextID:      s.id,
		Path:           s.seed.Path,
		PathMask:       s.seed.PathMask,
		Method:         s.seed.Method,
		IP:             s.seed.IP,
		ControllerName: s.seed.ControllerName,
		HandlerName:    s.seed.HandlerName,
		InTransaction:  s.tx != nil,
	}
	if !s.seed.UserID.IsNil() {
		snap.UserID = s.seed.UserID.String()
	}
	return snap
}

// Attrs flattens the snapshot into key/value pairs, omitting empty fields.
func (s Snapshot) Attrs() []any {
	if s.ContextID == "" {
		return nil
	}
	attrs := []any{"context_id", s.ContextID}
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, key, value)
		}
	}
	add("path", s.Path)
	add("path_mask", s.PathMask)
	add("method", s.Method)
	add("ip", s.IP)
	add("controller", s.ControllerName)
	add("handler", s.HandlerName)
	add("user_id", s.UserID)
	return append(attrs, "in_transaction", s.InTransaction)
}
