// Package request opens the request context of every HTTP request and records
// which route and handler serve it.
package request

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kycore/pkg/platform/httputil"
	"kycore/pkg/platform/middleware/metadata"
	"kycore/pkg/requestcontext"
)

// Logger receives scope failures.
type Logger interface {
	Error(ctx context.Context, err error, msg string, keysAndValues ...any)
}

// HeaderContextID carries the context id back to the caller.
const HeaderContextID = "X-Context-ID"

// Scope runs the rest of the chain inside a fresh request context seeded from
// the request. Apply it before any middleware that reads the context.
func Scope(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seed := requestcontext.Seed{
				Path:   r.URL.Path,
				Method: r.Method,
				IP:     metadata.ClientIPFromRequest(r),
			}
			err := requestcontext.Run(r.Context(), seed, func(ctx context.Context) error {
				if id, err := requestcontext.ID(ctx); err == nil {
					w.Header().Set(HeaderContextID, id)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				logger.Error(r.Context(), err, "request scope failed")
				httputil.WriteError(w, err)
			}
		})
	}
}

// Handler names the controller and handler serving the request and records the
// matched route pattern as the path mask. Routing is complete by the time a
// handler runs, so the pattern is final.
func Handler(controller, handler string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if requestcontext.Has(ctx) {
			_ = requestcontext.SetHandler(ctx, controller, handler)
			if rctx := chi.RouteContext(ctx); rctx != nil {
				_ = requestcontext.SetPathMask(ctx, rctx.RoutePattern())
			}
		}
		fn(w, r)
	}
}
