package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycore/internal/platform/logger"
	"kycore/internal/platform/metrics"
	"kycore/pkg/platform/middleware/auth"
	"kycore/pkg/platform/middleware/request"
	"kycore/pkg/requestcontext"
	"kycore/pkg/testutil"
)

type rejectAll struct{}

func (rejectAll) ValidateToken(string) (*auth.JWTClaims, error) {
	return nil, errors.New("invalid token")
}

type pingRoutes struct{}

func (pingRoutes) Register(r chi.Router) {
	r.Get("/ping", request.Handler("PingController", "Ping", func(w http.ResponseWriter, r *http.Request) {
		snap := requestcontext.Raw(r.Context())
		w.Header().Set("X-Handler", snap.ControllerName+"."+snap.HandlerName)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func newRouter(health map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	metrics.NewUsers(reg).IncrementUsersCreated()
	return NewRouter(Deps{
		Logger:   logger.NewNop(),
		JWT:      rejectAll{},
		Gatherer: reg,
		Health:   health,
		Routes:   []Routes{pingRoutes{}},
	})
}

func TestRouter_Probes(t *testing.T) {
	router := newRouter(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	rr := testutil.Serve(router, testutil.Request(t, http.MethodGet, "/healthz", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Empty(t, rr.Header().Get(request.HeaderContextID))

	rr = testutil.Serve(router, testutil.Request(t, http.MethodGet, "/readyz", nil))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	resp := testutil.DecodeResponse[readinessResponse](t, rr)
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, map[string]string{"postgres": "ok", "redis": "dial tcp: refused"}, resp.Checks)
}

func TestRouter_Metrics(t *testing.T) {
	router := newRouter(nil)

	rr := testutil.Serve(router, testutil.Request(t, http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.True(t, strings.Contains(rr.Body.String(), "kycore_users_created_total 1"))
}

func TestRouter_APIRoutesRunInRequestScope(t *testing.T) {
	router := newRouter(nil)

	rr := testutil.Serve(router, testutil.Request(t, http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(request.HeaderContextID))
	assert.Equal(t, "PingController.Ping", rr.Header().Get("X-Handler"))

	req := testutil.Request(t, http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rr = testutil.Serve(router, req)
	testutil.AssertError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRouter_MiddlewareWrapsFeatureRoutesOnly(t *testing.T) {
	var seen []string
	router := NewRouter(Deps{
		Logger: logger.NewNop(),
		JWT:    rejectAll{},
		Middleware: []func(http.Handler) http.Handler{
			func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					seen = append(seen, r.URL.Path)
					next.ServeHTTP(w, r)
				})
			},
		},
		Routes: []Routes{pingRoutes{}},
	})

	testutil.Serve(router, testutil.Request(t, http.MethodGet, "/healthz", nil))
	rr := testutil.Serve(router, testutil.Request(t, http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"/ping"}, seen)
}
