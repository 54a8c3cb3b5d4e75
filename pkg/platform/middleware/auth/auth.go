package auth

import (
	"context"
	"net/http"
	"strings"

	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/httputil"
	"kycore/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID string
	JTI    string
}

// Logger receives rejected authentication attempts.
type Logger interface {
	Warn(ctx context.Context, msg string, keysAndValues ...any)
}

const bearerPrefix = "Bearer "

// Authenticate records the bearer token's subject as the request's user id.
// Requests without an Authorization header pass through anonymously; a present
// but invalid token is rejected with 401. Must run inside request.Scope.
func Authenticate(validator JWTValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				logger.Warn(ctx, "unauthorized access - malformed authorization header")
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn(ctx, "unauthorized access - invalid token", "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}
			userID, err := domain.ParseID(claims.UserID)
			if err != nil {
				logger.Warn(ctx, "unauthorized access - invalid token subject", "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}
			if err := requestcontext.SetUserID(ctx, userID); err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests that Authenticate did not attach a user to.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestcontext.UserID(r.Context()); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
