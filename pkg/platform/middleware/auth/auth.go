// Package auth resolves the caller identity at the HTTP boundary. Identity is
// never taken from request input; it comes from the validated bearer token,
// and handlers read it back from the request context.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "medledger/pkg/domain"
	"medledger/pkg/platform/middleware"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the claims we expect from the token validator.
type Claims struct {
	Identity string
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for use in handlers and tests.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated caller identity from the context.
// The zero Identity means the request was not authenticated.
func GetIdentity(ctx context.Context) id.Identity {
	identity, ok := ctx.Value(ContextKeyIdentity).(id.Identity)
	if !ok {
		return id.Identity{}
	}
	return identity
}

// WithIdentity stores a caller identity in the context. Exported for tests
// that bypass the middleware.
func WithIdentity(ctx context.Context, identity id.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, identity)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth validates the bearer token and injects the caller identity into
// the request context. Requests without a valid token never reach handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			identity, err := id.ParseIdentity(claims.Identity)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed identity claim",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}
