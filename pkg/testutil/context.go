package testutil

import (
	"context"
	"net/http"

	id "medledger/pkg/domain"
	authmw "medledger/pkg/platform/middleware/auth"
)

// WithIdentity adds a caller identity to the request context. This simulates
// what the auth middleware would do for authenticated requests. An invalid
// identity string is silently ignored.
func WithIdentity(req *http.Request, identity string) *http.Request {
	if parsed, err := id.ParseIdentity(identity); err == nil {
		return req.WithContext(authmw.WithIdentity(req.Context(), parsed))
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
