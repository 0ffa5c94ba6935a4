package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "medledger/pkg/domain"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (v *stubValidator) ValidateToken(string) (*Claims, error) {
	return v.claims, v.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth_InjectsIdentity(t *testing.T) {
	identity := id.NewIdentity()
	validator := &stubValidator{claims: &Claims{Identity: identity.String()}}

	var captured id.Identity
	h := RequireAuth(validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity, captured)
}

func TestRequireAuth_Rejections(t *testing.T) {
	identity := id.NewIdentity()

	tests := []struct {
		name      string
		header    string
		validator TokenValidator
	}{
		{
			name:      "missing header",
			header:    "",
			validator: &stubValidator{claims: &Claims{Identity: identity.String()}},
		},
		{
			name:      "wrong scheme",
			header:    "Basic dXNlcjpwYXNz",
			validator: &stubValidator{claims: &Claims{Identity: identity.String()}},
		},
		{
			name:      "validator rejects token",
			header:    "Bearer bad-token",
			validator: &stubValidator{err: errors.New("signature mismatch")},
		},
		{
			name:      "malformed identity claim",
			header:    "Bearer some-token",
			validator: &stubValidator{claims: &Claims{Identity: "not-a-uuid"}},
		},
		{
			name:      "nil identity claim",
			header:    "Bearer some-token",
			validator: &stubValidator{claims: &Claims{Identity: "00000000-0000-0000-0000-000000000000"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := RequireAuth(tt.validator, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, reached)
		})
	}
}

func TestGetIdentity_ZeroWhenUnset(t *testing.T) {
	assert.True(t, GetIdentity(context.Background()).IsNil())
}

func TestWithIdentity_RoundTrip(t *testing.T) {
	identity := id.NewIdentity()
	ctx := WithIdentity(context.Background(), identity)
	assert.Equal(t, identity, GetIdentity(ctx))
}
