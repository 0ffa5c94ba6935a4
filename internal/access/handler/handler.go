package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/access"
	"medledger/internal/platform/metrics"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware"
	"medledger/pkg/platform/middleware/auth"
)

// Service defines the interface for access ledger operations.
type Service interface {
	Grant(ctx context.Context, caller, provider id.Identity) error
	Revoke(ctx context.Context, caller, provider id.Identity) error
	List(ctx context.Context, caller id.Identity) ([]access.Grant, error)
}

// Handler handles access ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	ledger    Service
	metrics   *metrics.Metrics
	validator auth.TokenValidator
}

// New creates a new access Handler.
func New(ledger Service, logger *slog.Logger, m *metrics.Metrics, validator auth.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		ledger:    ledger,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the access routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recovery(h.logger))
		gr.Use(middleware.RequestID)
		gr.Use(middleware.Logger(h.logger))
		gr.Use(middleware.Timeout(30 * time.Second))
		gr.Use(middleware.ContentTypeJSON)
		if h.metrics != nil {
			gr.Use(middleware.Latency(h.metrics))
		}
		gr.Use(auth.RequireAuth(h.validator, h.logger))
		gr.Post("/access/grants", h.handleGrant)
		gr.Post("/access/revocations", h.handleRevoke)
		gr.Get("/access/grants", h.handleList)
	})
}

// grantRequest names the provider for grantAccess and revokeAccess. The
// caller side of the pair always comes from the authenticated context.
type grantRequest struct {
	Provider string `json:"provider"`
}

type grantItem struct {
	Provider  string `json:"provider"`
	UpdatedAt string `json:"updated_at"`
}

type listResponse struct {
	Grants []grantItem `json:"grants"`
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	ctx := r.Context()
	caller := auth.GetIdentity(ctx)
	if caller.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.Identity{}, false
	}
	return caller, true
}

func (h *Handler) provider(w http.ResponseWriter, r *http.Request) (id.Identity, bool) {
	ctx := r.Context()
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid access request body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return id.Identity{}, false
	}
	provider, err := id.ParseIdentity(req.Provider)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid provider identity",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return id.Identity{}, false
	}
	return provider, true
}

// handleGrant authorizes a provider to read the caller's record.
func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Grant(r.Context(), caller, provider); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to grant access",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to grant access"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRevoke removes a provider's authorization.
func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Revoke(r.Context(), caller, provider); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to revoke access",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to revoke access"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleList returns the caller's currently granted providers.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	grants, err := h.ledger.List(r.Context(), caller)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list grants",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list grants"))
		return
	}

	resp := listResponse{Grants: make([]grantItem, 0, len(grants))}
	for _, g := range grants {
		resp.Grants = append(resp.Grants, grantItem{
			Provider:  g.Provider.String(),
			UpdatedAt: g.UpdatedAt.Format(time.RFC3339Nano),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
