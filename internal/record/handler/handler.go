package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/platform/metrics"
	"medledger/internal/record"
	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware"
	"medledger/pkg/platform/middleware/auth"
)

// Service defines the interface for record operations.
type Service interface {
	Upsert(ctx context.Context, caller id.Identity, name, dataHash string) error
	View(ctx context.Context, caller, patient id.Identity) (record.PatientRecord, error)
}

// Handler handles record-related endpoints.
type Handler struct {
	logger    *slog.Logger
	records   Service
	metrics   *metrics.Metrics
	validator auth.TokenValidator
}

// New creates a new record Handler.
func New(records Service, logger *slog.Logger, m *metrics.Metrics, validator auth.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		records:   records,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the record routes with the chi router.
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
		gr.Put("/records", h.handleUpsert)
		gr.Get("/records/{patient}", h.handleView)
	})
}

// upsertRequest is the addOrUpdateRecord body. Both fields are stored as
// given; the registry holds an opaque reference and validates neither.
type upsertRequest struct {
	Name     string `json:"name"`
	DataHash string `json:"data_hash"`
}

// recordResponse is the viewRecord body. UpdatedAt is empty for the
// zero-value record, which callers treat as "no record" by convention.
type recordResponse struct {
	Name      string `json:"name"`
	DataHash  string `json:"data_hash"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// handleUpsert sets the authenticated caller's record.
func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller := auth.GetIdentity(ctx)
	if caller.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid upsert record request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.records.Upsert(ctx, caller, req.Name, req.DataHash); err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert record",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to upsert record"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleView returns the requested patient's record when the caller is the
// patient or an authorized grantee.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	caller := auth.GetIdentity(ctx)
	if caller.IsNil() {
		h.logger.ErrorContext(ctx, "identity missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	patient, err := id.ParseIdentity(chi.URLParam(r, "patient"))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid patient identity in path",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.records.View(ctx, caller, patient)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to view record",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to view record"))
		return
	}

	resp := recordResponse{
		Name:     rec.Name,
		DataHash: rec.DataHash,
	}
	if !rec.UpdatedAt.IsZero() {
		resp.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339Nano)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
