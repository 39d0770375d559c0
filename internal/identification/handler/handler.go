// Package handler wires the identification endpoints to the repository.
// It owns parameter validation and error-to-status translation; business
// rules live in the service package.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/httputil"
)

// Service defines the repository operations the handler depends on.
type Service interface {
	List(ctx context.Context, page, pageSize int, filter models.ListFilter) ([]models.Identification, uint64, error)
	Get(ctx context.Context, id string) (*models.Identification, error)
	Create(ctx context.Context, in models.CreateIdentification) (*models.Identification, error)
	Update(ctx context.Context, id string, in models.UpdateIdentification) (*models.Identification, error)
	Delete(ctx context.Context, id string) error
}

// Handler is the thin HTTP layer over the identification repository.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an identification handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the identification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/identifications", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleList handles GET /api/identifications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	page, pageSize, filter, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, total, err := h.service.List(ctx, page, pageSize, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list identifications failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identifications listed",
		"page", page,
		"page_size", pageSize,
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, models.NewPage(records, total, page, pageSize))
}

// HandleGet handles GET /api/identifications/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleCreate handles POST /api/identifications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, ok := httputil.Decode[models.CreateIdentification](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.Create(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "create identification failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// HandleUpdate handles PUT /api/identifications/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	in, ok := httputil.Decode[models.UpdateIdentification](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.Update(ctx, id, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "update identification failed", "internal_key", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleDelete handles DELETE /api/identifications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
