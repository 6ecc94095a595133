package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/middleware"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/pipeline"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// SetStatusRequest carries a status transition for a gap
type SetStatusRequest struct {
	Status models.GapStatus `json:"status" validate:"required"`
	Note   string           `json:"note"`
}

// ReopenRequest carries the optional note for a reopen transition
type ReopenRequest struct {
	Note string `json:"note"`
}

// PromoteResponse pairs the closed gap with the object it became
type PromoteResponse struct {
	Gap    models.Gap           `json:"gap"`
	Object models.TrackedObject `json:"object"`
}

// GapHandler handles gap lifecycle HTTP requests
type GapHandler struct {
	pipeline *pipeline.Service
	logger   *zap.Logger
}

// NewGapHandler creates a new GapHandler
func NewGapHandler(p *pipeline.Service, logger *zap.Logger) *GapHandler {
	return &GapHandler{
		pipeline: p,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/gaps
func (h *GapHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	gaps := h.pipeline.List(ctx)

	h.logger.Debug("listed gaps",
		zap.String("request_id", requestID),
		zap.Int("count", len(gaps)))

	_ = utils.WriteOK(w, gaps)
}

// HandleGet handles GET /api/v1/gaps/{id}
func (h *GapHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	gap, err := h.pipeline.Get(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, gap)
}

// HandleLog handles POST /api/v1/gaps
func (h *GapHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req pipeline.LogGapInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	gap, err := h.pipeline.Log(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, gap)
}

// HandleTriage handles POST /api/v1/gaps/{id}/triage
func (h *GapHandler) HandleTriage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	var req pipeline.TriageInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	gap, err := h.pipeline.Triage(ctx, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, gap)
}

// HandleEnrich handles PATCH /api/v1/gaps/{id}
func (h *GapHandler) HandleEnrich(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	var req pipeline.EnrichInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	gap, err := h.pipeline.Enrich(ctx, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, gap)
}

// HandleSetStatus handles PUT /api/v1/gaps/{id}/status
func (h *GapHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	var req SetStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	gap, err := h.pipeline.SetStatus(ctx, id, req.Status, req.Note)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, gap)
}

// HandleReopen handles POST /api/v1/gaps/{id}/reopen
func (h *GapHandler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	var req ReopenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	gap, err := h.pipeline.Reopen(ctx, id, req.Note)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, gap)
}

// HandlePromote handles POST /api/v1/gaps/{id}/promote
func (h *GapHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	gap, object, err := h.pipeline.Promote(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("gap promoted via API",
		zap.String("request_id", requestID),
		zap.String("gap_id", gap.ID.String()),
		zap.String("object_id", object.ID.String()))

	_ = utils.WriteCreated(w, PromoteResponse{Gap: gap, Object: object})
}

// HandleDelete handles DELETE /api/v1/gaps/{id}
func (h *GapHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid gap ID format", nil)
		return
	}

	if err := h.pipeline.Delete(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
