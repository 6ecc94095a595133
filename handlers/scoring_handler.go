package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/engine/maturity"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/scoring"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// RecordAnswersRequest carries explicit checkpoint answers
type RecordAnswersRequest struct {
	Answers map[string]models.Answer `json:"answers" validate:"required,min=1"`
}

// ScoringHandler handles posture and maturity HTTP requests
type ScoringHandler struct {
	scoring *scoring.Service
	logger  *zap.Logger
}

// NewScoringHandler creates a new ScoringHandler
func NewScoringHandler(sc *scoring.Service, logger *zap.Logger) *ScoringHandler {
	return &ScoringHandler{
		scoring: sc,
		logger:  logger,
	}
}

// HandleGetPosture handles GET /api/v1/objects/{id}/posture
func (h *ScoringHandler) HandleGetPosture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	result, err := h.scoring.ObjectPosture(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleGetMaturity handles GET /api/v1/objects/{id}/maturity
func (h *ScoringHandler) HandleGetMaturity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	result, err := h.scoring.MaturityReport(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, result)
}

// HandleRecordAnswers handles PUT /api/v1/objects/{id}/assessment
func (h *ScoringHandler) HandleRecordAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	var req RecordAnswersRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.scoring.RecordAnswers(ctx, id, req.Answers); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	// Return the refreshed report so clients see the effect immediately
	report, err := h.scoring.MaturityReport(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, report)
}

// HandleGetChecklist handles GET /api/v1/maturity/checklist
func (h *ScoringHandler) HandleGetChecklist(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, maturity.Checklist())
}

// HandleGetPortfolio handles GET /api/v1/portfolio
func (h *ScoringHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary := h.scoring.Portfolio(ctx)
	_ = utils.WriteOK(w, summary)
}
