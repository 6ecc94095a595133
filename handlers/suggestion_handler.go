package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services"
	"github.com/cfjess012/cyber-spm-sub000/services/suggest"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// SuggestionHandler handles AI suggestion HTTP requests. When no
// provider is configured the endpoints report the feature as
// unavailable.
type SuggestionHandler struct {
	suggest *suggest.Service
	logger  *zap.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(s *suggest.Service, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggest: s,
		logger:  logger,
	}
}

// HandleSuggestClassification handles POST /api/v1/objects/{id}/suggestions/classification
func (h *SuggestionHandler) HandleSuggestClassification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.suggest == nil {
		HandleServiceError(w, services.ErrSuggestionUnavailable, h.logger)
		return
	}

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	suggestion, err := h.suggest.SuggestClassification(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, suggestion)
}

// HandleApplyClassification handles POST /api/v1/objects/{id}/suggestions/classification/apply
func (h *SuggestionHandler) HandleApplyClassification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.suggest == nil {
		HandleServiceError(w, services.ErrSuggestionUnavailable, h.logger)
		return
	}

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	var req models.ClassificationSuggestion
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	object, err := h.suggest.ApplyClassification(ctx, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, object)
}

// HandleSuggestChecklistAnswers handles POST /api/v1/objects/{id}/suggestions/checklist
func (h *SuggestionHandler) HandleSuggestChecklistAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.suggest == nil {
		HandleServiceError(w, services.ErrSuggestionUnavailable, h.logger)
		return
	}

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	suggestion, err := h.suggest.SuggestChecklistAnswers(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, suggestion)
}

// HandleApplyChecklistAnswers handles POST /api/v1/objects/{id}/suggestions/checklist/apply
func (h *SuggestionHandler) HandleApplyChecklistAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.suggest == nil {
		HandleServiceError(w, services.ErrSuggestionUnavailable, h.logger)
		return
	}

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	var req models.ChecklistAnswerSuggestion
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.suggest.ApplyChecklistAnswers(ctx, id, req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
