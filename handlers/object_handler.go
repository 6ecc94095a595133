package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/middleware"
	"github.com/cfjess012/cyber-spm-sub000/services/registry"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// ObjectHandler handles tracked object HTTP requests
type ObjectHandler struct {
	registry *registry.Service
	logger   *zap.Logger
}

// NewObjectHandler creates a new ObjectHandler
func NewObjectHandler(reg *registry.Service, logger *zap.Logger) *ObjectHandler {
	return &ObjectHandler{
		registry: reg,
		logger:   logger,
	}
}

// HandleList handles GET /api/v1/objects
func (h *ObjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	objects := h.registry.List(ctx)

	h.logger.Debug("listed objects",
		zap.String("request_id", requestID),
		zap.Int("count", len(objects)))

	_ = utils.WriteOK(w, objects)
}

// HandleGet handles GET /api/v1/objects/{id}
func (h *ObjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	object, err := h.registry.Get(ctx, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, object)
}

// HandleCreate handles POST /api/v1/objects
func (h *ObjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req registry.CreateObjectInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	object, err := h.registry.Create(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("object created via API",
		zap.String("request_id", requestID),
		zap.String("object_id", object.ID.String()))

	_ = utils.WriteCreated(w, object)
}

// HandleUpdate handles PUT /api/v1/objects/{id}
func (h *ObjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	var req registry.UpdateObjectInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	object, err := h.registry.Update(ctx, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, object)
}

// HandleDelete handles DELETE /api/v1/objects/{id}
func (h *ObjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	if err := h.registry.Delete(ctx, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// HandleAddRemediationItem handles POST /api/v1/objects/{id}/remediation-items
func (h *ObjectHandler) HandleAddRemediationItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}

	var req registry.AddRemediationItemInput
	if err := decodeAndValidate(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	item, err := h.registry.AddRemediationItem(ctx, id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, item)
}

// HandleCompleteRemediationItem handles POST /api/v1/objects/{id}/remediation-items/{itemID}/complete
func (h *ObjectHandler) HandleCompleteRemediationItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid object ID format", nil)
		return
	}
	itemID, err := utils.ParseUUID(chi.URLParam(r, "itemID"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid item ID format", nil)
		return
	}

	if err := h.registry.CompleteRemediationItem(ctx, id, itemID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
