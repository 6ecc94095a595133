package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/middleware"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// maxImportBytes caps snapshot import payloads.
const maxImportBytes = 32 << 20

// SnapshotHandler handles whole-snapshot export and import
type SnapshotHandler struct {
	store  *snapshot.Store
	logger *zap.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(store *snapshot.Store, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		store:  store,
		logger: logger,
	}
}

// HandleExport handles GET /api/v1/snapshot/export
func (h *SnapshotHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	snap := h.store.View()

	w.Header().Set("Content-Disposition", `attachment; filename="governance-snapshot.json"`)
	_ = utils.WriteJSON(w, http.StatusOK, snap)
}

// HandleImport handles POST /api/v1/snapshot/import. The uploaded blob
// runs through legacy decoding and migration before replacing the
// current snapshot.
func (h *SnapshotHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Failed to read request body", nil)
		return
	}
	if len(raw) == 0 || !json.Valid(raw) {
		_ = utils.WriteBadRequest(w, "Body must be a JSON snapshot", nil)
		return
	}

	imported := h.store.Replace(snapshot.Load(raw))

	h.logger.Info("snapshot imported",
		zap.String("request_id", requestID),
		zap.Int("objects", len(imported.Objects)),
		zap.Int("gaps", len(imported.Gaps)))

	_ = utils.WriteOK(w, imported)
}
