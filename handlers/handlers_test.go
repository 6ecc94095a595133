package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/pipeline"
	"github.com/cfjess012/cyber-spm-sub000/services/registry"
	"github.com/cfjess012/cyber-spm-sub000/services/scoring"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
)

// nopRepo keeps store state in memory only for tests
type nopRepo struct{}

func (nopRepo) LoadLatest(context.Context) ([]byte, error) { return nil, nil }
func (nopRepo) Save(context.Context, int, []byte) error    { return nil }

// testEnv wires the handlers over an in-memory store with the same
// paths the production router uses.
type testEnv struct {
	store    *snapshot.Store
	registry *registry.Service
	pipeline *pipeline.Service
	scoring  *scoring.Service
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := snapshot.NewStore(nopRepo{}, logger)
	reg := registry.NewService(store, logger)
	pipe := pipeline.NewService(store, logger)
	sc := scoring.NewService(store, logger)

	objectHandler := NewObjectHandler(reg, logger)
	gapHandler := NewGapHandler(pipe, logger)
	scoringHandler := NewScoringHandler(sc, logger)
	snapshotHandler := NewSnapshotHandler(store, logger)

	r := chi.NewRouter()
	r.Route("/objects", func(r chi.Router) {
		r.Get("/", objectHandler.HandleList)
		r.Post("/", objectHandler.HandleCreate)
		r.Get("/{id}", objectHandler.HandleGet)
		r.Put("/{id}", objectHandler.HandleUpdate)
		r.Delete("/{id}", objectHandler.HandleDelete)
		r.Post("/{id}/remediation-items", objectHandler.HandleAddRemediationItem)
		r.Post("/{id}/remediation-items/{itemID}/complete", objectHandler.HandleCompleteRemediationItem)
		r.Get("/{id}/posture", scoringHandler.HandleGetPosture)
		r.Get("/{id}/maturity", scoringHandler.HandleGetMaturity)
		r.Put("/{id}/assessment", scoringHandler.HandleRecordAnswers)
	})
	r.Route("/gaps", func(r chi.Router) {
		r.Get("/", gapHandler.HandleList)
		r.Post("/", gapHandler.HandleLog)
		r.Get("/{id}", gapHandler.HandleGet)
		r.Patch("/{id}", gapHandler.HandleEnrich)
		r.Delete("/{id}", gapHandler.HandleDelete)
		r.Post("/{id}/triage", gapHandler.HandleTriage)
		r.Put("/{id}/status", gapHandler.HandleSetStatus)
		r.Post("/{id}/reopen", gapHandler.HandleReopen)
		r.Post("/{id}/promote", gapHandler.HandlePromote)
	})
	r.Get("/portfolio", scoringHandler.HandleGetPortfolio)
	r.Get("/maturity/checklist", scoringHandler.HandleGetChecklist)
	r.Get("/snapshot/export", snapshotHandler.HandleExport)
	r.Post("/snapshot/import", snapshotHandler.HandleImport)

	return &testEnv{
		store:    store,
		registry: reg,
		pipeline: pipe,
		scoring:  sc,
		router:   r,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// decodeData unwraps the {"data": ...} success envelope.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (e *testEnv) createObject(t *testing.T, in registry.CreateObjectInput) models.TrackedObject {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/objects", in)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var obj models.TrackedObject
	decodeData(t, rr, &obj)
	return obj
}

func (e *testEnv) logGap(t *testing.T, in pipeline.LogGapInput) models.Gap {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/gaps", in)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var gap models.Gap
	decodeData(t, rr, &gap)
	return gap
}
