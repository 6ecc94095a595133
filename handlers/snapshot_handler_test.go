package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/pipeline"
)

func TestSnapshotHandler_Export(t *testing.T) {
	env := newTestEnv(t)
	env.createObject(t, validCreateInput())
	env.logGap(t, pipeline.LogGapInput{Title: "Exportable gap"})

	rr := env.do(t, http.MethodGet, "/snapshot/export", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "governance-snapshot.json")

	var snap models.Snapshot
	decodeData(t, rr, &snap)
	assert.Len(t, snap.Objects, 1)
	assert.Len(t, snap.Gaps, 1)
}

func TestSnapshotHandler_Import(t *testing.T) {
	t.Run("round trip restores state", func(t *testing.T) {
		source := newTestEnv(t)
		obj := source.createObject(t, validCreateInput())

		export := source.do(t, http.MethodGet, "/snapshot/export", nil)
		require.Equal(t, http.StatusOK, export.Code)

		var exported struct {
			Data models.Snapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(export.Body.Bytes(), &exported))

		target := newTestEnv(t)
		raw, err := json.Marshal(exported.Data)
		require.NoError(t, err)

		rr := importRaw(t, target, raw)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		check := target.do(t, http.MethodGet, "/objects/"+obj.ID.String(), nil)
		assert.Equal(t, http.StatusOK, check.Code)
	})

	t.Run("empty body returns 400", func(t *testing.T) {
		env := newTestEnv(t)
		rr := importRaw(t, env, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-JSON body returns 400", func(t *testing.T) {
		env := newTestEnv(t)
		rr := importRaw(t, env, []byte("definitely not json"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		// State is untouched after a rejected import.
		list := env.do(t, http.MethodGet, "/objects", nil)
		assert.Equal(t, http.StatusOK, list.Code)
	})
}

func importRaw(t *testing.T, env *testEnv, raw []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/snapshot/import", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}
