package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfjess012/cyber-spm-sub000/engine/maturity"
	"github.com/cfjess012/cyber-spm-sub000/engine/posture"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services/registry"
	"github.com/cfjess012/cyber-spm-sub000/services/scoring"
)

func TestScoringHandler_Posture(t *testing.T) {
	env := newTestEnv(t)
	lastReview := time.Now().AddDate(0, 0, -7)
	obj := env.createObject(t, registry.CreateObjectInput{
		Name:           "Privileged Access Review",
		Type:           models.ObjectTypeControl,
		Criticality:    models.CriticalityHigh,
		Health:         models.HealthGreen,
		KPINumerator:   10,
		KPIDenominator: 10,
		LastReviewDate: &lastReview,
	})

	t.Run("returns score with full breakdown", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/objects/"+obj.ID.String()+"/posture", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var result posture.Result
		decodeData(t, rr, &result)
		assert.Equal(t, 85, result.Score)
		assert.Equal(t, posture.TierHealthy, result.Tier)
		assert.Len(t, result.Breakdown, 5)
		assert.Equal(t, 0, result.ClassificationAdjustment)
	})

	t.Run("unknown object returns 404", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/objects/"+uuid.New().String()+"/posture", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestScoringHandler_Assessment(t *testing.T) {
	env := newTestEnv(t)
	obj := env.createObject(t, validCreateInput())

	t.Run("records answers and returns refreshed report", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/objects/"+obj.ID.String()+"/assessment", RecordAnswersRequest{
			Answers: map[string]models.Answer{
				"cadence":         models.AnswerYes,
				"health_criteria": models.AnswerYes,
				"baseline":        models.AnswerWeak,
			},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var report maturity.Result
		decodeData(t, rr, &report)
		assert.Greater(t, report.Score, 0.0)
		assert.Equal(t, 20.0, report.Max)
	})

	t.Run("empty answers returns 422", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/objects/"+obj.ID.String()+"/assessment", map[string]interface{}{
			"answers": map[string]string{},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("unknown checkpoint returns 422", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/objects/"+obj.ID.String()+"/assessment", RecordAnswersRequest{
			Answers: map[string]models.Answer{"made_up": models.AnswerYes},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("maturity report readable separately", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/objects/"+obj.ID.String()+"/maturity", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var report maturity.Result
		decodeData(t, rr, &report)
		assert.Len(t, report.Phases, 4)
	})
}

func TestScoringHandler_Checklist(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/maturity/checklist", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var phases []maturity.Phase
	decodeData(t, rr, &phases)
	require.Len(t, phases, 4)
	assert.Equal(t, "foundation", phases[0].ID)
	assert.Len(t, phases[0].Checkpoints, 5)
}

func TestScoringHandler_Portfolio(t *testing.T) {
	env := newTestEnv(t)

	t.Run("empty portfolio", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/portfolio", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary scoring.PortfolioSummary
		decodeData(t, rr, &summary)
		assert.Equal(t, 0, summary.Objects)
	})

	t.Run("aggregates created objects", func(t *testing.T) {
		env.createObject(t, validCreateInput())

		rr := env.do(t, http.MethodGet, "/portfolio", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary scoring.PortfolioSummary
		decodeData(t, rr, &summary)
		assert.Equal(t, 1, summary.Objects)
		assert.NotEmpty(t, summary.Tiers)
	})
}
