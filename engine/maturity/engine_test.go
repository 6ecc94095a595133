package maturity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

func TestChecklist_Shape(t *testing.T) {
	phases := Checklist()
	require.Len(t, phases, 4)

	total := 0
	gatekeepers := 0
	for i, phase := range phases {
		require.NotEmpty(t, phase.Checkpoints)
		assert.GreaterOrEqual(t, len(phase.Checkpoints), 4)
		assert.LessOrEqual(t, len(phase.Checkpoints), 5)
		total += len(phase.Checkpoints)
		for _, cp := range phase.Checkpoints {
			if cp.Gatekeeper {
				gatekeepers++
				assert.Equal(t, 0, i, "gatekeepers live in phase 1 only")
			}
		}
	}

	assert.Equal(t, MaxScore, total)
	assert.Equal(t, 3, gatekeepers)
}

func TestAutoDerive(t *testing.T) {
	t.Run("nil object derives nothing", func(t *testing.T) {
		assert.Empty(t, AutoDerive(nil))
	})

	t.Run("attributes derive phase 1 answers", func(t *testing.T) {
		obj := &models.TrackedObject{
			ReviewCadence: "monthly",
			Owner:         "grc-team",
			Description:   "Quarterly access review for production systems",
		}
		derived := AutoDerive(obj)
		assert.Equal(t, models.AnswerYes, derived[CheckpointCadence])
		assert.Equal(t, models.AnswerYes, derived[CheckpointOwnership])
		assert.Equal(t, models.AnswerYes, derived[CheckpointScope])
	})

	t.Run("blank attributes derive nothing", func(t *testing.T) {
		obj := &models.TrackedObject{Owner: "   "}
		assert.Empty(t, AutoDerive(obj))
	})
}

func TestMerge_ExplicitOverridesDerived(t *testing.T) {
	auto := models.MLGAssessment{
		CheckpointCadence:   models.AnswerYes,
		CheckpointOwnership: models.AnswerYes,
	}
	explicit := models.MLGAssessment{
		CheckpointCadence: models.AnswerNo,
		"gap_logging":     models.AnswerWeak,
	}

	merged := Merge(auto, explicit)

	assert.Equal(t, models.AnswerNo, merged[CheckpointCadence])
	assert.Equal(t, models.AnswerYes, merged[CheckpointOwnership])
	assert.Equal(t, models.AnswerWeak, merged["gap_logging"])

	// Inputs untouched.
	assert.Equal(t, models.AnswerYes, auto[CheckpointCadence])
}

func TestUnlocked(t *testing.T) {
	allPassing := models.MLGAssessment{
		CheckpointCadence:        models.AnswerYes,
		CheckpointHealthCriteria: models.AnswerWeak,
		CheckpointOwnership:      models.AnswerYes,
	}
	assert.True(t, Unlocked(allPassing))

	// Flipping any one gatekeeper to "no" flips the predicate.
	for _, id := range gatekeeperIDs {
		broken := allPassing.Clone()
		broken[id] = models.AnswerNo
		assert.False(t, Unlocked(broken), "gatekeeper %s", id)
	}

	assert.False(t, Unlocked(models.MLGAssessment{}))
}

func TestScore_Range(t *testing.T) {
	assert.Equal(t, 0.0, Score(models.MLGAssessment{}))

	all := models.MLGAssessment{}
	for _, phase := range Checklist() {
		for _, cp := range phase.Checkpoints {
			all[cp.ID] = models.AnswerYes
		}
	}
	assert.Equal(t, 20.0, Score(all))

	all[CheckpointCadence] = models.AnswerWeak
	assert.Equal(t, 19.5, Score(all))
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected Tier
	}{
		{20, TierMature},
		{16, TierMature},
		{15.5, TierAdequate},
		{11, TierAdequate},
		{10.5, TierDeveloping},
		{6, TierDeveloping},
		{5.5, TierDeficient},
		{0, TierDeficient},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TierFor(tt.score), "score %v", tt.score)
	}
}

func TestTierColors(t *testing.T) {
	assert.Equal(t, models.HealthBlue, TierMature.Color())
	assert.Equal(t, models.HealthGreen, TierAdequate.Color())
	assert.Equal(t, models.HealthAmber, TierDeveloping.Color())
	assert.Equal(t, models.HealthRed, TierDeficient.Color())
}

func TestEvaluate(t *testing.T) {
	obj := &models.TrackedObject{
		ReviewCadence: "monthly",
		Owner:         "grc-team",
		Description:   "documented",
	}

	t.Run("nil assessment still scores via auto-derivation", func(t *testing.T) {
		result := Evaluate(nil, obj)
		// cadence, ownership, scope auto-derived to yes.
		assert.Equal(t, 3.0, result.Score)
		assert.Equal(t, TierDeficient, result.Tier)
	})

	t.Run("gating locks later phases", func(t *testing.T) {
		// health_criteria unanswered, so gatekeepers fail.
		result := Evaluate(nil, obj)
		assert.False(t, result.Unlocked)
		require.Len(t, result.Phases, 4)
		assert.False(t, result.Phases[0].Locked, "phase 1 is never locked")
		for _, p := range result.Phases[1:] {
			assert.True(t, p.Locked)
		}
	})

	t.Run("gatekeepers passing unlocks later phases", func(t *testing.T) {
		assessment := models.MLGAssessment{
			CheckpointHealthCriteria: models.AnswerWeak,
		}
		result := Evaluate(assessment, obj)
		assert.True(t, result.Unlocked)
		for _, p := range result.Phases {
			assert.False(t, p.Locked)
		}
		assert.Equal(t, 3.5, result.Score)
	})

	t.Run("missing assessment and object scores zero", func(t *testing.T) {
		result := Evaluate(nil, nil)
		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, TierDeficient, result.Tier)
	})

	t.Run("unanswered checkpoints surface as no", func(t *testing.T) {
		result := Evaluate(nil, nil)
		assert.Equal(t, models.AnswerNo, result.Phases[3].Answers["automation"])
	})
}
