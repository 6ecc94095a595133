package maturity

import (
	"strings"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

// Tier is the discrete maturity classification derived from the total
// score.
type Tier string

const (
	TierMature     Tier = "Mature"
	TierAdequate   Tier = "Adequate"
	TierDeveloping Tier = "Developing"
	TierDeficient  Tier = "Deficient"
)

// Color returns the RAG(B) color conventionally shown for the tier.
func (t Tier) Color() models.HealthStatus {
	switch t {
	case TierMature:
		return models.HealthBlue
	case TierAdequate:
		return models.HealthGreen
	case TierDeveloping:
		return models.HealthAmber
	}
	return models.HealthRed
}

// PhaseResult is the scored outcome of one checklist phase.
type PhaseResult struct {
	ID      string                   `json:"id"`
	Name    string                   `json:"name"`
	Score   float64                  `json:"score"`
	Max     float64                  `json:"max"`
	Locked  bool                     `json:"locked"`
	Answers map[string]models.Answer `json:"answers"`
}

// Result is the full outcome of a diagnostic run.
type Result struct {
	Score    float64       `json:"score"`
	Max      float64       `json:"max"`
	Tier     Tier          `json:"tier"`
	Unlocked bool          `json:"unlocked"`
	Phases   []PhaseResult `json:"phases"`
}

// AutoDerive computes the Phase-1 answers implied by the object's own
// attributes. These form the base layer of the merged answer set;
// explicitly recorded answers override them per checkpoint.
func AutoDerive(object *models.TrackedObject) models.MLGAssessment {
	derived := models.MLGAssessment{}
	if object == nil {
		return derived
	}
	if strings.TrimSpace(object.ReviewCadence) != "" {
		derived[CheckpointCadence] = models.AnswerYes
	}
	if strings.TrimSpace(object.Owner) != "" {
		derived[CheckpointOwnership] = models.AnswerYes
	}
	if strings.TrimSpace(object.Description) != "" {
		derived[CheckpointScope] = models.AnswerYes
	}
	return derived
}

// Merge layers explicit answers over auto-derived ones. The override
// wins per checkpoint; neither input map is mutated.
func Merge(autoDerived, explicit models.MLGAssessment) models.MLGAssessment {
	merged := make(models.MLGAssessment, len(autoDerived)+len(explicit))
	for k, v := range autoDerived {
		merged[k] = v
	}
	for k, v := range explicit {
		merged[k] = v
	}
	return merged
}

// Unlocked reports whether all three Phase-1 gatekeeper checkpoints
// resolve to yes or weak in the merged answer set. It gates how phases
// 2-4 are interpreted downstream; it never prevents answers from being
// recorded.
func Unlocked(merged models.MLGAssessment) bool {
	for _, id := range gatekeeperIDs {
		if !merged[id].Passing() {
			return false
		}
	}
	return true
}

// Score sums checkpoint points over the merged answer set: yes = 1,
// weak = 0.5, no or unanswered = 0. Range [0, 20].
func Score(merged models.MLGAssessment) float64 {
	total := 0.0
	for _, phase := range Checklist() {
		for _, cp := range phase.Checkpoints {
			total += merged[cp.ID].Points()
		}
	}
	return total
}

// TierFor maps a total score to its tier. Boundaries are inclusive
// lower bounds, evaluated in descending order.
func TierFor(score float64) Tier {
	switch {
	case score >= 16:
		return TierMature
	case score >= 11:
		return TierAdequate
	case score >= 6:
		return TierDeveloping
	}
	return TierDeficient
}

// Evaluate runs the full diagnostic for one object: merge auto-derived
// and explicit answers, score every phase, and compute gating and tier.
// A nil assessment is treated as all-"no" except where auto-derivation
// applies.
func Evaluate(assessment models.MLGAssessment, object *models.TrackedObject) Result {
	merged := Merge(AutoDerive(object), assessment)
	unlocked := Unlocked(merged)

	result := Result{
		Max:      MaxScore,
		Unlocked: unlocked,
	}

	for i, phase := range Checklist() {
		pr := PhaseResult{
			ID:      phase.ID,
			Name:    phase.Name,
			Max:     float64(len(phase.Checkpoints)),
			Locked:  i > 0 && !unlocked,
			Answers: make(map[string]models.Answer, len(phase.Checkpoints)),
		}
		for _, cp := range phase.Checkpoints {
			answer := merged[cp.ID]
			if answer == "" {
				answer = models.AnswerNo
			}
			pr.Answers[cp.ID] = answer
			pr.Score += merged[cp.ID].Points()
		}
		result.Score += pr.Score
		result.Phases = append(result.Phases, pr)
	}

	result.Tier = TierFor(result.Score)
	return result
}
