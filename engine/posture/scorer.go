// Package posture combines the five normalized signals into a single
// 0-100 score and a discrete tier, adjusted by classification and
// criticality.
package posture

import (
	"math"
	"time"

	"github.com/cfjess012/cyber-spm-sub000/engine/maturity"
	"github.com/cfjess012/cyber-spm-sub000/engine/signals"
	"github.com/cfjess012/cyber-spm-sub000/models"
)

// Tier is the discrete posture classification.
type Tier string

const (
	TierHealthy  Tier = "Healthy"
	TierAtRisk   Tier = "At Risk"
	TierCritical Tier = "Critical"
	// TierNew is the onboarding tier forced by a BLUE health status,
	// bypassing the numeric thresholds entirely.
	TierNew Tier = "New"
)

// Signal names used as breakdown keys.
const (
	SignalHealth    = "health"
	SignalCoverage  = "coverage"
	SignalFreshness = "freshness"
	SignalGaps      = "gaps"
	SignalMaturity  = "maturity"
)

// Fixed signal weights; they sum to 1.
var weights = map[string]float64{
	SignalHealth:    0.25,
	SignalCoverage:  0.25,
	SignalFreshness: 0.15,
	SignalGaps:      0.20,
	SignalMaturity:  0.15,
}

var signalLabels = map[string]string{
	SignalHealth:    "Health status",
	SignalCoverage:  "KPI coverage",
	SignalFreshness: "Review freshness",
	SignalGaps:      "Open gap load",
	SignalMaturity:  "Maturity",
}

// SignalBreakdown records one signal's contribution to the total, with
// enough detail to reconstruct the score independently.
type SignalBreakdown struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Weighted float64 `json:"weighted"`
	Max      float64 `json:"max"`
}

// Result is the scorer's full output.
type Result struct {
	Score                    int                        `json:"score"`
	Tier                     Tier                       `json:"tier"`
	Breakdown                map[string]SignalBreakdown `json:"breakdown"`
	ClassificationAdjustment int                        `json:"classification_adjustment"`
}

// Inputs carries the collections consulted alongside the object itself.
type Inputs struct {
	OpenGaps   []models.Gap
	Assessment models.MLGAssessment
	Now        time.Time
}

// Compute scores one tracked object. It is total: any well-typed input
// yields a clamped integer score and a tier, never an error.
func Compute(object models.TrackedObject, in Inputs) Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	values := map[string]float64{
		SignalHealth:    signals.Health(object.Health),
		SignalCoverage:  signals.Coverage(object),
		SignalFreshness: signals.Freshness(object.LastReviewDate, now),
		SignalGaps:      signals.Gaps(in.OpenGaps),
		SignalMaturity:  maturitySignal(in.Assessment, &object),
	}

	breakdown := make(map[string]SignalBreakdown, len(values))
	total := 0.0
	for name, value := range values {
		weighted := round1(value * weights[name])
		total += weighted
		breakdown[name] = SignalBreakdown{
			Label:    signalLabels[name],
			Value:    value,
			Weighted: weighted,
			Max:      round1(100 * weights[name]),
		}
	}

	adjustment := 0
	if object.Type == models.ObjectTypeControl && object.Classification == models.ClassificationInformal {
		adjustment = int(math.Round(total * 0.05))
	}

	score := int(math.Round(total)) - adjustment
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:                    score,
		Tier:                     tierFor(object, score),
		Breakdown:                breakdown,
		ClassificationAdjustment: adjustment,
	}
}

// maturitySignal rescales the diagnostic's 0-20 score to the 0-100
// signal range. With neither an assessment nor an object to derive
// from, the signal is a neutral 50.
func maturitySignal(assessment models.MLGAssessment, object *models.TrackedObject) float64 {
	if assessment == nil && object == nil {
		return 50
	}
	result := maturity.Evaluate(assessment, object)
	return signals.RescaleMaturity(result.Score)
}

// tierFor selects the tier. BLUE health always yields New; otherwise
// thresholds depend on criticality, compared with >=, Healthy first.
func tierFor(object models.TrackedObject, score int) Tier {
	if object.Health == models.HealthBlue {
		return TierNew
	}

	healthy, atRisk := 65, 35
	if object.Criticality.Elevated() {
		healthy, atRisk = 75, 45
	}

	switch {
	case score >= healthy:
		return TierHealthy
	case score >= atRisk:
		return TierAtRisk
	}
	return TierCritical
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
