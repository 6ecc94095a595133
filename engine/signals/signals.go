// Package signals converts raw object attributes into normalized 0-100
// inputs for the posture scorer. Every extractor is a pure function and
// is total: well-typed input never produces an error, only a clamped
// numeric output.
package signals

import (
	"math"
	"time"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

// Severity penalty bases for the gap signal. The n-th open gap of a
// class contributes base/n, so repeated gaps of the same severity keep
// lowering the score with ever-smaller marginal impact.
const (
	gapPenaltyRed   = 30.0
	gapPenaltyAmber = 20.0
	gapPenaltyOther = 10.0
)

// Health maps a RAG(B) status to a signal value. BLUE scores 0 here but
// is additionally handled by the scorer's tier override; unknown values
// get a neutral 50.
func Health(status models.HealthStatus) float64 {
	switch status {
	case models.HealthGreen:
		return 100
	case models.HealthAmber:
		return 50
	case models.HealthRed:
		return 10
	case models.HealthBlue:
		return 0
	}
	return 50
}

// Coverage is the object's KPI compliance percentage, already 0-100.
func Coverage(o models.TrackedObject) float64 {
	return o.CompliancePercent
}

// freshnessBuckets are inclusive upper bounds in days, evaluated in
// ascending order, first match wins.
var freshnessBuckets = []struct {
	maxDays int
	value   float64
}{
	{30, 100},
	{60, 85},
	{90, 70},
	{120, 55},
	{180, 35},
}

// Freshness scores how recently the object was reviewed relative to now.
// A missing review date scores a neutral 50.
func Freshness(lastReview *time.Time, now time.Time) float64 {
	if lastReview == nil {
		return 50
	}
	days := int(now.Sub(*lastReview).Hours() / 24)
	for _, b := range freshnessBuckets {
		if days <= b.maxDays {
			return b.value
		}
	}
	return 10
}

// Gaps scores the open-gap load against an object. No gaps scores 100;
// otherwise each open gap contributes a diminishing penalty within its
// severity class and the result is clamped at 0.
func Gaps(openGaps []models.Gap) float64 {
	if len(openGaps) == 0 {
		return 100
	}

	counts := map[float64]int{}
	total := 0.0
	for _, g := range openGaps {
		base := gapPenaltyBase(g.Criticality)
		counts[base]++
		total += base / float64(counts[base])
	}

	signal := 100 - total
	if signal < 0 {
		signal = 0
	}
	return math.Round(signal)
}

func gapPenaltyBase(c models.Criticality) float64 {
	switch c {
	case models.CriticalityCritical:
		return gapPenaltyRed
	case models.CriticalityHigh:
		return gapPenaltyAmber
	}
	return gapPenaltyOther
}

// HarmonicPenalty returns the cumulative penalty for k gaps of one
// severity class: base * (1 + 1/2 + ... + 1/k). Exposed for the scorer's
// breakdown math and for tests.
func HarmonicPenalty(base float64, k int) float64 {
	total := 0.0
	for n := 1; n <= k; n++ {
		total += base / float64(n)
	}
	return total
}

// RescaleMaturity converts a 0-20 maturity score to the 0-100 signal
// range consumed by the posture scorer.
func RescaleMaturity(score float64) float64 {
	return score / 20 * 100
}
