package models

// Answer is the recorded response to one maturity checkpoint.
type Answer string

const (
	AnswerYes  Answer = "yes"
	AnswerWeak Answer = "weak"
	AnswerNo   Answer = "no"
)

// Valid reports whether the answer is one of the known values.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerWeak, AnswerNo:
		return true
	}
	return false
}

// Points returns the score contribution of the answer. Unanswered
// checkpoints score the same as an explicit "no".
func (a Answer) Points() float64 {
	switch a {
	case AnswerYes:
		return 1
	case AnswerWeak:
		return 0.5
	}
	return 0
}

// Passing reports whether the answer satisfies a gatekeeper checkpoint
// (yes or weak, not no).
func (a Answer) Passing() bool {
	return a == AnswerYes || a == AnswerWeak
}

// MLGAssessment maps checkpoint IDs to recorded answers for one tracked
// object. Absence of a checkpoint key is equivalent to "no" except where
// auto-derivation supplies a default.
type MLGAssessment map[string]Answer

// Clone returns a copy of the assessment.
func (a MLGAssessment) Clone() MLGAssessment {
	if a == nil {
		return nil
	}
	out := make(MLGAssessment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
