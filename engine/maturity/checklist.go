// Package maturity implements the staged maturity diagnostic: an
// ordered four-phase checklist scored per tracked object, with
// auto-derived Phase-1 defaults and gatekeeper-based phase gating.
package maturity

// Checkpoint IDs referenced by auto-derivation and gating.
const (
	CheckpointCadence        = "cadence"
	CheckpointHealthCriteria = "health_criteria"
	CheckpointOwnership      = "ownership"
	CheckpointScope          = "scope"
)

// Checkpoint is a single yes/weak/no question within a phase.
type Checkpoint struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Gatekeeper bool   `json:"gatekeeper,omitempty"`
}

// Phase is an ordered group of checkpoints.
type Phase struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Checklist returns the fixed four-phase diagnostic checklist. Phase 1
// carries the three gatekeeper checkpoints whose joint yes/weak status
// unlocks interpretation of the later phases.
func Checklist() []Phase {
	return []Phase{
		{
			ID:   "foundation",
			Name: "Foundation",
			Checkpoints: []Checkpoint{
				{ID: CheckpointCadence, Prompt: "Review cadence established", Gatekeeper: true},
				{ID: CheckpointHealthCriteria, Prompt: "Health criteria defined", Gatekeeper: true},
				{ID: CheckpointOwnership, Prompt: "Ownership documented", Gatekeeper: true},
				{ID: CheckpointScope, Prompt: "Scope and purpose described"},
				{ID: "baseline", Prompt: "Current-state baseline captured"},
			},
		},
		{
			ID:   "action",
			Name: "Action",
			Checkpoints: []Checkpoint{
				{ID: "gap_logging", Prompt: "Gaps logged as they are found"},
				{ID: "remediation_planning", Prompt: "Remediation items planned with owners"},
				{ID: "kpi_defined", Prompt: "KPI numerator and denominator defined"},
				{ID: "review_meetings", Prompt: "Reviews held on the stated cadence"},
				{ID: "escalation_path", Prompt: "Escalation path agreed"},
			},
		},
		{
			ID:   "controls",
			Name: "Controls",
			Checkpoints: []Checkpoint{
				{ID: "control_mapping", Prompt: "Mapped to framework controls"},
				{ID: "evidence_capture", Prompt: "Evidence captured at review time"},
				{ID: "testing_schedule", Prompt: "Operating effectiveness tested on a schedule"},
				{ID: "exception_handling", Prompt: "Exceptions tracked to closure"},
				{ID: "classification_reviewed", Prompt: "Formal/informal classification reviewed"},
			},
		},
		{
			ID:   "maturity",
			Name: "Maturity",
			Checkpoints: []Checkpoint{
				{ID: "trend_analysis", Prompt: "Posture trends analysed over time"},
				{ID: "automation", Prompt: "Evidence collection automated where possible"},
				{ID: "benchmarking", Prompt: "Benchmarked against peers or standards"},
				{ID: "continuous_improvement", Prompt: "Improvement actions fed back into the checklist"},
				{ID: "leadership_reporting", Prompt: "Reported to leadership on a cycle"},
			},
		},
	}
}

// MaxScore is the highest achievable total: one point per checkpoint.
const MaxScore = 20

// gatekeeperIDs lists the Phase-1 checkpoints that gate phases 2-4.
var gatekeeperIDs = []string{CheckpointCadence, CheckpointHealthCriteria, CheckpointOwnership}
