package models

// SuggestionKind tags which AI suggestion payload a response carries.
type SuggestionKind string

const (
	SuggestionKindClassification  SuggestionKind = "classification"
	SuggestionKindChecklistAnswers SuggestionKind = "checklist_answers"
)

// ClassificationSuggestion is a validated AI proposal for a control's
// classification. The engine only ever consumes these structured values;
// parsing the provider's free text happens outside the engine.
type ClassificationSuggestion struct {
	Classification ControlClassification `json:"classification" validate:"required,oneof=Formal Informal"`
	Confidence     float64               `json:"confidence" validate:"gte=0,lte=1"`
	Rationale      string                `json:"rationale,omitempty"`
}

// ChecklistAnswerSuggestion is a validated AI proposal for maturity
// checkpoint answers. Only checkpoints present in the map are applied.
type ChecklistAnswerSuggestion struct {
	Answers    map[string]Answer `json:"answers" validate:"required,min=1"`
	Confidence float64           `json:"confidence" validate:"gte=0,lte=1"`
	Rationale  string            `json:"rationale,omitempty"`
}
