package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ObjectType classifies what kind of governance artifact an object tracks.
type ObjectType string

const (
	ObjectTypeControl   ObjectType = "Control"
	ObjectTypeProcess   ObjectType = "Process"
	ObjectTypeProcedure ObjectType = "Procedure"
)

// Valid reports whether the object type is one of the known values.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectTypeControl, ObjectTypeProcess, ObjectTypeProcedure:
		return true
	}
	return false
}

// Criticality represents how important an object or gap is to the program.
type Criticality string

const (
	CriticalityLow      Criticality = "Low"
	CriticalityMedium   Criticality = "Medium"
	CriticalityHigh     Criticality = "High"
	CriticalityCritical Criticality = "Critical"
)

// Valid reports whether the criticality is one of the known values.
func (c Criticality) Valid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}

// Elevated reports whether the criticality demands the stricter posture
// tier thresholds.
func (c Criticality) Elevated() bool {
	return c == CriticalityHigh || c == CriticalityCritical
}

// HealthStatus is the operator-reported RAG(B) state of an object.
// BLUE means "not yet assessed" and is handled specially by the scorer.
type HealthStatus string

const (
	HealthRed   HealthStatus = "RED"
	HealthAmber HealthStatus = "AMBER"
	HealthGreen HealthStatus = "GREEN"
	HealthBlue  HealthStatus = "BLUE"
)

// Valid reports whether the health status is one of the known values.
func (h HealthStatus) Valid() bool {
	switch h {
	case HealthRed, HealthAmber, HealthGreen, HealthBlue:
		return true
	}
	return false
}

// ControlClassification distinguishes formally attested controls from
// informal ones. Only meaningful when ObjectType is Control.
type ControlClassification string

const (
	ClassificationFormal   ControlClassification = "Formal"
	ClassificationInformal ControlClassification = "Informal"
)

// RemediationItem is a unit of follow-up work attached to a tracked object.
type RemediationItem struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Owner       string     `json:"owner,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TrackedObject represents a control, process, or procedure under
// governance tracking.
type TrackedObject struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Type           ObjectType            `json:"type"`
	Criticality    Criticality           `json:"criticality"`
	Health         HealthStatus          `json:"health"`
	HealthRationale string               `json:"health_rationale,omitempty"`
	Classification ControlClassification `json:"classification,omitempty"`
	Owner          string                `json:"owner,omitempty"`
	Operator       string                `json:"operator,omitempty"`
	ProductFamily  string                `json:"product_family,omitempty"`
	ReviewCadence  string                `json:"review_cadence,omitempty"`
	LastReviewDate *time.Time            `json:"last_review_date,omitempty"`

	// KPI counters. CompliancePercent is derived from them on every
	// mutation and is never independently settable.
	KPINumerator      int     `json:"kpi_numerator"`
	KPIDenominator    int     `json:"kpi_denominator"`
	CompliancePercent float64 `json:"compliance_percent"`

	RemediationItems []RemediationItem `json:"remediation_items"`
	History          []HistoryEntry    `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompliancePercent derives the KPI compliance percentage from a
// numerator/denominator pair, rounded to one decimal place. A zero
// denominator yields 0, not an error.
func CompliancePercent(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(float64(numerator)/float64(denominator)*1000) / 10
}

// RecomputeDerived refreshes all derived fields from their sources.
func (o *TrackedObject) RecomputeDerived() {
	o.CompliancePercent = CompliancePercent(o.KPINumerator, o.KPIDenominator)
}

// Clone returns a deep copy of the object, including its history and
// remediation items, so transitions can modify the copy freely.
func (o TrackedObject) Clone() TrackedObject {
	out := o
	out.History = append([]HistoryEntry(nil), o.History...)
	out.RemediationItems = append([]RemediationItem(nil), o.RemediationItems...)
	if o.LastReviewDate != nil {
		d := *o.LastReviewDate
		out.LastReviewDate = &d
	}
	return out
}
