package models

import (
	"time"

	"github.com/google/uuid"
)

// GapStatus is the workflow state of a pipeline item.
type GapStatus string

const (
	GapStatusOpen       GapStatus = "Open"
	GapStatusInProgress GapStatus = "In Progress"
	GapStatusClosed     GapStatus = "Closed"
)

// Valid reports whether the gap status is one of the known values.
func (s GapStatus) Valid() bool {
	switch s {
	case GapStatusOpen, GapStatusInProgress, GapStatusClosed:
		return true
	}
	return false
}

// rank orders statuses for the forward-only transition rule.
func (s GapStatus) rank() int {
	switch s {
	case GapStatusOpen:
		return 0
	case GapStatusInProgress:
		return 1
	case GapStatusClosed:
		return 2
	}
	return -1
}

// Before reports whether s comes strictly earlier in the workflow than other.
func (s GapStatus) Before(other GapStatus) bool {
	return s.rank() < other.rank()
}

// Gap is an intake item working toward either closure or promotion into
// a full TrackedObject.
type Gap struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`

	// Triaged is one-way: once true it never reverts to false.
	Triaged     bool        `json:"triaged"`
	Status      GapStatus   `json:"status"`
	TargetType  ObjectType  `json:"target_type,omitempty"`
	Owner       string      `json:"owner,omitempty"`
	Criticality Criticality `json:"criticality,omitempty"`

	KPINumerator      int     `json:"kpi_numerator"`
	KPIDenominator    int     `json:"kpi_denominator"`
	CompliancePercent float64 `json:"compliance_percent"`

	ProductFamily   string     `json:"product_family,omitempty"`
	SourceSafeguard string     `json:"source_safeguard,omitempty"`
	LinkedObjectID  *uuid.UUID `json:"linked_object_id,omitempty"`

	History []HistoryEntry `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeDerived refreshes all derived fields from their sources.
func (g *Gap) RecomputeDerived() {
	g.CompliancePercent = CompliancePercent(g.KPINumerator, g.KPIDenominator)
}

// Open reports whether the gap still counts against its linked object's
// gap signal.
func (g Gap) Open() bool {
	return g.Status != GapStatusClosed
}

// Clone returns a deep copy of the gap.
func (g Gap) Clone() Gap {
	out := g
	out.History = append([]HistoryEntry(nil), g.History...)
	if g.LinkedObjectID != nil {
		id := *g.LinkedObjectID
		out.LinkedObjectID = &id
	}
	return out
}
