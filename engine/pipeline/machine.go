// Package pipeline implements the gap lifecycle state machine:
// Untriaged -> Triaged+Open -> Triaged+InProgress -> Closed, with an
// append-only audit trail on every transition. Every function is a pure
// transition over a copy of its input; validation failures reject the
// whole transition before any state changes.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

// Transition sentinel errors. Services wrap these into the domain error
// taxonomy; the engine itself stays dependency-free.
var (
	ErrAlreadyTriaged   = errors.New("gap already triaged")
	ErrNotTriaged       = errors.New("gap not yet triaged")
	ErrGapClosed        = errors.New("gap already closed")
	ErrGapNotClosed     = errors.New("gap is not closed")
	ErrStatusBackward   = errors.New("status cannot move backward")
	ErrMissingTarget    = errors.New("target type is required")
	ErrMissingOwner     = errors.New("owner is required")
	ErrMissingCriticality = errors.New("criticality is required")
	ErrInvalidStatus    = errors.New("unknown status")
	ErrInvalidKPI       = errors.New("kpi numerator exceeds denominator")
)

// LogInput seeds a new untriaged gap.
type LogInput struct {
	Title           string
	Description     string
	ProductFamily   string
	SourceSafeguard string
	LinkedObjectID  *uuid.UUID
}

// Log creates a gap in the Untriaged state with a seeded history entry.
func Log(in LogInput, now time.Time) models.Gap {
	gap := models.Gap{
		ID:              uuid.New(),
		Title:           in.Title,
		Description:     in.Description,
		ProductFamily:   in.ProductFamily,
		SourceSafeguard: in.SourceSafeguard,
		LinkedObjectID:  in.LinkedObjectID,
		Triaged:         false,
		Status:          models.GapStatusOpen,
		History: []models.HistoryEntry{
			models.NewHistoryEntry(models.HistoryCreated, "Gap logged", now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	gap.RecomputeDerived()
	return gap
}

// TriageInput carries the classification assigned at triage time.
type TriageInput struct {
	TargetType  models.ObjectType
	Owner       string
	Criticality models.Criticality

	// Optional type-specific details applied alongside triage.
	Description   string
	ProductFamily string
}

// Triage performs the one-way Untriaged -> Triaged transition. Required
// fields are checked before any mutation; re-triaging an already triaged
// gap is rejected rather than silently appended.
func Triage(gap models.Gap, in TriageInput, now time.Time) (models.Gap, error) {
	if gap.Triaged {
		return models.Gap{}, ErrAlreadyTriaged
	}
	if !in.TargetType.Valid() {
		return models.Gap{}, ErrMissingTarget
	}
	if strings.TrimSpace(in.Owner) == "" {
		return models.Gap{}, ErrMissingOwner
	}
	if !in.Criticality.Valid() {
		return models.Gap{}, ErrMissingCriticality
	}

	out := gap.Clone()
	out.Triaged = true
	out.TargetType = in.TargetType
	out.Owner = in.Owner
	out.Criticality = in.Criticality
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.ProductFamily != "" {
		out.ProductFamily = in.ProductFamily
	}
	out.UpdatedAt = now
	out.History = models.AppendHistory(out.History, models.NewHistoryEntry(
		models.HistoryTriaged,
		fmt.Sprintf("Triaged as %s, owner %s", in.TargetType, in.Owner),
		now,
	))
	return out, nil
}

// EnrichInput merges additional detail fields into a gap. Nil pointers
// leave the field untouched.
type EnrichInput struct {
	Title           *string
	Description     *string
	Owner           *string
	ProductFamily   *string
	SourceSafeguard *string
	KPINumerator    *int
	KPIDenominator  *int
	LinkedObjectID  *uuid.UUID
}

// Enrich merges detail fields without changing triaged or status. Valid
// pre- or post-triage.
func Enrich(gap models.Gap, in EnrichInput, now time.Time) (models.Gap, error) {
	out := gap.Clone()
	if in.Title != nil {
		out.Title = *in.Title
	}
	if in.Description != nil {
		out.Description = *in.Description
	}
	if in.Owner != nil {
		out.Owner = *in.Owner
	}
	if in.ProductFamily != nil {
		out.ProductFamily = *in.ProductFamily
	}
	if in.SourceSafeguard != nil {
		out.SourceSafeguard = *in.SourceSafeguard
	}
	if in.LinkedObjectID != nil {
		id := *in.LinkedObjectID
		out.LinkedObjectID = &id
	}
	if in.KPINumerator != nil {
		out.KPINumerator = *in.KPINumerator
	}
	if in.KPIDenominator != nil {
		out.KPIDenominator = *in.KPIDenominator
	}
	if out.KPINumerator < 0 || out.KPIDenominator < 0 || out.KPINumerator > out.KPIDenominator {
		return models.Gap{}, ErrInvalidKPI
	}
	out.RecomputeDerived()
	out.UpdatedAt = now
	out.History = models.AppendHistory(out.History, models.NewHistoryEntry(
		models.HistoryEnriched, "Details updated", now,
	))
	return out, nil
}

// SetStatus moves a gap forward through the workflow. Backward moves go
// through Reopen, never through this path. A close without an explicit
// note gets a synthesized one.
func SetStatus(gap models.Gap, status models.GapStatus, note string, now time.Time) (models.Gap, error) {
	if !status.Valid() {
		return models.Gap{}, ErrInvalidStatus
	}
	if status.Before(gap.Status) {
		return models.Gap{}, ErrStatusBackward
	}

	out := gap.Clone()
	out.Status = status
	if status == models.GapStatusClosed && strings.TrimSpace(note) == "" {
		note = "Closed without promotion"
	}
	out.UpdatedAt = now
	out.History = models.AppendHistory(out.History, models.NewHistoryEntry(
		models.HistoryStatusSet,
		statusNote(status, note),
		now,
	))
	return out, nil
}

// Reopen is the explicit Closed -> Open transition. Reopening is never a
// side effect of a generic field update.
func Reopen(gap models.Gap, note string, now time.Time) (models.Gap, error) {
	if gap.Status != models.GapStatusClosed {
		return models.Gap{}, ErrGapNotClosed
	}

	out := gap.Clone()
	out.Status = models.GapStatusOpen
	out.UpdatedAt = now
	out.History = models.AppendHistory(out.History, models.NewHistoryEntry(
		models.HistoryReopened, note, now,
	))
	return out, nil
}

// Promote closes a triaged, non-closed gap and creates the tracked
// object it graduates into, cross-linking both histories. The pair is
// returned together so the caller can apply both atomically.
func Promote(gap models.Gap, now time.Time) (models.Gap, models.TrackedObject, error) {
	if !gap.Triaged {
		return models.Gap{}, models.TrackedObject{}, ErrNotTriaged
	}
	if gap.Status == models.GapStatusClosed {
		return models.Gap{}, models.TrackedObject{}, ErrGapClosed
	}

	object := models.TrackedObject{
		ID:             uuid.New(),
		Name:           gap.Title,
		Description:    gap.Description,
		Type:           gap.TargetType,
		Criticality:    gap.Criticality,
		Health:         models.HealthBlue,
		Owner:          gap.Owner,
		KPINumerator:   gap.KPINumerator,
		KPIDenominator: gap.KPIDenominator,
		RemediationItems: []models.RemediationItem{},
		History: []models.HistoryEntry{
			models.NewHistoryEntry(
				models.HistoryPromoted,
				fmt.Sprintf("Promoted from gap %q", gap.Title),
				now,
			),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	object.RecomputeDerived()

	closed := gap.Clone()
	closed.Status = models.GapStatusClosed
	closed.UpdatedAt = now
	closed.History = models.AppendHistory(closed.History, models.NewHistoryEntry(
		models.HistoryStatusSet,
		fmt.Sprintf("Closed: promoted to %q", object.Name),
		now,
	))

	return closed, object, nil
}

func statusNote(status models.GapStatus, note string) string {
	if strings.TrimSpace(note) == "" {
		return string(status)
	}
	return fmt.Sprintf("%s: %s", status, note)
}
