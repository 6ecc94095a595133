// Package snapshot owns the persisted engine state: loading and
// migrating the versioned blob, and applying pure transitions to the
// in-memory current snapshot with best-effort persistence.
package snapshot

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

// legacyGap decodes a gap while distinguishing an absent triaged flag
// from an explicit false. Older snapshots predate the flag entirely.
type legacyGap struct {
	models.Gap
	TriagedFlag *bool `json:"triaged"`
}

type legacySnapshot struct {
	Version     int                                 `json:"version"`
	Objects     []models.TrackedObject              `json:"objects"`
	Gaps        []legacyGap                         `json:"gaps"`
	Assessments map[uuid.UUID]models.MLGAssessment  `json:"assessments"`
}

// Load decodes and migrates a raw snapshot blob. An unparseable blob
// falls back to a blank snapshot rather than failing hard.
func Load(raw []byte) models.Snapshot {
	if len(raw) == 0 {
		return models.NewSnapshot()
	}

	var legacy legacySnapshot
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return models.NewSnapshot()
	}

	snap := models.Snapshot{
		Version:     legacy.Version,
		Objects:     legacy.Objects,
		Gaps:        make([]models.Gap, 0, len(legacy.Gaps)),
		Assessments: legacy.Assessments,
	}
	for _, lg := range legacy.Gaps {
		gap := lg.Gap
		// Legacy data predating the triage pipeline is assumed triaged.
		gap.Triaged = lg.TriagedFlag == nil || *lg.TriagedFlag
		snap.Gaps = append(snap.Gaps, gap)
	}

	return Migrate(snap)
}

// Migrate upgrades a snapshot to the current schema. It is idempotent:
// migrating an already-migrated snapshot is a no-op.
func Migrate(snap models.Snapshot) models.Snapshot {
	// Clone normalizes missing top-level collections to empty ones.
	out := snap.Clone()
	out.Version = models.SnapshotVersion

	for i := range out.Objects {
		if out.Objects[i].RemediationItems == nil {
			out.Objects[i].RemediationItems = []models.RemediationItem{}
		}
		if out.Objects[i].History == nil {
			out.Objects[i].History = []models.HistoryEntry{}
		}
		out.Objects[i].RecomputeDerived()
	}

	for i := range out.Gaps {
		gap := &out.Gaps[i]
		if gap.History == nil {
			gap.History = []models.HistoryEntry{}
		}
		backfillFromLinkedObject(gap, &out)
		gap.RecomputeDerived()
	}

	return out
}

// backfillFromLinkedObject infers missing pipeline fields on a gap from
// its previously-linked object, if any.
func backfillFromLinkedObject(gap *models.Gap, snap *models.Snapshot) {
	if gap.LinkedObjectID == nil {
		return
	}
	obj := snap.FindObject(*gap.LinkedObjectID)
	if obj == nil {
		return
	}
	if gap.ProductFamily == "" {
		gap.ProductFamily = obj.ProductFamily
	}
	if gap.TargetType == "" {
		gap.TargetType = obj.Type
	}
	if gap.Owner == "" {
		gap.Owner = obj.Owner
	}
	if gap.Criticality == "" {
		gap.Criticality = obj.Criticality
	}
}
