package models

import "github.com/google/uuid"

// SnapshotVersion is the current snapshot schema version. Loaded
// snapshots carrying an older version are upgraded by the migration
// step before use.
const SnapshotVersion = 3

// Snapshot is the complete persisted state of the engine: every tracked
// object, pipeline gap, and maturity assessment. It is serialized and
// stored as a single versioned blob.
type Snapshot struct {
	Version     int                         `json:"version"`
	Objects     []TrackedObject             `json:"objects"`
	Gaps        []Gap                       `json:"gaps"`
	Assessments map[uuid.UUID]MLGAssessment `json:"assessments"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() Snapshot {
	return Snapshot{
		Version:     SnapshotVersion,
		Objects:     []TrackedObject{},
		Gaps:        []Gap{},
		Assessments: map[uuid.UUID]MLGAssessment{},
	}
}

// Clone returns a deep copy of the snapshot. Transition functions
// operate on the copy so the caller's snapshot is never mutated.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Version:     s.Version,
		Objects:     make([]TrackedObject, 0, len(s.Objects)),
		Gaps:        make([]Gap, 0, len(s.Gaps)),
		Assessments: make(map[uuid.UUID]MLGAssessment, len(s.Assessments)),
	}
	for _, o := range s.Objects {
		out.Objects = append(out.Objects, o.Clone())
	}
	for _, g := range s.Gaps {
		out.Gaps = append(out.Gaps, g.Clone())
	}
	for id, a := range s.Assessments {
		out.Assessments[id] = a.Clone()
	}
	return out
}

// FindObject returns a pointer to the object with the given ID within
// the snapshot, or nil if absent.
func (s *Snapshot) FindObject(id uuid.UUID) *TrackedObject {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return &s.Objects[i]
		}
	}
	return nil
}

// FindGap returns a pointer to the gap with the given ID within the
// snapshot, or nil if absent.
func (s *Snapshot) FindGap(id uuid.UUID) *Gap {
	for i := range s.Gaps {
		if s.Gaps[i].ID == id {
			return &s.Gaps[i]
		}
	}
	return nil
}

// OpenGapsFor returns the non-closed gaps linked to the given object.
func (s *Snapshot) OpenGapsFor(objectID uuid.UUID) []Gap {
	var out []Gap
	for _, g := range s.Gaps {
		if g.LinkedObjectID != nil && *g.LinkedObjectID == objectID && g.Open() {
			out = append(out, g)
		}
	}
	return out
}
