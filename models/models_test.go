package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompliancePercent(t *testing.T) {
	tests := []struct {
		name        string
		numerator   int
		denominator int
		expected    float64
	}{
		{"zero denominator", 5, 0, 0},
		{"full compliance", 10, 10, 100},
		{"zero numerator", 0, 10, 0},
		{"two thirds", 2, 3, 66.7},
		{"one third", 1, 3, 33.3},
		{"one sixth", 1, 6, 16.7},
		{"seven of nine", 7, 9, 77.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompliancePercent(tt.numerator, tt.denominator))
		})
	}
}

func TestAppendHistory_DoesNotMutateInput(t *testing.T) {
	base := []HistoryEntry{
		{Label: HistoryCreated, Timestamp: time.Now()},
	}

	// Force spare capacity so a naive append would write into the
	// shared backing array.
	base = append(make([]HistoryEntry, 0, 4), base...)

	first := AppendHistory(base, HistoryEntry{Label: HistoryUpdated, Note: "a"})
	second := AppendHistory(base, HistoryEntry{Label: HistoryUpdated, Note: "b"})

	require.Len(t, base, 1)
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.Equal(t, "a", first[1].Note)
	assert.Equal(t, "b", second[1].Note)
}

func TestAnswerPoints(t *testing.T) {
	assert.Equal(t, 1.0, AnswerYes.Points())
	assert.Equal(t, 0.5, AnswerWeak.Points())
	assert.Equal(t, 0.0, AnswerNo.Points())
	assert.Equal(t, 0.0, Answer("").Points())
}

func TestAnswerPassing(t *testing.T) {
	assert.True(t, AnswerYes.Passing())
	assert.True(t, AnswerWeak.Passing())
	assert.False(t, AnswerNo.Passing())
	assert.False(t, Answer("").Passing())
}

func TestGapStatusBefore(t *testing.T) {
	assert.True(t, GapStatusOpen.Before(GapStatusInProgress))
	assert.True(t, GapStatusInProgress.Before(GapStatusClosed))
	assert.False(t, GapStatusClosed.Before(GapStatusOpen))
	assert.False(t, GapStatusOpen.Before(GapStatusOpen))
}

func TestSnapshotClone_IsDeep(t *testing.T) {
	objID := uuid.New()
	gapID := uuid.New()

	snap := NewSnapshot()
	snap.Objects = append(snap.Objects, TrackedObject{
		ID:      objID,
		Name:    "Access Review",
		Type:    ObjectTypeControl,
		History: []HistoryEntry{{Label: HistoryCreated}},
	})
	snap.Gaps = append(snap.Gaps, Gap{
		ID:             gapID,
		Title:          "Missing MFA",
		Status:         GapStatusOpen,
		LinkedObjectID: &objID,
		History:        []HistoryEntry{{Label: HistoryCreated}},
	})
	snap.Assessments[objID] = MLGAssessment{"cadence": AnswerYes}

	clone := snap.Clone()
	clone.Objects[0].Name = "changed"
	clone.Objects[0].History = AppendHistory(clone.Objects[0].History, HistoryEntry{Label: HistoryUpdated})
	clone.Gaps[0].Status = GapStatusClosed
	clone.Assessments[objID]["cadence"] = AnswerNo

	assert.Equal(t, "Access Review", snap.Objects[0].Name)
	assert.Len(t, snap.Objects[0].History, 1)
	assert.Equal(t, GapStatusOpen, snap.Gaps[0].Status)
	assert.Equal(t, AnswerYes, snap.Assessments[objID]["cadence"])
}

func TestSnapshotOpenGapsFor(t *testing.T) {
	objID := uuid.New()
	other := uuid.New()

	snap := NewSnapshot()
	snap.Gaps = []Gap{
		{ID: uuid.New(), LinkedObjectID: &objID, Status: GapStatusOpen},
		{ID: uuid.New(), LinkedObjectID: &objID, Status: GapStatusClosed},
		{ID: uuid.New(), LinkedObjectID: &other, Status: GapStatusOpen},
		{ID: uuid.New(), Status: GapStatusOpen},
	}

	open := snap.OpenGapsFor(objID)
	require.Len(t, open, 1)
	assert.Equal(t, objID, *open[0].LinkedObjectID)
}
