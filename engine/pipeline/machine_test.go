package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func loggedGap() models.Gap {
	return Log(LogInput{
		Title:           "No MFA on admin accounts",
		Description:     "Admin console reachable with password only",
		SourceSafeguard: "CIS 6.5",
	}, now)
}

func triagedGap(t *testing.T) models.Gap {
	t.Helper()
	gap, err := Triage(loggedGap(), TriageInput{
		TargetType:  models.ObjectTypeControl,
		Owner:       "iam-team",
		Criticality: models.CriticalityHigh,
	}, now)
	require.NoError(t, err)
	return gap
}

func TestLog_SeedsHistory(t *testing.T) {
	gap := loggedGap()

	assert.False(t, gap.Triaged)
	assert.Equal(t, models.GapStatusOpen, gap.Status)
	require.Len(t, gap.History, 1)
	assert.Equal(t, models.HistoryCreated, gap.History[0].Label)
	assert.Equal(t, "CIS 6.5", gap.SourceSafeguard)
}

func TestTriage_ScenarioD(t *testing.T) {
	gap := loggedGap()

	// Missing owner: rejected, state unchanged.
	_, err := Triage(gap, TriageInput{
		TargetType:  models.ObjectTypeControl,
		Criticality: models.CriticalityHigh,
	}, now)
	require.ErrorIs(t, err, ErrMissingOwner)
	assert.False(t, gap.Triaged)
	assert.Len(t, gap.History, 1)

	// Owner supplied: triaged, one new history entry, status still Open.
	out, err := Triage(gap, TriageInput{
		TargetType:  models.ObjectTypeControl,
		Owner:       "iam-team",
		Criticality: models.CriticalityHigh,
	}, now)
	require.NoError(t, err)
	assert.True(t, out.Triaged)
	assert.Equal(t, models.GapStatusOpen, out.Status)
	require.Len(t, out.History, 2)
	assert.Equal(t, models.HistoryTriaged, out.History[1].Label)

	// Input untouched.
	assert.False(t, gap.Triaged)
}

func TestTriage_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		in   TriageInput
		want error
	}{
		{"missing target", TriageInput{Owner: "x", Criticality: models.CriticalityLow}, ErrMissingTarget},
		{"invalid target", TriageInput{TargetType: "Widget", Owner: "x", Criticality: models.CriticalityLow}, ErrMissingTarget},
		{"blank owner", TriageInput{TargetType: models.ObjectTypeProcess, Owner: "  ", Criticality: models.CriticalityLow}, ErrMissingOwner},
		{"missing criticality", TriageInput{TargetType: models.ObjectTypeProcess, Owner: "x"}, ErrMissingCriticality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Triage(loggedGap(), tt.in, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTriage_Idempotence(t *testing.T) {
	gap := triagedGap(t)

	_, err := Triage(gap, TriageInput{
		TargetType:  models.ObjectTypeControl,
		Owner:       "someone-else",
		Criticality: models.CriticalityLow,
	}, now)
	assert.ErrorIs(t, err, ErrAlreadyTriaged)
}

func TestEnrich(t *testing.T) {
	gap := loggedGap()
	num, den := 3, 4
	family := "identity"

	out, err := Enrich(gap, EnrichInput{
		ProductFamily:  &family,
		KPINumerator:   &num,
		KPIDenominator: &den,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "identity", out.ProductFamily)
	assert.Equal(t, 75.0, out.CompliancePercent)
	assert.False(t, out.Triaged, "enrich never changes triaged")
	assert.Equal(t, gap.Status, out.Status, "enrich never changes status")
	assert.Equal(t, models.HistoryEnriched, out.History[len(out.History)-1].Label)
}

func TestEnrich_RejectsInvalidKPI(t *testing.T) {
	gap := loggedGap()
	num, den := 5, 4

	_, err := Enrich(gap, EnrichInput{KPINumerator: &num, KPIDenominator: &den}, now)
	assert.ErrorIs(t, err, ErrInvalidKPI)
	assert.Len(t, gap.History, 1, "rejected transition leaves no trace")
}

func TestSetStatus(t *testing.T) {
	gap := triagedGap(t)

	t.Run("forward to in progress", func(t *testing.T) {
		out, err := SetStatus(gap, models.GapStatusInProgress, "work started", now)
		require.NoError(t, err)
		assert.Equal(t, models.GapStatusInProgress, out.Status)
		assert.Equal(t, "In Progress: work started", out.History[len(out.History)-1].Note)
	})

	t.Run("close without note synthesizes one", func(t *testing.T) {
		out, err := SetStatus(gap, models.GapStatusClosed, "", now)
		require.NoError(t, err)
		assert.Equal(t, "Closed: Closed without promotion", out.History[len(out.History)-1].Note)
	})

	t.Run("backward move rejected", func(t *testing.T) {
		closed, err := SetStatus(gap, models.GapStatusClosed, "", now)
		require.NoError(t, err)
		_, err = SetStatus(closed, models.GapStatusOpen, "", now)
		assert.ErrorIs(t, err, ErrStatusBackward)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := SetStatus(gap, models.GapStatus("Parked"), "", now)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestReopen(t *testing.T) {
	gap := triagedGap(t)

	_, err := Reopen(gap, "second look", now)
	assert.ErrorIs(t, err, ErrGapNotClosed)

	closed, err := SetStatus(gap, models.GapStatusClosed, "", now)
	require.NoError(t, err)

	reopened, err := Reopen(closed, "regression found", now)
	require.NoError(t, err)
	assert.Equal(t, models.GapStatusOpen, reopened.Status)
	assert.True(t, reopened.Triaged, "reopening never clears triaged")
	assert.Equal(t, models.HistoryReopened, reopened.History[len(reopened.History)-1].Label)
}

func TestPromote_ScenarioE(t *testing.T) {
	gap := triagedGap(t)

	closed, object, err := Promote(gap, now)
	require.NoError(t, err)

	assert.Equal(t, models.GapStatusClosed, closed.Status)
	assert.Contains(t, closed.History[len(closed.History)-1].Note, object.Name)

	require.NotEmpty(t, object.History)
	assert.Equal(t, models.HistoryPromoted, object.History[0].Label)
	assert.Equal(t, gap.Title, object.Name)
	assert.Equal(t, models.ObjectTypeControl, object.Type)
	assert.Equal(t, models.HealthBlue, object.Health, "promoted objects start unassessed")
	assert.Equal(t, models.CriticalityHigh, object.Criticality)
}

func TestPromote_Preconditions(t *testing.T) {
	t.Run("untriaged gap rejected", func(t *testing.T) {
		_, _, err := Promote(loggedGap(), now)
		assert.ErrorIs(t, err, ErrNotTriaged)
	})

	t.Run("closed gap rejected", func(t *testing.T) {
		closed, err := SetStatus(triagedGap(t), models.GapStatusClosed, "", now)
		require.NoError(t, err)
		_, _, err = Promote(closed, now)
		assert.ErrorIs(t, err, ErrGapClosed)
	})
}

func TestTriagedMonotonic(t *testing.T) {
	gap := triagedGap(t)

	desc := "updated"
	enriched, err := Enrich(gap, EnrichInput{Description: &desc}, now)
	require.NoError(t, err)
	assert.True(t, enriched.Triaged)

	inProgress, err := SetStatus(enriched, models.GapStatusInProgress, "", now)
	require.NoError(t, err)
	assert.True(t, inProgress.Triaged)

	closed, err := SetStatus(inProgress, models.GapStatusClosed, "", now)
	require.NoError(t, err)
	assert.True(t, closed.Triaged)

	reopened, err := Reopen(closed, "", now)
	require.NoError(t, err)
	assert.True(t, reopened.Triaged)
}
