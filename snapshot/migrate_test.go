package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfjess012/cyber-spm-sub000/models"
)

func TestLoad_EmptyAndGarbage(t *testing.T) {
	t.Run("empty blob yields blank snapshot", func(t *testing.T) {
		snap := Load(nil)
		assert.Equal(t, models.SnapshotVersion, snap.Version)
		assert.Empty(t, snap.Objects)
		assert.Empty(t, snap.Gaps)
		assert.NotNil(t, snap.Assessments)
	})

	t.Run("unparseable blob falls back blank", func(t *testing.T) {
		snap := Load([]byte(`{"objects": [{]`))
		assert.Equal(t, models.SnapshotVersion, snap.Version)
		assert.Empty(t, snap.Objects)
	})
}

func TestLoad_LegacyTriagedAssumption(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"gaps": [
			{"id": "11111111-1111-4111-8111-111111111111", "title": "no flag", "status": "Open"},
			{"id": "22222222-2222-4222-8222-222222222222", "title": "explicit false", "status": "Open", "triaged": false},
			{"id": "33333333-3333-4333-8333-333333333333", "title": "explicit true", "status": "Open", "triaged": true}
		]
	}`)

	snap := Load(raw)
	require.Len(t, snap.Gaps, 3)
	assert.True(t, snap.Gaps[0].Triaged, "missing flag means legacy pre-triage data")
	assert.False(t, snap.Gaps[1].Triaged)
	assert.True(t, snap.Gaps[2].Triaged)
}

func TestMigrate_BackfillsFromLinkedObject(t *testing.T) {
	objID := uuid.New()
	snap := models.Snapshot{
		Version: 1,
		Objects: []models.TrackedObject{{
			ID:            objID,
			Name:          "Patch management",
			Type:          models.ObjectTypeProcess,
			Owner:         "ops",
			Criticality:   models.CriticalityHigh,
			ProductFamily: "endpoint",
		}},
		Gaps: []models.Gap{{
			ID:             uuid.New(),
			Title:          "Servers unpatched",
			Status:         models.GapStatusOpen,
			LinkedObjectID: &objID,
		}},
	}

	out := Migrate(snap)

	gap := out.Gaps[0]
	assert.Equal(t, "endpoint", gap.ProductFamily)
	assert.Equal(t, models.ObjectTypeProcess, gap.TargetType)
	assert.Equal(t, "ops", gap.Owner)
	assert.Equal(t, models.CriticalityHigh, gap.Criticality)
}

func TestMigrate_DoesNotOverwriteExistingFields(t *testing.T) {
	objID := uuid.New()
	snap := models.Snapshot{
		Objects: []models.TrackedObject{{ID: objID, Owner: "ops", ProductFamily: "endpoint"}},
		Gaps: []models.Gap{{
			ID:             uuid.New(),
			Owner:          "security",
			ProductFamily:  "identity",
			LinkedObjectID: &objID,
		}},
	}

	out := Migrate(snap)
	assert.Equal(t, "security", out.Gaps[0].Owner)
	assert.Equal(t, "identity", out.Gaps[0].ProductFamily)
}

func TestMigrate_InitializesCollectionsAndDerived(t *testing.T) {
	snap := models.Snapshot{
		Objects: []models.TrackedObject{{
			ID:             uuid.New(),
			KPINumerator:   1,
			KPIDenominator: 3,
			// stale derived value from an old snapshot
			CompliancePercent: 99,
		}},
	}

	out := Migrate(snap)

	require.Len(t, out.Objects, 1)
	assert.NotNil(t, out.Objects[0].RemediationItems)
	assert.NotNil(t, out.Objects[0].History)
	assert.Equal(t, 33.3, out.Objects[0].CompliancePercent)
	assert.NotNil(t, out.Gaps)
	assert.NotNil(t, out.Assessments)
	assert.Equal(t, models.SnapshotVersion, out.Version)
}

func TestMigrate_Idempotent(t *testing.T) {
	objID := uuid.New()
	snap := models.Snapshot{
		Version: 1,
		Objects: []models.TrackedObject{{
			ID: objID, Owner: "ops", Type: models.ObjectTypeControl,
			Criticality: models.CriticalityLow, ProductFamily: "network",
		}},
		Gaps: []models.Gap{{
			ID: uuid.New(), LinkedObjectID: &objID, Status: models.GapStatusOpen,
		}},
	}

	once := Migrate(snap)
	twice := Migrate(once)
	assert.Equal(t, once, twice)
}

func TestRoundTrip_ExportImportPreservesScoringFields(t *testing.T) {
	objID := uuid.New()
	snap := models.NewSnapshot()
	snap.Objects = append(snap.Objects, models.TrackedObject{
		ID:             objID,
		Name:           "Vendor review",
		Type:           models.ObjectTypeControl,
		Criticality:    models.CriticalityCritical,
		Health:         models.HealthAmber,
		Classification: models.ClassificationInformal,
		KPINumerator:   4,
		KPIDenominator: 5,
		Owner:          "grc",
		RemediationItems: []models.RemediationItem{},
		History:          []models.HistoryEntry{},
	})
	snap.Objects[0].RecomputeDerived()
	snap.Gaps = append(snap.Gaps, models.Gap{
		ID:             uuid.New(),
		Title:          "No SLA clause",
		Triaged:        true,
		Status:         models.GapStatusOpen,
		TargetType:     models.ObjectTypeControl,
		Owner:          "security",
		Criticality:    models.CriticalityHigh,
		LinkedObjectID: &objID,
		History:        []models.HistoryEntry{},
	})
	snap.Assessments[objID] = models.MLGAssessment{"cadence": models.AnswerYes, "ownership": models.AnswerWeak}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	loaded := Load(raw)
	assert.Equal(t, snap.Objects, loaded.Objects)
	assert.Equal(t, snap.Gaps, loaded.Gaps)
	assert.Equal(t, snap.Assessments, loaded.Assessments)
}
