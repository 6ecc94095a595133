// Package scoring exposes posture and maturity reports computed over
// the current snapshot, and records maturity assessment answers.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/engine/maturity"
	"github.com/cfjess012/cyber-spm-sub000/engine/posture"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
)

// Service computes scores over the snapshot store.
type Service struct {
	store  *snapshot.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new scoring service.
func NewService(store *snapshot.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ObjectPosture scores one tracked object from the current snapshot.
func (s *Service) ObjectPosture(ctx context.Context, id uuid.UUID) (posture.Result, error) {
	snap := s.store.View()
	obj := snap.FindObject(id)
	if obj == nil {
		return posture.Result{}, services.ErrObjectNotFound
	}

	return posture.Compute(*obj, posture.Inputs{
		OpenGaps:   snap.OpenGapsFor(id),
		Assessment: snap.Assessments[id],
		Now:        s.now(),
	}), nil
}

// MaturityReport runs the diagnostic for one tracked object.
func (s *Service) MaturityReport(ctx context.Context, id uuid.UUID) (maturity.Result, error) {
	snap := s.store.View()
	obj := snap.FindObject(id)
	if obj == nil {
		return maturity.Result{}, services.ErrObjectNotFound
	}
	return maturity.Evaluate(snap.Assessments[id], obj), nil
}

// RecordAnswers upserts explicit checkpoint answers for an object.
// Unknown checkpoint IDs or answers reject the whole call before any
// state changes.
func (s *Service) RecordAnswers(ctx context.Context, id uuid.UUID, answers map[string]models.Answer) error {
	if len(answers) == 0 {
		return services.NewValidationError("no answers supplied", nil)
	}

	known := knownCheckpoints()
	for cpID, answer := range answers {
		if !known[cpID] {
			return services.NewValidationError("unknown checkpoint id", map[string]string{"checkpoint": cpID})
		}
		if !answer.Valid() {
			return services.NewValidationError("unknown answer value", map[string]string{cpID: string(answer)})
		}
	}

	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		if snap.FindObject(id) == nil {
			return models.Snapshot{}, services.ErrObjectNotFound
		}
		assessment := snap.Assessments[id]
		if assessment == nil {
			assessment = models.MLGAssessment{}
		}
		for cpID, answer := range answers {
			assessment[cpID] = answer
		}
		snap.Assessments[id] = assessment
		return snap, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("assessment answers recorded",
		zap.String("object_id", id.String()),
		zap.Int("count", len(answers)))
	return nil
}

// TierCount is one row of the portfolio summary.
type TierCount struct {
	Tier  posture.Tier `json:"tier"`
	Count int          `json:"count"`
}

// PortfolioSummary aggregates posture across every tracked object.
type PortfolioSummary struct {
	Objects   int         `json:"objects"`
	MeanScore float64     `json:"mean_score"`
	Tiers     []TierCount `json:"tiers"`
}

// Portfolio scores every object and aggregates tiers and mean score.
func (s *Service) Portfolio(ctx context.Context) PortfolioSummary {
	snap := s.store.View()
	now := s.now()

	summary := PortfolioSummary{Objects: len(snap.Objects)}
	counts := map[posture.Tier]int{}
	total := 0

	for _, obj := range snap.Objects {
		result := posture.Compute(obj, posture.Inputs{
			OpenGaps:   snap.OpenGapsFor(obj.ID),
			Assessment: snap.Assessments[obj.ID],
			Now:        now,
		})
		counts[result.Tier]++
		total += result.Score
	}

	for _, tier := range []posture.Tier{posture.TierHealthy, posture.TierAtRisk, posture.TierCritical, posture.TierNew} {
		if counts[tier] > 0 {
			summary.Tiers = append(summary.Tiers, TierCount{Tier: tier, Count: counts[tier]})
		}
	}
	if len(snap.Objects) > 0 {
		summary.MeanScore = math.Round(float64(total)/float64(len(snap.Objects))*10) / 10
	}
	return summary
}

func knownCheckpoints() map[string]bool {
	known := map[string]bool{}
	for _, phase := range maturity.Checklist() {
		for _, cp := range phase.Checkpoints {
			known[cp.ID] = true
		}
	}
	return known
}
