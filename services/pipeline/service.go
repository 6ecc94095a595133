// Package pipeline orchestrates the gap lifecycle over the snapshot
// store, mapping the engine's transition errors into the domain error
// taxonomy.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	enginepipeline "github.com/cfjess012/cyber-spm-sub000/engine/pipeline"
	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
)

// Service handles gap lifecycle operations.
type Service struct {
	store  *snapshot.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new pipeline service.
func NewService(store *snapshot.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// LogGapInput seeds a new untriaged gap.
type LogGapInput struct {
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	ProductFamily   string     `json:"product_family"`
	SourceSafeguard string     `json:"source_safeguard"`
	LinkedObjectID  *uuid.UUID `json:"linked_object_id,omitempty"`
}

// TriageInput carries the classification assigned at triage.
type TriageInput struct {
	TargetType    models.ObjectType  `json:"target_type" validate:"required,oneof=Control Process Procedure"`
	Owner         string             `json:"owner" validate:"required"`
	Criticality   models.Criticality `json:"criticality" validate:"required,oneof=Low Medium High Critical"`
	Description   string             `json:"description"`
	ProductFamily string             `json:"product_family"`
}

// List returns all gaps.
func (s *Service) List(ctx context.Context) []models.Gap {
	return s.store.View().Gaps
}

// Get returns one gap by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Gap, error) {
	snap := s.store.View()
	gap := snap.FindGap(id)
	if gap == nil {
		return models.Gap{}, services.ErrGapNotFound
	}
	return *gap, nil
}

// Log creates a gap in the Untriaged state.
func (s *Service) Log(ctx context.Context, in LogGapInput) (models.Gap, error) {
	now := s.now()

	// Logged gaps can only link to objects that exist.
	var created models.Gap
	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		if in.LinkedObjectID != nil && snap.FindObject(*in.LinkedObjectID) == nil {
			return models.Snapshot{}, services.ErrObjectNotFound
		}
		created = enginepipeline.Log(enginepipeline.LogInput{
			Title:           in.Title,
			Description:     in.Description,
			ProductFamily:   in.ProductFamily,
			SourceSafeguard: in.SourceSafeguard,
			LinkedObjectID:  in.LinkedObjectID,
		}, now)
		snap.Gaps = append(snap.Gaps, created)
		return snap, nil
	})
	if err != nil {
		return models.Gap{}, err
	}

	s.logger.Info("gap logged", zap.String("gap_id", created.ID.String()))
	return created, nil
}

// Triage performs the one-way triage transition.
func (s *Service) Triage(ctx context.Context, id uuid.UUID, in TriageInput) (models.Gap, error) {
	gap, err := s.transition(id, func(g models.Gap) (models.Gap, error) {
		return enginepipeline.Triage(g, enginepipeline.TriageInput{
			TargetType:    in.TargetType,
			Owner:         in.Owner,
			Criticality:   in.Criticality,
			Description:   in.Description,
			ProductFamily: in.ProductFamily,
		}, s.now())
	})
	if err != nil {
		return models.Gap{}, err
	}

	s.logger.Info("gap triaged",
		zap.String("gap_id", id.String()),
		zap.String("owner", in.Owner))
	return gap, nil
}

// EnrichInput mirrors the engine's enrich fields.
type EnrichInput struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Owner           *string    `json:"owner,omitempty"`
	ProductFamily   *string    `json:"product_family,omitempty"`
	SourceSafeguard *string    `json:"source_safeguard,omitempty"`
	KPINumerator    *int       `json:"kpi_numerator,omitempty" validate:"omitempty,gte=0"`
	KPIDenominator  *int       `json:"kpi_denominator,omitempty" validate:"omitempty,gte=0"`
	LinkedObjectID  *uuid.UUID `json:"linked_object_id,omitempty"`
}

// Enrich merges additional detail fields pre- or post-triage.
func (s *Service) Enrich(ctx context.Context, id uuid.UUID, in EnrichInput) (models.Gap, error) {
	return s.transition(id, func(g models.Gap) (models.Gap, error) {
		return enginepipeline.Enrich(g, enginepipeline.EnrichInput{
			Title:           in.Title,
			Description:     in.Description,
			Owner:           in.Owner,
			ProductFamily:   in.ProductFamily,
			SourceSafeguard: in.SourceSafeguard,
			KPINumerator:    in.KPINumerator,
			KPIDenominator:  in.KPIDenominator,
			LinkedObjectID:  in.LinkedObjectID,
		}, s.now())
	})
}

// SetStatus moves a gap forward through the workflow.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status models.GapStatus, note string) (models.Gap, error) {
	gap, err := s.transition(id, func(g models.Gap) (models.Gap, error) {
		return enginepipeline.SetStatus(g, status, note, s.now())
	})
	if err != nil {
		return models.Gap{}, err
	}

	s.logger.Info("gap status changed",
		zap.String("gap_id", id.String()),
		zap.String("status", string(status)))
	return gap, nil
}

// Reopen is the explicit Closed -> Open transition.
func (s *Service) Reopen(ctx context.Context, id uuid.UUID, note string) (models.Gap, error) {
	gap, err := s.transition(id, func(g models.Gap) (models.Gap, error) {
		return enginepipeline.Reopen(g, note, s.now())
	})
	if err != nil {
		return models.Gap{}, err
	}

	s.logger.Info("gap reopened", zap.String("gap_id", id.String()))
	return gap, nil
}

// Promote closes a gap and creates the tracked object it graduates
// into. Both changes land in one snapshot transition, so the pair is
// atomic from the caller's perspective.
func (s *Service) Promote(ctx context.Context, id uuid.UUID) (models.Gap, models.TrackedObject, error) {
	now := s.now()
	var closedGap models.Gap
	var object models.TrackedObject

	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		gap := snap.FindGap(id)
		if gap == nil {
			return models.Snapshot{}, services.ErrGapNotFound
		}

		closed, obj, err := enginepipeline.Promote(*gap, now)
		if err != nil {
			return models.Snapshot{}, mapEngineError(err)
		}

		*gap = closed
		snap.Objects = append(snap.Objects, obj)
		closedGap = closed.Clone()
		object = obj.Clone()
		return snap, nil
	})
	if err != nil {
		return models.Gap{}, models.TrackedObject{}, err
	}

	s.logger.Info("gap promoted",
		zap.String("gap_id", id.String()),
		zap.String("object_id", object.ID.String()))
	return closedGap, object, nil
}

// Delete removes a gap outright, in any state. No audit record
// survives the removal.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		for i := range snap.Gaps {
			if snap.Gaps[i].ID == id {
				snap.Gaps = append(snap.Gaps[:i], snap.Gaps[i+1:]...)
				return snap, nil
			}
		}
		return models.Snapshot{}, services.ErrGapNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("gap deleted", zap.String("gap_id", id.String()))
	return nil
}

// transition applies a single-gap engine transition within a snapshot
// command.
func (s *Service) transition(id uuid.UUID, fn func(models.Gap) (models.Gap, error)) (models.Gap, error) {
	var result models.Gap
	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		gap := snap.FindGap(id)
		if gap == nil {
			return models.Snapshot{}, services.ErrGapNotFound
		}
		next, err := fn(*gap)
		if err != nil {
			return models.Snapshot{}, mapEngineError(err)
		}
		*gap = next
		result = next.Clone()
		return snap, nil
	})
	if err != nil {
		return models.Gap{}, err
	}
	return result, nil
}

// mapEngineError translates the engine's sentinel errors into the
// domain taxonomy so callers can distinguish field-level validation
// from workflow rejections.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, enginepipeline.ErrAlreadyTriaged):
		return services.ErrAlreadyTriaged
	case errors.Is(err, enginepipeline.ErrNotTriaged):
		return services.ErrNotTriaged
	case errors.Is(err, enginepipeline.ErrGapClosed):
		return services.ErrGapClosed
	case errors.Is(err, enginepipeline.ErrGapNotClosed):
		return services.ErrGapNotClosed
	case errors.Is(err, enginepipeline.ErrStatusBackward):
		return services.ErrStatusBackward
	case errors.Is(err, enginepipeline.ErrInvalidStatus):
		return services.NewValidationError(err.Error(), map[string]string{"status": err.Error()})
	case errors.Is(err, enginepipeline.ErrMissingTarget):
		return services.NewValidationError("triage rejected", map[string]string{"target_type": err.Error()})
	case errors.Is(err, enginepipeline.ErrMissingOwner):
		return services.NewValidationError("triage rejected", map[string]string{"owner": err.Error()})
	case errors.Is(err, enginepipeline.ErrMissingCriticality):
		return services.NewValidationError("triage rejected", map[string]string{"criticality": err.Error()})
	case errors.Is(err, enginepipeline.ErrInvalidKPI):
		return services.ErrInvalidKPI
	}
	return services.WrapInternal("gap transition failed", err)
}
