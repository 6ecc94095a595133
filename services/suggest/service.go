// Package suggest is the boundary to the external AI suggestion
// collaborator. Providers return already-structured payloads; this
// service validates them and applies accepted values through the normal
// update and assessment transitions, never as an in-flight mutation.
package suggest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services"
	"github.com/cfjess012/cyber-spm-sub000/services/registry"
	"github.com/cfjess012/cyber-spm-sub000/services/scoring"
	"github.com/cfjess012/cyber-spm-sub000/utils"
)

// EntitySummary is the request payload sent to a provider: a compact
// description of the entity plus the task kind.
type EntitySummary struct {
	Kind        models.SuggestionKind `json:"kind"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Type        models.ObjectType     `json:"type,omitempty"`
	Criticality models.Criticality    `json:"criticality,omitempty"`
}

// Provider is the opaque external collaborator. Implementations own all
// prompt construction and free-text parsing; the engine only ever sees
// the structured result.
type Provider interface {
	SuggestClassification(ctx context.Context, summary EntitySummary) (*models.ClassificationSuggestion, error)
	SuggestChecklistAnswers(ctx context.Context, summary EntitySummary) (*models.ChecklistAnswerSuggestion, error)
}

// Service validates provider output and applies accepted suggestions.
type Service struct {
	provider Provider
	registry *registry.Service
	scoring  *scoring.Service
	logger   *zap.Logger
}

// NewService creates a new suggestion service.
func NewService(provider Provider, reg *registry.Service, sc *scoring.Service, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		registry: reg,
		scoring:  sc,
		logger:   logger,
	}
}

// SuggestClassification asks the provider for a classification proposal
// for one object. The result is validated but NOT applied; applying is
// a separate, explicit call once the user accepts.
func (s *Service) SuggestClassification(ctx context.Context, objectID uuid.UUID) (*models.ClassificationSuggestion, error) {
	obj, err := s.registry.Get(ctx, objectID)
	if err != nil {
		return nil, err
	}

	suggestion, err := s.provider.SuggestClassification(ctx, summarize(models.SuggestionKindClassification, obj))
	if err != nil {
		return nil, services.WrapExternal("classification suggestion failed", err)
	}
	if err := utils.ValidateStruct(suggestion); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "suggestion payload failed validation", err)
	}

	s.logger.Info("classification suggested",
		zap.String("object_id", objectID.String()),
		zap.String("classification", string(suggestion.Classification)),
		zap.Float64("confidence", suggestion.Confidence))
	return suggestion, nil
}

// ApplyClassification applies an accepted classification suggestion
// through the normal object update path.
func (s *Service) ApplyClassification(ctx context.Context, objectID uuid.UUID, suggestion models.ClassificationSuggestion) (models.TrackedObject, error) {
	if err := utils.ValidateStruct(&suggestion); err != nil {
		return models.TrackedObject{}, services.NewDomainError(services.ErrorTypeValidation, "suggestion payload failed validation", err)
	}

	classification := suggestion.Classification
	return s.registry.Update(ctx, objectID, registry.UpdateObjectInput{
		Classification: &classification,
	})
}

// SuggestChecklistAnswers asks the provider for maturity checkpoint
// answers for one object.
func (s *Service) SuggestChecklistAnswers(ctx context.Context, objectID uuid.UUID) (*models.ChecklistAnswerSuggestion, error) {
	obj, err := s.registry.Get(ctx, objectID)
	if err != nil {
		return nil, err
	}

	suggestion, err := s.provider.SuggestChecklistAnswers(ctx, summarize(models.SuggestionKindChecklistAnswers, obj))
	if err != nil {
		return nil, services.WrapExternal("checklist suggestion failed", err)
	}
	if err := utils.ValidateStruct(suggestion); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "suggestion payload failed validation", err)
	}

	s.logger.Info("checklist answers suggested",
		zap.String("object_id", objectID.String()),
		zap.Int("count", len(suggestion.Answers)))
	return suggestion, nil
}

// ApplyChecklistAnswers applies accepted answers through the normal
// assessment path; checkpoint and answer validation happen there.
func (s *Service) ApplyChecklistAnswers(ctx context.Context, objectID uuid.UUID, suggestion models.ChecklistAnswerSuggestion) error {
	if err := utils.ValidateStruct(&suggestion); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation, "suggestion payload failed validation", err)
	}
	return s.scoring.RecordAnswers(ctx, objectID, suggestion.Answers)
}

func summarize(kind models.SuggestionKind, obj models.TrackedObject) EntitySummary {
	return EntitySummary{
		Kind:        kind,
		Name:        obj.Name,
		Description: obj.Description,
		Type:        obj.Type,
		Criticality: obj.Criticality,
	}
}
