// Package registry manages the collection of tracked objects: creation,
// field updates with history diffing, remediation items, and deletion.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfjess012/cyber-spm-sub000/models"
	"github.com/cfjess012/cyber-spm-sub000/services"
	"github.com/cfjess012/cyber-spm-sub000/snapshot"
)

// Service handles tracked object operations over the snapshot store.
type Service struct {
	store  *snapshot.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new registry service.
func NewService(store *snapshot.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateObjectInput carries the fields for a new tracked object.
type CreateObjectInput struct {
	Name            string                       `json:"name" validate:"required"`
	Description     string                       `json:"description"`
	Type            models.ObjectType            `json:"type" validate:"required,oneof=Control Process Procedure"`
	Criticality     models.Criticality           `json:"criticality" validate:"required,oneof=Low Medium High Critical"`
	Health          models.HealthStatus          `json:"health" validate:"omitempty,oneof=RED AMBER GREEN BLUE"`
	HealthRationale string                       `json:"health_rationale"`
	Classification  models.ControlClassification `json:"classification" validate:"omitempty,oneof=Formal Informal"`
	Owner           string                       `json:"owner"`
	Operator        string                       `json:"operator"`
	ProductFamily   string                       `json:"product_family"`
	ReviewCadence   string                       `json:"review_cadence"`
	KPINumerator    int                          `json:"kpi_numerator" validate:"gte=0"`
	KPIDenominator  int                          `json:"kpi_denominator" validate:"gte=0"`
	LastReviewDate  *time.Time                   `json:"last_review_date"`
}

// UpdateObjectInput carries a partial update; nil fields stay untouched.
type UpdateObjectInput struct {
	Name            *string                       `json:"name,omitempty"`
	Description     *string                       `json:"description,omitempty"`
	Criticality     *models.Criticality           `json:"criticality,omitempty" validate:"omitempty,oneof=Low Medium High Critical"`
	Health          *models.HealthStatus          `json:"health,omitempty" validate:"omitempty,oneof=RED AMBER GREEN BLUE"`
	HealthRationale *string                       `json:"health_rationale,omitempty"`
	Classification  *models.ControlClassification `json:"classification,omitempty" validate:"omitempty,oneof=Formal Informal"`
	Owner           *string                       `json:"owner,omitempty"`
	Operator        *string                       `json:"operator,omitempty"`
	ProductFamily   *string                       `json:"product_family,omitempty"`
	ReviewCadence   *string                       `json:"review_cadence,omitempty"`
	KPINumerator    *int                          `json:"kpi_numerator,omitempty" validate:"omitempty,gte=0"`
	KPIDenominator  *int                          `json:"kpi_denominator,omitempty" validate:"omitempty,gte=0"`
	LastReviewDate  *time.Time                    `json:"last_review_date,omitempty"`
}

// List returns all tracked objects.
func (s *Service) List(ctx context.Context) []models.TrackedObject {
	return s.store.View().Objects
}

// Get returns one tracked object by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.TrackedObject, error) {
	snap := s.store.View()
	obj := snap.FindObject(id)
	if obj == nil {
		return models.TrackedObject{}, services.ErrObjectNotFound
	}
	return *obj, nil
}

// Create adds a new tracked object with a seeded "Created" history
// entry. All validation happens before any state mutation.
func (s *Service) Create(ctx context.Context, in CreateObjectInput) (models.TrackedObject, error) {
	if err := validateKPI(in.KPINumerator, in.KPIDenominator); err != nil {
		return models.TrackedObject{}, err
	}
	health := in.Health
	if health == "" {
		health = models.HealthBlue
	}
	if health == models.HealthRed && strings.TrimSpace(in.HealthRationale) == "" {
		return models.TrackedObject{}, services.ErrMissingRationale
	}

	now := s.now()
	object := models.TrackedObject{
		ID:              uuid.New(),
		Name:            in.Name,
		Description:     in.Description,
		Type:            in.Type,
		Criticality:     in.Criticality,
		Health:          health,
		HealthRationale: in.HealthRationale,
		Owner:           in.Owner,
		Operator:        in.Operator,
		ProductFamily:   in.ProductFamily,
		ReviewCadence:   in.ReviewCadence,
		KPINumerator:    in.KPINumerator,
		KPIDenominator:  in.KPIDenominator,
		LastReviewDate:  in.LastReviewDate,
		RemediationItems: []models.RemediationItem{},
		History: []models.HistoryEntry{
			models.NewHistoryEntry(models.HistoryCreated, "", now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type == models.ObjectTypeControl {
		object.Classification = in.Classification
	}
	object.RecomputeDerived()

	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		snap.Objects = append(snap.Objects, object)
		return snap, nil
	})
	if err != nil {
		return models.TrackedObject{}, err
	}

	s.logger.Info("object created",
		zap.String("object_id", object.ID.String()),
		zap.String("type", string(object.Type)))
	return object, nil
}

// Update applies a partial update, recomputes derived fields, and
// appends one history entry per tracked change (health, classification,
// owner/operator) with a generic "Updated" fallback.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateObjectInput) (models.TrackedObject, error) {
	now := s.now()
	var updated models.TrackedObject

	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		obj := snap.FindObject(id)
		if obj == nil {
			return models.Snapshot{}, services.ErrObjectNotFound
		}

		next := obj.Clone()
		applyPatch(&next, in)

		if err := validateKPI(next.KPINumerator, next.KPIDenominator); err != nil {
			return models.Snapshot{}, err
		}
		if next.Health == models.HealthRed && obj.Health != models.HealthRed &&
			strings.TrimSpace(next.HealthRationale) == "" {
			return models.Snapshot{}, services.ErrMissingRationale
		}

		next.RecomputeDerived()
		next.UpdatedAt = now
		next.History = appendDiffEntries(obj, &next, now)

		*obj = next
		updated = next.Clone()
		return snap, nil
	})
	if err != nil {
		return models.TrackedObject{}, err
	}

	s.logger.Info("object updated", zap.String("object_id", id.String()))
	return updated, nil
}

// Delete removes an object outright. There is no tombstone and no
// surviving audit record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		for i := range snap.Objects {
			if snap.Objects[i].ID == id {
				snap.Objects = append(snap.Objects[:i], snap.Objects[i+1:]...)
				delete(snap.Assessments, id)
				return snap, nil
			}
		}
		return models.Snapshot{}, services.ErrObjectNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("object deleted", zap.String("object_id", id.String()))
	return nil
}

// AddRemediationItemInput carries a new remediation item.
type AddRemediationItemInput struct {
	Title   string     `json:"title" validate:"required"`
	Owner   string     `json:"owner"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// AddRemediationItem attaches a remediation item to an object and
// records it in the object's history.
func (s *Service) AddRemediationItem(ctx context.Context, objectID uuid.UUID, in AddRemediationItemInput) (models.RemediationItem, error) {
	now := s.now()
	item := models.RemediationItem{
		ID:      uuid.New(),
		Title:   in.Title,
		Owner:   in.Owner,
		DueDate: in.DueDate,
	}

	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		obj := snap.FindObject(objectID)
		if obj == nil {
			return models.Snapshot{}, services.ErrObjectNotFound
		}
		obj.RemediationItems = append(obj.RemediationItems, item)
		obj.UpdatedAt = now
		obj.History = models.AppendHistory(obj.History, models.NewHistoryEntry(
			models.HistoryUpdated,
			fmt.Sprintf("Remediation item added: %s", in.Title),
			now,
		))
		return snap, nil
	})
	if err != nil {
		return models.RemediationItem{}, err
	}
	return item, nil
}

// CompleteRemediationItem marks a remediation item done and records it
// in the object's history.
func (s *Service) CompleteRemediationItem(ctx context.Context, objectID, itemID uuid.UUID) error {
	now := s.now()
	_, err := s.store.Apply(func(snap models.Snapshot) (models.Snapshot, error) {
		obj := snap.FindObject(objectID)
		if obj == nil {
			return models.Snapshot{}, services.ErrObjectNotFound
		}
		for i := range obj.RemediationItems {
			if obj.RemediationItems[i].ID == itemID {
				obj.RemediationItems[i].Completed = true
				completedAt := now
				obj.RemediationItems[i].CompletedAt = &completedAt
				obj.UpdatedAt = now
				obj.History = models.AppendHistory(obj.History, models.NewHistoryEntry(
					models.HistoryUpdated,
					fmt.Sprintf("Remediation item completed: %s", obj.RemediationItems[i].Title),
					now,
				))
				return snap, nil
			}
		}
		return models.Snapshot{}, services.ErrItemNotFound
	})
	return err
}

func applyPatch(obj *models.TrackedObject, in UpdateObjectInput) {
	if in.Name != nil {
		obj.Name = *in.Name
	}
	if in.Description != nil {
		obj.Description = *in.Description
	}
	if in.Criticality != nil {
		obj.Criticality = *in.Criticality
	}
	if in.Health != nil {
		obj.Health = *in.Health
	}
	if in.HealthRationale != nil {
		obj.HealthRationale = *in.HealthRationale
	}
	if in.Classification != nil && obj.Type == models.ObjectTypeControl {
		obj.Classification = *in.Classification
	}
	if in.Owner != nil {
		obj.Owner = *in.Owner
	}
	if in.Operator != nil {
		obj.Operator = *in.Operator
	}
	if in.ProductFamily != nil {
		obj.ProductFamily = *in.ProductFamily
	}
	if in.ReviewCadence != nil {
		obj.ReviewCadence = *in.ReviewCadence
	}
	if in.KPINumerator != nil {
		obj.KPINumerator = *in.KPINumerator
	}
	if in.KPIDenominator != nil {
		obj.KPIDenominator = *in.KPIDenominator
	}
	if in.LastReviewDate != nil {
		d := *in.LastReviewDate
		obj.LastReviewDate = &d
	}
}

// appendDiffEntries returns the previous history plus one entry per
// tracked field transition, or a single generic "Updated" entry when
// nothing tracked changed.
func appendDiffEntries(before, after *models.TrackedObject, now time.Time) []models.HistoryEntry {
	history := after.History
	changed := false

	if before.Health != after.Health {
		note := fmt.Sprintf("%s → %s", before.Health, after.Health)
		if after.HealthRationale != "" {
			note += ": " + after.HealthRationale
		}
		history = models.AppendHistory(history, models.NewHistoryEntry(models.HistoryHealthSet, note, now))
		changed = true
	}
	if before.Classification != after.Classification {
		history = models.AppendHistory(history, models.NewHistoryEntry(
			models.HistoryClassified,
			fmt.Sprintf("%s → %s", orNone(string(before.Classification)), orNone(string(after.Classification))),
			now,
		))
		changed = true
	}
	if before.Owner != after.Owner || before.Operator != after.Operator {
		history = models.AppendHistory(history, models.NewHistoryEntry(
			models.HistoryOwnership,
			fmt.Sprintf("Owner %s, operator %s", orNone(after.Owner), orNone(after.Operator)),
			now,
		))
		changed = true
	}
	if !changed {
		history = models.AppendHistory(history, models.NewHistoryEntry(models.HistoryUpdated, "", now))
	}
	return history
}

func orNone(v string) string {
	if v == "" {
		return "none"
	}
	return v
}

func validateKPI(numerator, denominator int) error {
	if numerator < 0 || denominator < 0 || numerator > denominator {
		return services.ErrInvalidKPI
	}
	return nil
}
