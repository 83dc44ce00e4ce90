// Package inspection orchestrates the checklist lifecycle around the pure
// scoring engine: state transitions, persistence of results, equipment
// maintenance-date updates and the follow-up jobs. The engine itself stays
// free of I/O; everything with a side effect lives here.
package inspection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/plant-healthcheck/planthealth/internal/model"
	"github.com/plant-healthcheck/planthealth/internal/scoring"
)

// ErrInvalidTransition is returned when a status change violates the
// checklist lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrTemplateMismatch is returned when a template's equipment type does not
// match the equipment's category.
var ErrTemplateMismatch = errors.New("template does not match equipment category")

// ChecklistStore is the slice of checklist persistence the service needs.
type ChecklistStore interface {
	Get(ctx context.Context, id int64) (*model.Checklist, error)
	Create(ctx context.Context, c *model.Checklist) error
	Start(ctx context.Context, id int64, at time.Time) error
	UpdateProgress(ctx context.Context, id int64, status model.ChecklistStatus, responses model.ResponseSet, notes string) error
	Complete(ctx context.Context, id int64, responses model.ResponseSet, notes string, res *model.ScoreResult, completedAt time.Time) error
}

// TemplateStore loads templates for scoring.
type TemplateStore interface {
	Get(ctx context.Context, id string) (*model.ChecklistTemplate, error)
}

// EquipmentStore is the slice of equipment persistence the service needs.
type EquipmentStore interface {
	Get(ctx context.Context, id string) (*model.Equipment, error)
	UpdateMaintenanceDates(ctx context.Context, id string, last, next time.Time) error
}

// Notifier hands follow-up work to the background queue. Implementations
// raise alert records and refresh health scores; delivery of anything to a
// human is out of scope here.
type Notifier interface {
	LowScore(ctx context.Context, equipmentID string, checklistID int64, score float64) error
	HealthRefresh(ctx context.Context, equipmentID string) error
}

// Service drives checklists from creation through completion.
type Service struct {
	checklists ChecklistStore
	templates  TemplateStore
	equipments EquipmentStore
	notifier   Notifier
	engine     *scoring.Engine

	// alertThreshold is the low-score alerting cutoff, independent of the
	// classification bands.
	alertThreshold float64
	log            zerolog.Logger
}

// NewService constructs the orchestration service.
func NewService(checklists ChecklistStore, templates TemplateStore, equipments EquipmentStore, notifier Notifier, engine *scoring.Engine, alertThreshold float64, log zerolog.Logger) *Service {
	return &Service{
		checklists:     checklists,
		templates:      templates,
		equipments:     equipments,
		notifier:       notifier,
		engine:         engine,
		alertThreshold: alertThreshold,
		log:            log,
	}
}

// Create opens a pending checklist for an equipment, after checking that the
// template's equipment type matches the equipment's category. TotalItems is
// fixed from the template at creation time.
func (s *Service) Create(ctx context.Context, equipmentID, templateID, inspectorID, inspectorName string, scheduled time.Time) (*model.Checklist, error) {
	eq, err := s.equipments.Get(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.EquipmentType != eq.Category {
		return nil, fmt.Errorf("template type %q vs equipment category %q: %w",
			tpl.EquipmentType, eq.Category, ErrTemplateMismatch)
	}
	if err := scoring.ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	c := &model.Checklist{
		EquipmentID:   equipmentID,
		TemplateID:    templateID,
		InspectorID:   inspectorID,
		InspectorName: inspectorName,
		ScheduledDate: scheduled,
		Status:        model.StatusPending,
		Responses:     model.ResponseSet{},
		TotalItems:    tpl.TotalItems(),
	}
	if err := s.checklists.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Start moves a pending checklist to in_progress. at becomes started_at;
// callers pass time.Now() for interactive inspections and the historical
// instant when backfilling, keeping started_at before completed_at either way.
func (s *Service) Start(ctx context.Context, id int64, at time.Time) error {
	c, err := s.checklists.Get(ctx, id)
	if err != nil {
		return err
	}
	if !c.Status.CanTransitionTo(model.StatusInProgress) {
		return fmt.Errorf("checklist %d is %s: %w", id, c.Status, ErrInvalidTransition)
	}
	return s.checklists.Start(ctx, id, at)
}

// SaveProgress merges partial answers onto an in-flight checklist without
// scoring it.
func (s *Service) SaveProgress(ctx context.Context, id int64, responses model.ResponseSet, notes string) error {
	c, err := s.checklists.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status.IsTerminal() {
		return fmt.Errorf("checklist %d is %s: %w", id, c.Status, ErrInvalidTransition)
	}
	return s.checklists.UpdateProgress(ctx, id, c.Status, c.Responses.Merge(responses), notes)
}

// Cancel terminates a checklist without scoring.
func (s *Service) Cancel(ctx context.Context, id int64, notes string) error {
	c, err := s.checklists.Get(ctx, id)
	if err != nil {
		return err
	}
	if !c.Status.CanTransitionTo(model.StatusCancelled) {
		return fmt.Errorf("checklist %d is %s: %w", id, c.Status, ErrInvalidTransition)
	}
	return s.checklists.UpdateProgress(ctx, id, model.StatusCancelled, c.Responses, notes)
}

// Complete merges the final answers, scores the checklist through the engine
// and persists the result, then updates the equipment's maintenance dates
// and hands the follow-ups to the queue: a health-score refresh always, a
// low-score alert when the score falls under the threshold.
//
// completedAt is the reference instant for the next due date; callers pass
// time.Now() for interactive completions and the historical timestamp when
// backfilling. A scoring error means nothing was persisted.
func (s *Service) Complete(ctx context.Context, id int64, responses model.ResponseSet, notes string, completedAt time.Time) (*model.ScoreResult, error) {
	c, err := s.checklists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.CanTransitionTo(model.StatusCompleted) {
		return nil, fmt.Errorf("checklist %d is %s: %w", id, c.Status, ErrInvalidTransition)
	}
	tpl, err := s.templates.Get(ctx, c.TemplateID)
	if err != nil {
		return nil, err
	}

	merged := c.Responses.Merge(responses)
	res, err := s.engine.Score(tpl, merged, completedAt)
	if err != nil {
		return nil, fmt.Errorf("score checklist %d: %w", id, err)
	}

	if err := s.checklists.Complete(ctx, id, merged, notes, res, completedAt); err != nil {
		return nil, err
	}
	if err := s.equipments.UpdateMaintenanceDates(ctx, c.EquipmentID, completedAt, res.NextCheckDate); err != nil {
		return nil, err
	}

	// The completion is already durable; a queue hiccup should not undo it.
	if err := s.notifier.HealthRefresh(ctx, c.EquipmentID); err != nil {
		s.log.Error().Err(err).Str("equipment_id", c.EquipmentID).Msg("enqueue health refresh")
	}
	if res.Score < s.alertThreshold {
		if err := s.notifier.LowScore(ctx, c.EquipmentID, id, res.Score); err != nil {
			s.log.Error().Err(err).Str("equipment_id", c.EquipmentID).Msg("enqueue low score alert")
		}
	}

	s.log.Info().
		Int64("checklist_id", id).
		Str("equipment_id", c.EquipmentID).
		Float64("score", res.Score).
		Str("final_status", string(res.FinalStatus)).
		Msg("checklist completed")
	return res, nil
}
