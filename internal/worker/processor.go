package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/plant-healthcheck/planthealth/internal/health"
	"github.com/plant-healthcheck/planthealth/internal/model"
	"github.com/plant-healthcheck/planthealth/internal/queue"
	"github.com/plant-healthcheck/planthealth/internal/repository"
)

// historyWindow is how many recent inspections feed the health score.
const historyWindow = 5

// Processor is plugged into the asynq worker loop.
type Processor struct {
	equipments *repository.EquipmentRepository
	checklists *repository.ChecklistRepository
	alerts     *repository.AlertRepository
	log        zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(equipments *repository.EquipmentRepository, checklists *repository.ChecklistRepository, alerts *repository.AlertRepository, log zerolog.Logger) *Processor {
	return &Processor{equipments: equipments, checklists: checklists, alerts: alerts, log: log}
}

// Handler registers the job handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.LowScoreAlertTask, p.handleLowScore)
	mux.HandleFunc(queue.HealthRefreshTask, p.handleHealthRefresh)
	mux.HandleFunc(queue.OverdueScanTask, p.handleOverdueScan)
	return mux
}

func (p *Processor) handleLowScore(ctx context.Context, task *asynq.Task) error {
	var payload queue.LowScorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	alert := &model.Alert{
		EquipmentID: payload.EquipmentID,
		ChecklistID: &payload.ChecklistID,
		AlertType:   model.AlertHealthScoreLow,
		Severity:    model.SeverityHigh,
		Title:       fmt.Sprintf("Score faible - %s", payload.EquipmentID),
		Message:     fmt.Sprintf("L'inspection a révélé un score de %.1f%%. Vérification requise.", payload.Score),
	}
	if err := p.alerts.Create(ctx, alert); err != nil {
		return err
	}
	p.log.Warn().
		Str("equipment_id", payload.EquipmentID).
		Int64("checklist_id", payload.ChecklistID).
		Float64("score", payload.Score).
		Msg("low score alert raised")
	return nil
}

func (p *Processor) handleHealthRefresh(ctx context.Context, task *asynq.Task) error {
	var payload queue.HealthRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	scores, err := p.checklists.RecentScores(ctx, payload.EquipmentID, historyWindow)
	if err != nil {
		return err
	}
	score := health.Compute(scores)
	if err := p.equipments.UpdateHealthScore(ctx, payload.EquipmentID, score); err != nil {
		return err
	}
	p.log.Info().
		Str("equipment_id", payload.EquipmentID).
		Int("health_score", score).
		Int("inspections", len(scores)).
		Msg("health score refreshed")
	return nil
}

func (p *Processor) handleOverdueScan(ctx context.Context, _ *asynq.Task) error {
	_, err := p.SweepFleet(ctx, time.Now().UTC())
	return err
}

// SweepFleet raises the standing alert types across the fleet: overdue
// inspections, planned maintenance, and critical condition. Each insert is
// skipped while an active alert of the same type already exists for the
// equipment. Returns how many alerts were raised. The seeder calls this
// directly; the worker runs it on a schedule.
func (p *Processor) SweepFleet(ctx context.Context, now time.Time) (int, error) {
	raised := 0

	overdue, err := p.equipments.ListOverdue(ctx, now)
	if err != nil {
		return raised, err
	}
	for i := range overdue {
		eq := &overdue[i]
		created, err := p.alerts.CreateIfAbsent(ctx, &model.Alert{
			EquipmentID: eq.ID,
			AlertType:   model.AlertInspectionOverdue,
			Severity:    model.SeverityHigh,
			Title:       fmt.Sprintf("Inspection en retard - %s", eq.Name),
			Message:     "La prochaine inspection est échue. Planifier immédiatement.",
		})
		if err != nil {
			return raised, err
		}
		if created {
			raised++
		}
	}

	inMaintenance, err := p.equipments.ListByStatus(ctx, model.EquipmentMaintenance)
	if err != nil {
		return raised, err
	}
	for i := range inMaintenance {
		eq := &inMaintenance[i]
		created, err := p.alerts.CreateIfAbsent(ctx, &model.Alert{
			EquipmentID: eq.ID,
			AlertType:   model.AlertMaintenanceDue,
			Severity:    model.SeverityMedium,
			Title:       fmt.Sprintf("Maintenance planifiée - %s", eq.Name),
			Message:     "Équipement en maintenance planifiée. Vérification requise.",
		})
		if err != nil {
			return raised, err
		}
		if created {
			raised++
		}
	}

	critical, err := p.equipments.ListCritical(ctx)
	if err != nil {
		return raised, err
	}
	for i := range critical {
		eq := &critical[i]
		created, err := p.alerts.CreateIfAbsent(ctx, &model.Alert{
			EquipmentID: eq.ID,
			AlertType:   model.AlertCriticalFailure,
			Severity:    model.SeverityCritical,
			Title:       fmt.Sprintf("ALERTE CRITIQUE - %s", eq.Name),
			Message:     "Équipement en état critique. Intervention urgente requise.",
		})
		if err != nil {
			return raised, err
		}
		if created {
			raised++
		}
	}

	p.log.Info().
		Int("raised", raised).
		Int("overdue", len(overdue)).
		Int("maintenance", len(inMaintenance)).
		Int("critical", len(critical)).
		Msg("overdue scan finished")
	return raised, nil
}
