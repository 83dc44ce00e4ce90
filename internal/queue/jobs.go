package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// LowScoreAlertTask is scheduled when a completed inspection scores
	// below the alerting threshold.
	LowScoreAlertTask = "alert:low_score"
	// HealthRefreshTask recomputes one equipment's rolling health score.
	HealthRefreshTask = "health:refresh"
	// OverdueScanTask periodically sweeps the fleet for overdue
	// inspections and equipment in maintenance or critical condition.
	OverdueScanTask = "maintenance:overdue_scan"
)

// LowScorePayload identifies the inspection that triggered the alert.
type LowScorePayload struct {
	EquipmentID string  `json:"equipment_id"`
	ChecklistID int64   `json:"checklist_id"`
	Score       float64 `json:"score"`
}

// HealthRefreshPayload names the equipment to recompute.
type HealthRefreshPayload struct {
	EquipmentID string `json:"equipment_id"`
}

// Dispatcher enqueues follow-up jobs. It satisfies inspection.Notifier.
type Dispatcher struct {
	client *asynq.Client
}

// NewDispatcher wraps an asynq client.
func NewDispatcher(client *asynq.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// LowScore enqueues a low-score alert job.
func (d *Dispatcher) LowScore(ctx context.Context, equipmentID string, checklistID int64, score float64) error {
	payload := LowScorePayload{EquipmentID: equipmentID, ChecklistID: checklistID, Score: score}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(LowScoreAlertTask, data)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue low score alert: %w", err)
	}
	return nil
}

// HealthRefresh enqueues a health-score recomputation job.
func (d *Dispatcher) HealthRefresh(ctx context.Context, equipmentID string) error {
	data, err := json.Marshal(HealthRefreshPayload{EquipmentID: equipmentID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(HealthRefreshTask, data)
	if _, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue health refresh: %w", err)
	}
	return nil
}
