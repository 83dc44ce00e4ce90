package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// AlertRepository persists maintenance alerts.
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Create inserts an alert, generating its id when empty.
func (r *AlertRepository) Create(ctx context.Context, a *model.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.AlertActive
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO alerts (id, equipment_id, checklist_id, alert_type, severity, title, message, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.EquipmentID, a.ChecklistID, a.AlertType, a.Severity, a.Title, a.Message, a.Status)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts the alert unless an active one of the same type
// already exists for the equipment. Keeps the periodic overdue scan from
// piling up duplicates.
func (r *AlertRepository) CreateIfAbsent(ctx context.Context, a *model.Alert) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.AlertActive
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO alerts (id, equipment_id, checklist_id, alert_type, severity, title, message, status)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE equipment_id=$2 AND alert_type=$4 AND status='active'
		)
	`, a.ID, a.EquipmentID, a.ChecklistID, a.AlertType, a.Severity, a.Title, a.Message, a.Status)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns active alerts ordered by severity (critical first),
// then recency.
func (r *AlertRepository) ListActive(ctx context.Context, equipmentID string) ([]model.Alert, error) {
	query := `
		SELECT id, equipment_id, checklist_id, alert_type, severity, title, message,
			status, created_at, acknowledged_at, resolved_at, COALESCE(resolution_notes,'')
		FROM alerts
		WHERE status='active'`
	args := []any{}
	if equipmentID != "" {
		query += ` AND equipment_id=$1`
		args = append(args, equipmentID)
	}
	query += `
		ORDER BY CASE severity
			WHEN 'critical' THEN 1
			WHEN 'high' THEN 2
			WHEN 'medium' THEN 3
			WHEN 'low' THEN 4
		END, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.EquipmentID, &a.ChecklistID, &a.AlertType, &a.Severity,
			&a.Title, &a.Message, &a.Status, &a.CreatedAt, &a.AcknowledgedAt,
			&a.ResolvedAt, &a.ResolutionNotes); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Acknowledge marks an active alert as seen.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alerts SET status='acknowledged', acknowledged_at=now()
		WHERE id=$1 AND status='active'
	`, id)
	if err != nil {
		return fmt.Errorf("acknowledge alert %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

// Resolve closes an alert with optional notes.
func (r *AlertRepository) Resolve(ctx context.Context, id, notes string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alerts SET status='resolved', resolved_at=now(),
			resolution_notes=COALESCE($2, resolution_notes)
		WHERE id=$1 AND status IN ('active','acknowledged')
	`, id, nullStr(notes))
	if err != nil {
		return fmt.Errorf("resolve alert %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountActiveBySeverity returns the active alert counts keyed by severity.
func (r *AlertRepository) CountActiveBySeverity(ctx context.Context) (map[model.AlertSeverity]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT severity, COUNT(*) FROM alerts WHERE status='active' GROUP BY severity
	`)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	defer rows.Close()

	out := make(map[model.AlertSeverity]int64)
	for rows.Next() {
		var (
			sev   model.AlertSeverity
			count int64
		)
		if err := rows.Scan(&sev, &count); err != nil {
			return nil, fmt.Errorf("scan alert count: %w", err)
		}
		out[sev] = count
	}
	return out, rows.Err()
}
