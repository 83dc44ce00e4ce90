package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// DashboardStats is the fleet-wide summary shown on the dashboard.
type DashboardStats struct {
	TotalEquipments       int64                         `json:"totalEquipments"`
	OperationalEquipments int64                         `json:"operationalEquipments"`
	MaintenanceEquipments int64                         `json:"maintenanceEquipments"`
	CriticalEquipments    int64                         `json:"criticalEquipments"`
	AvgHealthScore        float64                       `json:"avgHealthScore"`
	ChecklistsLast30Days  int64                         `json:"checklistsLast30Days"`
	ActiveAlerts          int64                         `json:"activeAlerts"`
	AlertsBySeverity      map[model.AlertSeverity]int64 `json:"alertsBySeverity"`
	CompletedByStatus     map[model.FinalStatus]int64   `json:"completedByStatus"`
}

// StatsRepository aggregates dashboard numbers across the other tables.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository constructs a repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Dashboard collects the headline numbers in one round of queries.
func (r *StatsRepository) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		AlertsBySeverity:  make(map[model.AlertSeverity]int64),
		CompletedByStatus: make(map[model.FinalStatus]int64),
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status='operational'),
			COUNT(*) FILTER (WHERE status='maintenance'),
			COUNT(*) FILTER (WHERE status='critical'),
			COALESCE(AVG(health_score), 0)
		FROM equipments
	`).Scan(&stats.TotalEquipments, &stats.OperationalEquipments,
		&stats.MaintenanceEquipments, &stats.CriticalEquipments, &stats.AvgHealthScore)
	if err != nil {
		return nil, fmt.Errorf("equipment stats: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM checklists
		WHERE status='completed' AND completed_at >= $1
	`, now.AddDate(0, 0, -30)).Scan(&stats.ChecklistsLast30Days)
	if err != nil {
		return nil, fmt.Errorf("checklist stats: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT final_status, COUNT(*) FROM checklists
		WHERE status='completed' AND completed_at >= $1 AND final_status IS NOT NULL
		GROUP BY final_status
	`, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, fmt.Errorf("final status stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			fs    model.FinalStatus
			count int64
		)
		if err := rows.Scan(&fs, &count); err != nil {
			return nil, fmt.Errorf("scan final status: %w", err)
		}
		stats.CompletedByStatus[fs] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	alertRows, err := r.pool.Query(ctx, `
		SELECT severity, COUNT(*) FROM alerts WHERE status='active' GROUP BY severity
	`)
	if err != nil {
		return nil, fmt.Errorf("alert stats: %w", err)
	}
	defer alertRows.Close()
	for alertRows.Next() {
		var (
			sev   model.AlertSeverity
			count int64
		)
		if err := alertRows.Scan(&sev, &count); err != nil {
			return nil, fmt.Errorf("scan alert stat: %w", err)
		}
		stats.AlertsBySeverity[sev] = count
		stats.ActiveAlerts += count
	}
	return stats, alertRows.Err()
}
