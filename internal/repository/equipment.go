// Package repository wraps all SQL used by the CLI and the worker.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// EquipmentRepository persists equipment records.
type EquipmentRepository struct {
	pool *pgxpool.Pool
}

// NewEquipmentRepository constructs a repository.
func NewEquipmentRepository(pool *pgxpool.Pool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

const equipmentColumns = `
	id, name, type, category, manufacturer, model, serial_number,
	building, zone, floor, status, health_score,
	install_date, last_maintenance_date, next_maintenance_date,
	maintenance_frequency, operating_hours, criticality_level,
	responsible_person, contact_email, notes, created_at, updated_at`

// Upsert inserts an equipment, refreshing the mutable columns when the id
// already exists. Used by the seeder, which re-imports fixtures.
func (r *EquipmentRepository) Upsert(ctx context.Context, eq *model.Equipment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO equipments (
			id, name, type, category, manufacturer, model, serial_number,
			building, zone, floor, status, health_score,
			install_date, last_maintenance_date, next_maintenance_date,
			maintenance_frequency, operating_hours, criticality_level,
			responsible_person, contact_email, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			health_score = EXCLUDED.health_score,
			status = EXCLUDED.status,
			last_maintenance_date = EXCLUDED.last_maintenance_date,
			next_maintenance_date = EXCLUDED.next_maintenance_date,
			updated_at = now()
	`, eq.ID, eq.Name, eq.Type, eq.Category, nullStr(eq.Manufacturer), nullStr(eq.Model),
		nullStr(eq.SerialNumber), eq.Building, eq.Zone, nullStr(eq.Floor), eq.Status,
		eq.HealthScore, eq.InstallDate, eq.LastMaintenanceDate, eq.NextMaintenanceDate,
		nullStr(string(eq.MaintenanceFrequency)), eq.OperatingHours, eq.CriticalityLevel,
		nullStr(eq.ResponsiblePerson), nullStr(eq.ContactEmail), nullStr(eq.Notes))
	if err != nil {
		return fmt.Errorf("upsert equipment %s: %w", eq.ID, err)
	}
	return nil
}

// Get returns one equipment by id.
func (r *EquipmentRepository) Get(ctx context.Context, id string) (*model.Equipment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+equipmentColumns+` FROM equipments WHERE id=$1`, id)
	eq, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("equipment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select equipment: %w", err)
	}
	return eq, nil
}

// List returns all equipment ordered by id.
func (r *EquipmentRepository) List(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+equipmentColumns+` FROM equipments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list equipments: %w", err)
	}
	defer rows.Close()
	return collectEquipments(rows)
}

// ListOverdue returns equipment whose next maintenance date is before asOf.
func (r *EquipmentRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Equipment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+equipmentColumns+` FROM equipments
		WHERE next_maintenance_date < $1 ORDER BY next_maintenance_date
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("list overdue equipments: %w", err)
	}
	defer rows.Close()
	return collectEquipments(rows)
}

// ListByStatus returns equipment in the given operational status.
func (r *EquipmentRepository) ListByStatus(ctx context.Context, status model.EquipmentStatus) ([]model.Equipment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+equipmentColumns+` FROM equipments WHERE status=$1 ORDER BY id
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list equipments by status: %w", err)
	}
	defer rows.Close()
	return collectEquipments(rows)
}

// ListCritical returns equipment in critical status or with a health score
// below 50.
func (r *EquipmentRepository) ListCritical(ctx context.Context) ([]model.Equipment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+equipmentColumns+` FROM equipments
		WHERE status='critical' OR health_score < 50 ORDER BY health_score
	`)
	if err != nil {
		return nil, fmt.Errorf("list critical equipments: %w", err)
	}
	defer rows.Close()
	return collectEquipments(rows)
}

// UpdateMaintenanceDates records a completed inspection on the equipment.
func (r *EquipmentRepository) UpdateMaintenanceDates(ctx context.Context, id string, last, next time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE equipments
		SET last_maintenance_date=$1, next_maintenance_date=$2, updated_at=now()
		WHERE id=$3
	`, last, next, id)
	if err != nil {
		return fmt.Errorf("update maintenance dates for %s: %w", id, err)
	}
	return nil
}

// UpdateHealthScore stores a freshly computed health score.
func (r *EquipmentRepository) UpdateHealthScore(ctx context.Context, id string, score int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE equipments SET health_score=$1, updated_at=now() WHERE id=$2
	`, score, id)
	if err != nil {
		return fmt.Errorf("update health score for %s: %w", id, err)
	}
	return nil
}

func scanEquipment(row pgx.Row) (*model.Equipment, error) {
	var (
		eq   model.Equipment
		freq *string

		manufacturer, mdl, serial   *string
		floor, person, email, notes *string
	)
	err := row.Scan(&eq.ID, &eq.Name, &eq.Type, &eq.Category, &manufacturer, &mdl, &serial,
		&eq.Building, &eq.Zone, &floor, &eq.Status, &eq.HealthScore,
		&eq.InstallDate, &eq.LastMaintenanceDate, &eq.NextMaintenanceDate,
		&freq, &eq.OperatingHours, &eq.CriticalityLevel,
		&person, &email, &notes, &eq.CreatedAt, &eq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	eq.Manufacturer = deref(manufacturer)
	eq.Model = deref(mdl)
	eq.SerialNumber = deref(serial)
	eq.Floor = deref(floor)
	eq.ResponsiblePerson = deref(person)
	eq.ContactEmail = deref(email)
	eq.Notes = deref(notes)
	if freq != nil {
		eq.MaintenanceFrequency = model.Frequency(*freq)
	}
	return &eq, nil
}

func collectEquipments(rows pgx.Rows) ([]model.Equipment, error) {
	var out []model.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, *eq)
	}
	return out, rows.Err()
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
