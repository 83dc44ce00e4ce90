package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// TemplateRepository persists versioned checklist templates. Sections are
// stored as JSONB in the wire shape the frontend and seeds already use.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository constructs a repository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Upsert inserts a template, replacing version and sections on re-import.
func (r *TemplateRepository) Upsert(ctx context.Context, tpl *model.ChecklistTemplate) error {
	sections, err := json.Marshal(tpl.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections for %s: %w", tpl.ID, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO checklist_templates (
			id, equipment_type, title, description, version,
			frequency, estimated_duration, sections, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true)
		ON CONFLICT (id) DO UPDATE SET
			version = EXCLUDED.version,
			sections = EXCLUDED.sections,
			frequency = EXCLUDED.frequency,
			updated_at = now()
	`, tpl.ID, tpl.EquipmentType, tpl.Title, nullStr(tpl.Description), tpl.Version,
		nullStr(string(tpl.Frequency)), tpl.EstimatedDuration, sections)
	if err != nil {
		return fmt.Errorf("upsert template %s: %w", tpl.ID, err)
	}
	return nil
}

// Get returns one template by id.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*model.ChecklistTemplate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, equipment_type, title, COALESCE(description,''), version,
			COALESCE(frequency,''), COALESCE(estimated_duration,0), sections,
			is_active, created_at, updated_at
		FROM checklist_templates WHERE id=$1
	`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select template: %w", err)
	}
	return tpl, nil
}

// ListActive returns the active templates, optionally filtered by equipment
// type, ordered by equipment type then title.
func (r *TemplateRepository) ListActive(ctx context.Context, equipmentType string) ([]model.ChecklistTemplate, error) {
	query := `
		SELECT id, equipment_type, title, COALESCE(description,''), version,
			COALESCE(frequency,''), COALESCE(estimated_duration,0), sections,
			is_active, created_at, updated_at
		FROM checklist_templates WHERE is_active`
	args := []any{}
	if equipmentType != "" {
		query += ` AND equipment_type=$1`
		args = append(args, equipmentType)
	}
	query += ` ORDER BY equipment_type, title`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []model.ChecklistTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

func scanTemplate(row pgx.Row) (*model.ChecklistTemplate, error) {
	var (
		tpl      model.ChecklistTemplate
		freq     string
		sections []byte
	)
	err := row.Scan(&tpl.ID, &tpl.EquipmentType, &tpl.Title, &tpl.Description, &tpl.Version,
		&freq, &tpl.EstimatedDuration, &sections, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tpl.Frequency = model.Frequency(freq)
	if err := json.Unmarshal(sections, &tpl.Sections); err != nil {
		return nil, fmt.Errorf("decode sections for %s: %w", tpl.ID, err)
	}
	return &tpl, nil
}
