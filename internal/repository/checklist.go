package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plant-healthcheck/planthealth/internal/model"
)

// ChecklistRepository persists inspection checklists.
type ChecklistRepository struct {
	pool *pgxpool.Pool
}

// NewChecklistRepository constructs a repository.
func NewChecklistRepository(pool *pgxpool.Pool) *ChecklistRepository {
	return &ChecklistRepository{pool: pool}
}

const checklistColumns = `
	id, equipment_id, template_id, inspector_id, inspector_name,
	scheduled_date, started_at, completed_at, status, responses,
	total_items, completed_items, passed_items, failed_items,
	score, final_status, next_check_date, inspector_notes,
	created_at, updated_at`

// Create inserts a new checklist and fills in its generated id. total_items
// is fixed at creation from the template so progress can be reported before
// completion.
func (r *ChecklistRepository) Create(ctx context.Context, c *model.Checklist) error {
	if c.Responses == nil {
		c.Responses = model.ResponseSet{}
	}
	responses, err := json.Marshal(c.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO checklists (
			equipment_id, template_id, inspector_id, inspector_name,
			scheduled_date, started_at, completed_at, status, responses,
			total_items, completed_items, passed_items, failed_items,
			score, final_status, next_check_date, inspector_notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at
	`, c.EquipmentID, c.TemplateID, c.InspectorID, c.InspectorName,
		c.ScheduledDate, c.StartedAt, c.CompletedAt, c.Status, responses,
		c.TotalItems, c.CompletedItems, c.PassedItems, c.FailedItems,
		c.Score, nullStr(string(c.FinalStatus)), c.NextCheckDate,
		nullStr(c.InspectorNotes)).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert checklist: %w", err)
	}
	return nil
}

// Get returns one checklist by id.
func (r *ChecklistRepository) Get(ctx context.Context, id int64) (*model.Checklist, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checklistColumns+` FROM checklists WHERE id=$1`, id)
	c, err := scanChecklist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checklist %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select checklist: %w", err)
	}
	return c, nil
}

// Start marks a checklist in progress. The given instant becomes started_at
// so backfilled histories carry their real timeline; a checklist started
// earlier keeps its first instant.
func (r *ChecklistRepository) Start(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checklists
		SET status='in_progress', started_at=COALESCE(started_at, $1), updated_at=now()
		WHERE id=$2
	`, at, id)
	if err != nil {
		return fmt.Errorf("start checklist %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateProgress stores partially merged responses and a non-terminal status
// change during an inspection.
func (r *ChecklistRepository) UpdateProgress(ctx context.Context, id int64, status model.ChecklistStatus, responses model.ResponseSet, notes string) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE checklists
		SET status=$1, responses=$2,
			inspector_notes=COALESCE($3, inspector_notes),
			updated_at=now()
		WHERE id=$4
	`, status, data, nullStr(notes), id)
	if err != nil {
		return fmt.Errorf("update checklist %d: %w", id, err)
	}
	return nil
}

// Complete writes the engine result and the final responses onto the
// checklist row in a single statement.
func (r *ChecklistRepository) Complete(ctx context.Context, id int64, responses model.ResponseSet, notes string, res *model.ScoreResult, completedAt time.Time) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE checklists
		SET status='completed', responses=$1,
			completed_items=$2, passed_items=$3, failed_items=$4,
			score=$5, final_status=$6, next_check_date=$7,
			completed_at=$8, inspector_notes=COALESCE($9, inspector_notes),
			updated_at=now()
		WHERE id=$10
	`, data, res.CompletedItems, res.PassedItems, res.FailedItems,
		res.Score, res.FinalStatus, res.NextCheckDate, completedAt, nullStr(notes), id)
	if err != nil {
		return fmt.Errorf("complete checklist %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("checklist %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecentScores returns the scores of the equipment's completed inspections,
// most recent first, feeding the health score computation.
func (r *ChecklistRepository) RecentScores(ctx context.Context, equipmentID string, limit int) ([]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT score FROM checklists
		WHERE equipment_id=$1 AND status='completed' AND score IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT $2
	`, equipmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent scores for %s: %w", equipmentID, err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// DayScore is one point of an equipment's health history.
type DayScore struct {
	Date           time.Time `json:"date"`
	AvgScore       float64   `json:"avgScore"`
	NumInspections int       `json:"numInspections"`
}

// HealthHistory returns the per-day average score over the trailing period.
func (r *ChecklistRepository) HealthHistory(ctx context.Context, equipmentID string, days int) ([]DayScore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DATE(completed_at), AVG(score), COUNT(*)
		FROM checklists
		WHERE equipment_id=$1 AND status='completed'
			AND completed_at >= CURRENT_DATE - $2 * INTERVAL '1 day'
		GROUP BY DATE(completed_at)
		ORDER BY DATE(completed_at)
	`, equipmentID, days)
	if err != nil {
		return nil, fmt.Errorf("health history for %s: %w", equipmentID, err)
	}
	defer rows.Close()

	var out []DayScore
	for rows.Next() {
		var d DayScore
		if err := rows.Scan(&d.Date, &d.AvgScore, &d.NumInspections); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanChecklist(row pgx.Row) (*model.Checklist, error) {
	var (
		c           model.Checklist
		responses   []byte
		finalStatus *string
		notes       *string
	)
	err := row.Scan(&c.ID, &c.EquipmentID, &c.TemplateID, &c.InspectorID, &c.InspectorName,
		&c.ScheduledDate, &c.StartedAt, &c.CompletedAt, &c.Status, &responses,
		&c.TotalItems, &c.CompletedItems, &c.PassedItems, &c.FailedItems,
		&c.Score, &finalStatus, &c.NextCheckDate, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(responses, &c.Responses); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	if finalStatus != nil {
		c.FinalStatus = model.FinalStatus(*finalStatus)
	}
	c.InspectorNotes = deref(notes)
	return &c, nil
}
