package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool using the provided DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}

// EnsureSchema creates the tables if needed. Having the migration in code
// keeps the tool self-contained so a fresh database can bootstrap itself.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS equipments (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'general',
	manufacturer TEXT,
	model TEXT,
	serial_number TEXT,
	building TEXT NOT NULL,
	zone TEXT NOT NULL,
	floor TEXT,
	status TEXT NOT NULL DEFAULT 'operational',
	health_score INT NOT NULL DEFAULT 100,
	install_date DATE,
	last_maintenance_date DATE,
	next_maintenance_date DATE,
	maintenance_frequency TEXT,
	operating_hours INT NOT NULL DEFAULT 0,
	criticality_level TEXT NOT NULL DEFAULT 'medium',
	responsible_person TEXT,
	contact_email TEXT,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checklist_templates (
	id TEXT PRIMARY KEY,
	equipment_type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	version TEXT NOT NULL,
	frequency TEXT,
	estimated_duration INT,
	sections JSONB NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checklists (
	id BIGSERIAL PRIMARY KEY,
	equipment_id TEXT NOT NULL REFERENCES equipments(id),
	template_id TEXT NOT NULL REFERENCES checklist_templates(id),
	inspector_id TEXT NOT NULL,
	inspector_name TEXT NOT NULL,
	scheduled_date DATE NOT NULL,
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'pending',
	responses JSONB NOT NULL DEFAULT '{}',
	total_items INT NOT NULL DEFAULT 0,
	completed_items INT NOT NULL DEFAULT 0,
	passed_items INT NOT NULL DEFAULT 0,
	failed_items INT NOT NULL DEFAULT 0,
	score DOUBLE PRECISION,
	final_status TEXT,
	next_check_date DATE,
	inspector_notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_checklists_equipment ON checklists(equipment_id);
CREATE INDEX IF NOT EXISTS idx_checklists_status ON checklists(status);
CREATE INDEX IF NOT EXISTS idx_checklists_completed_at ON checklists(completed_at);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	equipment_id TEXT NOT NULL REFERENCES equipments(id),
	checklist_id BIGINT REFERENCES checklists(id),
	alert_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	acknowledged_at TIMESTAMPTZ,
	resolved_at TIMESTAMPTZ,
	resolution_notes TEXT
);
CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
CREATE INDEX IF NOT EXISTS idx_alerts_equipment ON alerts(equipment_id);`
	_, err := pool.Exec(ctx, stmt)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
