package seeder

import (
	"context"
	"fmt"

	"skillgap/internal/database"
)

// SchemaSeeder creates the tables the platform needs. Statements are
// idempotent so the seeder can run on every boot.
type SchemaSeeder struct{}

func (SchemaSeeder) Name() string { return "schema" }

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS curricula (
		id UUID PRIMARY KEY,
		program_name TEXT NOT NULL UNIQUE,
		description TEXT,
		target_industries TEXT[] NOT NULL DEFAULT '{}',
		course_skills TEXT[] NOT NULL DEFAULT '{}',
		embedding DOUBLE PRECISION[],
		embedding_generated TIMESTAMPTZ,
		embedding_version TEXT,
		embedding_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS job_postings (
		id UUID PRIMARY KEY,
		title TEXT,
		company TEXT,
		location TEXT,
		industry TEXT,
		description TEXT,
		url TEXT NOT NULL UNIQUE,
		skills JSONB NOT NULL DEFAULT '[]'::jsonb,
		posted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		embedding DOUBLE PRECISION[],
		embedding_generated TIMESTAMPTZ,
		embedding_version TEXT,
		embedding_error TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_job_postings_posted_at ON job_postings (posted_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_industry ON job_postings (industry)`,

	`CREATE TABLE IF NOT EXISTS gap_analysis_snapshots (
		id UUID PRIMARY KEY,
		curriculum_id UUID NOT NULL REFERENCES curricula(id) ON DELETE CASCADE,
		analysis_date TIMESTAMPTZ NOT NULL,
		target_industry TEXT,
		job_sample_size INT NOT NULL,
		metrics JSONB NOT NULL,
		recommendations JSONB NOT NULL DEFAULT '[]'::jsonb,
		ml_stats JSONB
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshots_curriculum_date ON gap_analysis_snapshots (curriculum_id, analysis_date DESC)`,
}

func (SchemaSeeder) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// EnsureTableColumns verifies a table carries the columns later seeders
// and repositories depend on.
func EnsureTableColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if table == "" {
		return fmt.Errorf("empty table")
	}

	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema='public' AND table_name=$1`,
		table,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	existing := map[string]struct{}{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return err
		}
		existing[c] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, col := range columns {
		if col == "" {
			return fmt.Errorf("empty column")
		}
		if _, ok := existing[col]; !ok {
			return fmt.Errorf("schema mismatch: missing column %s.%s", table, col)
		}
	}
	return nil
}
