package database

import (
	"context"
	"fmt"
	"time"

	"go-easyapply-automation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS application_records (
	job_id      TEXT PRIMARY KEY,
	company     TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS application_records_recorded_at_idx ON application_records (recorded_at);`

// Repository mirrors ledger records into Postgres for reporting. The JSON
// ledger stays the source of truth; this is a write-behind copy.
type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers (PgBouncer, Supabase) reject cached prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *Repository) Name() string {
	return "postgres"
}

// Publish lets the repository act as a ledger sink.
func (r *Repository) Publish(ctx context.Context, rec models.ApplicationRecord) error {
	return r.SaveApplicationRecord(ctx, rec)
}

// SaveApplicationRecord inserts rec; an existing job_id is left untouched,
// matching the ledger's first-record-wins rule.
func (r *Repository) SaveApplicationRecord(ctx context.Context, rec models.ApplicationRecord) error {
	query := `
		INSERT INTO application_records (job_id, company, title, outcome, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, rec.JobID, rec.Company, rec.Title, string(rec.Outcome), rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save application record: %w", err)
	}
	return nil
}

// ListApplications returns the most recent records first.
func (r *Repository) ListApplications(ctx context.Context, limit int) ([]models.ApplicationRecord, error) {
	query := `
		SELECT job_id, company, title, outcome, recorded_at
		FROM application_records
		ORDER BY recorded_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var records []models.ApplicationRecord
	for rows.Next() {
		var rec models.ApplicationRecord
		var outcome string
		if err := rows.Scan(&rec.JobID, &rec.Company, &rec.Title, &outcome, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		rec.Outcome = models.Outcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByOutcome aggregates records stamped at or after since.
func (r *Repository) CountByOutcome(ctx context.Context, since time.Time) (map[models.Outcome]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT outcome, COUNT(*) FROM application_records WHERE recorded_at >= $1 GROUP BY outcome`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Outcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}
