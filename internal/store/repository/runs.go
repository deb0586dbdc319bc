package repository

import (
	"context"
	"fmt"

	"github.com/courtside-app/courtside/internal/store"
)

// RunRepository records scrape run outcomes.
type RunRepository struct {
	db *store.Database
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// Insert persists one run outcome.
func (r *RunRepository) Insert(ctx context.Context, run *store.ScrapeRun) error {
	query := `
		INSERT INTO scrape_runs (kind, success, requested, saved, skipped, reason, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		run.Kind, run.Success, run.Requested, run.Saved, run.Skipped,
		run.Reason, run.StartedAt,
	).Scan(&run.ID)

	if err != nil {
		return fmt.Errorf("inserting scrape run: %w", err)
	}

	return nil
}

// Recent returns the latest runs for a kind, newest first.
func (r *RunRepository) Recent(ctx context.Context, kind string, limit int) ([]*store.ScrapeRun, error) {
	query := `
		SELECT id, kind, success, requested, saved, skipped, reason, started_at
		FROM scrape_runs
		WHERE kind = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scrape runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.ScrapeRun
	for rows.Next() {
		run := &store.ScrapeRun{}
		err := rows.Scan(
			&run.ID, &run.Kind, &run.Success, &run.Requested,
			&run.Saved, &run.Skipped, &run.Reason, &run.StartedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning scrape run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
