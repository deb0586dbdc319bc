package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/courtside-app/courtside/internal/store"
)

// StandingsRepository handles league table data access.
type StandingsRepository struct {
	db *store.Database
}

// NewStandingsRepository creates a new standings repository
func NewStandingsRepository(db *store.Database) *StandingsRepository {
	return &StandingsRepository{db: db}
}

// GetAll returns the league table ordered by position.
func (r *StandingsRepository) GetAll(ctx context.Context) ([]*store.Standing, error) {
	query := `
		SELECT id, name, position, games_played, wins, losses, points, updated_at
		FROM league_standings
		ORDER BY position
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	return r.scanStandings(rows)
}

// GetByTeam finds one team's row by its name (the natural key).
func (r *StandingsRepository) GetByTeam(ctx context.Context, teamName string) (*store.Standing, error) {
	query := `
		SELECT id, name, position, games_played, wins, losses, points, updated_at
		FROM league_standings
		WHERE name = $1
	`

	rec := &store.Standing{}
	err := r.db.DB().QueryRowContext(ctx, query, teamName).Scan(
		&rec.ID, &rec.TeamName, &rec.Position, &rec.GamesPlayed,
		&rec.Wins, &rec.Losses, &rec.Points, &rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team not found: %s", teamName)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team standing: %w", err)
	}

	return rec, nil
}

// Upsert inserts or updates one team's row keyed by name.
func (r *StandingsRepository) Upsert(ctx context.Context, rec *store.Standing) error {
	query := `
		INSERT INTO league_standings (name, position, games_played, wins, losses, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			position = EXCLUDED.position,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			points = EXCLUDED.points,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		rec.TeamName, rec.Position, rec.GamesPlayed,
		rec.Wins, rec.Losses, rec.Points, rec.UpdatedAt,
	).Scan(&rec.ID)

	if err != nil {
		return fmt.Errorf("upserting standing: %w", err)
	}

	return nil
}

// UpsertAll upserts each record independently. One bad row never aborts the
// batch; failures are logged and excluded from the saved count. The returned
// error is non-nil only when every row failed, which means the store itself
// is unreachable.
func (r *StandingsRepository) UpsertAll(ctx context.Context, recs []*store.Standing) (int, error) {
	saved := 0
	var lastErr error

	for _, rec := range recs {
		if err := r.Upsert(ctx, rec); err != nil {
			lastErr = err
			log.Printf("  ⚠️  Failed to save standing %q: %v", rec.TeamName, err)
			continue
		}
		saved++
	}

	if saved == 0 && lastErr != nil {
		return 0, fmt.Errorf("all %d standings upserts failed: %w", len(recs), lastErr)
	}
	return saved, nil
}

// ReplaceAll clears the table and inserts the batch in one transaction.
func (r *StandingsRepository) ReplaceAll(ctx context.Context, recs []*store.Standing) (int, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM league_standings`); err != nil {
		return 0, fmt.Errorf("clearing standings: %w", err)
	}

	query := `
		INSERT INTO league_standings (name, position, games_played, wins, losses, points, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, query,
			rec.TeamName, rec.Position, rec.GamesPlayed,
			rec.Wins, rec.Losses, rec.Points, rec.UpdatedAt,
		); err != nil {
			return 0, fmt.Errorf("inserting standing %q: %w", rec.TeamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing replace: %w", err)
	}

	return len(recs), nil
}

// scanStandings scans multiple standings rows
func (r *StandingsRepository) scanStandings(rows *sql.Rows) ([]*store.Standing, error) {
	var standings []*store.Standing
	for rows.Next() {
		rec := &store.Standing{}
		err := rows.Scan(
			&rec.ID, &rec.TeamName, &rec.Position, &rec.GamesPlayed,
			&rec.Wins, &rec.Losses, &rec.Points, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning standing: %w", err)
		}
		standings = append(standings, rec)
	}

	return standings, rows.Err()
}
