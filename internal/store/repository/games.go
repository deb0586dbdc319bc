package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/courtside-app/courtside/internal/store"
)

// GameRepository handles fixture data access.
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// GetAll returns every fixture ordered by date.
func (r *GameRepository) GetAll(ctx context.Context) ([]*store.Game, error) {
	query := `
		SELECT id, game_date, home_team, away_team, home_score, away_score,
			has_result, location, updated_at
		FROM games
		ORDER BY game_date
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetUpcoming returns fixtures from now onward, soonest first.
func (r *GameRepository) GetUpcoming(ctx context.Context, now time.Time, limit int) ([]*store.Game, error) {
	query := `
		SELECT id, game_date, home_team, away_team, home_score, away_score,
			has_result, location, updated_at
		FROM games
		WHERE game_date >= $1
		ORDER BY game_date
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetResults returns played fixtures, most recent first.
func (r *GameRepository) GetResults(ctx context.Context, now time.Time, limit int) ([]*store.Game, error) {
	query := `
		SELECT id, game_date, home_team, away_team, home_score, away_score,
			has_result, location, updated_at
		FROM games
		WHERE game_date < $1 AND has_result = TRUE
		ORDER BY game_date DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("querying game results: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// Upsert inserts or updates one fixture keyed by (date, home, away).
func (r *GameRepository) Upsert(ctx context.Context, rec *store.Game) error {
	query := `
		INSERT INTO games (game_date, home_team, away_team, home_score, away_score,
			has_result, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_date, home_team, away_team) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			has_result = EXCLUDED.has_result,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		rec.GameDate, rec.HomeTeam, rec.AwayTeam, rec.HomeScore, rec.AwayScore,
		rec.HasResult, rec.Location, rec.UpdatedAt,
	).Scan(&rec.ID)

	if err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}

	return nil
}

// UpsertAll upserts each fixture independently; see StandingsRepository.UpsertAll
// for the failure contract.
func (r *GameRepository) UpsertAll(ctx context.Context, recs []*store.Game) (int, error) {
	saved := 0
	var lastErr error

	for _, rec := range recs {
		if err := r.Upsert(ctx, rec); err != nil {
			lastErr = err
			log.Printf("  ⚠️  Failed to save game %s vs %s: %v", rec.HomeTeam, rec.AwayTeam, err)
			continue
		}
		saved++
	}

	if saved == 0 && lastErr != nil {
		return 0, fmt.Errorf("all %d game upserts failed: %w", len(recs), lastErr)
	}
	return saved, nil
}

// ReplaceAll clears the table and inserts the batch in one transaction.
func (r *GameRepository) ReplaceAll(ctx context.Context, recs []*store.Game) (int, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM games`); err != nil {
		return 0, fmt.Errorf("clearing games: %w", err)
	}

	query := `
		INSERT INTO games (game_date, home_team, away_team, home_score, away_score,
			has_result, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, query,
			rec.GameDate, rec.HomeTeam, rec.AwayTeam, rec.HomeScore, rec.AwayScore,
			rec.HasResult, rec.Location, rec.UpdatedAt,
		); err != nil {
			return 0, fmt.Errorf("inserting game %s vs %s: %w", rec.HomeTeam, rec.AwayTeam, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing replace: %w", err)
	}

	return len(recs), nil
}

// scanGames scans multiple game rows
func (r *GameRepository) scanGames(rows *sql.Rows) ([]*store.Game, error) {
	var games []*store.Game
	for rows.Next() {
		rec := &store.Game{}
		err := rows.Scan(
			&rec.ID, &rec.GameDate, &rec.HomeTeam, &rec.AwayTeam,
			&rec.HomeScore, &rec.AwayScore, &rec.HasResult, &rec.Location,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, rec)
	}

	return games, rows.Err()
}
