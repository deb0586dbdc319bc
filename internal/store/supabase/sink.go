// Package supabase persists scrape batches to a hosted Supabase project
// through its PostgREST API. It is selected with SINK_BACKEND=supabase when
// the app's data lives in Supabase rather than a self-hosted postgres.
package supabase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/courtside-app/courtside/internal/store"
	supa "github.com/supabase-community/supabase-go"
)

const (
	standingsTable = "league_standings"
	gamesTable     = "games"
)

// Sink implements the scrape pipeline's sink contract against Supabase.
type Sink struct {
	client *supa.Client
}

// NewSink creates a Supabase-backed sink using the service role key.
func NewSink(projectURL, serviceKey string) (*Sink, error) {
	client, err := supa.NewClient(projectURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing supabase client: %w", err)
	}
	return &Sink{client: client}, nil
}

type standingRow struct {
	Name        string    `json:"name"`
	Position    int       `json:"position"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Points      int       `json:"points"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type gameRow struct {
	GameDate  time.Time `json:"game_date"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	HasResult bool      `json:"has_result"`
	Location  string    `json:"location"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertStandings upserts each record independently, keyed by team name.
func (s *Sink) UpsertStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	saved := 0
	var lastErr error

	for _, rec := range recs {
		row := standingRow{
			Name:        rec.TeamName,
			Position:    rec.Position,
			GamesPlayed: rec.GamesPlayed,
			Wins:        rec.Wins,
			Losses:      rec.Losses,
			Points:      rec.Points,
			UpdatedAt:   rec.UpdatedAt,
		}
		if _, _, err := s.client.From(standingsTable).Upsert(row, "name", "", "").Execute(); err != nil {
			lastErr = err
			log.Printf("  ⚠️  Supabase upsert failed for %q: %v", rec.TeamName, err)
			continue
		}
		saved++
	}

	if saved == 0 && lastErr != nil {
		return 0, fmt.Errorf("all %d standings upserts failed: %w", len(recs), lastErr)
	}
	return saved, nil
}

// ReplaceStandings clears the table and inserts the batch.
func (s *Sink) ReplaceStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	if _, _, err := s.client.From(standingsTable).Delete("", "").Neq("id", "0").Execute(); err != nil {
		return 0, fmt.Errorf("clearing standings: %w", err)
	}

	rows := make([]standingRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, standingRow{
			Name:        rec.TeamName,
			Position:    rec.Position,
			GamesPlayed: rec.GamesPlayed,
			Wins:        rec.Wins,
			Losses:      rec.Losses,
			Points:      rec.Points,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	if _, _, err := s.client.From(standingsTable).Insert(rows, false, "", "", "").Execute(); err != nil {
		return 0, fmt.Errorf("inserting standings: %w", err)
	}
	return len(recs), nil
}

// UpsertGames upserts each fixture independently, keyed by (date, home, away).
func (s *Sink) UpsertGames(ctx context.Context, recs []*store.Game) (int, error) {
	saved := 0
	var lastErr error

	for _, rec := range recs {
		row := gameRow{
			GameDate:  rec.GameDate,
			HomeTeam:  rec.HomeTeam,
			AwayTeam:  rec.AwayTeam,
			HomeScore: rec.HomeScore,
			AwayScore: rec.AwayScore,
			HasResult: rec.HasResult,
			Location:  rec.Location,
			UpdatedAt: rec.UpdatedAt,
		}
		if _, _, err := s.client.From(gamesTable).Upsert(row, "game_date,home_team,away_team", "", "").Execute(); err != nil {
			lastErr = err
			log.Printf("  ⚠️  Supabase upsert failed for %s vs %s: %v", rec.HomeTeam, rec.AwayTeam, err)
			continue
		}
		saved++
	}

	if saved == 0 && lastErr != nil {
		return 0, fmt.Errorf("all %d game upserts failed: %w", len(recs), lastErr)
	}
	return saved, nil
}

// ReplaceGames clears the table and inserts the batch.
func (s *Sink) ReplaceGames(ctx context.Context, recs []*store.Game) (int, error) {
	if _, _, err := s.client.From(gamesTable).Delete("", "").Neq("id", "0").Execute(); err != nil {
		return 0, fmt.Errorf("clearing games: %w", err)
	}

	rows := make([]gameRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, gameRow{
			GameDate:  rec.GameDate,
			HomeTeam:  rec.HomeTeam,
			AwayTeam:  rec.AwayTeam,
			HomeScore: rec.HomeScore,
			AwayScore: rec.AwayScore,
			HasResult: rec.HasResult,
			Location:  rec.Location,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	if _, _, err := s.client.From(gamesTable).Insert(rows, false, "", "", "").Execute(); err != nil {
		return 0, fmt.Errorf("inserting games: %w", err)
	}
	return len(recs), nil
}
