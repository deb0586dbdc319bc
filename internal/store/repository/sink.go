package repository

import (
	"context"

	"github.com/courtside-app/courtside/internal/store"
)

// Sink adapts the standings and game repositories to the scrape pipeline's
// sink contract.
type Sink struct {
	standings *StandingsRepository
	games     *GameRepository
}

// NewSink creates a postgres-backed sink.
func NewSink(db *store.Database) *Sink {
	return &Sink{
		standings: NewStandingsRepository(db),
		games:     NewGameRepository(db),
	}
}

func (s *Sink) UpsertStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	return s.standings.UpsertAll(ctx, recs)
}

func (s *Sink) ReplaceStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	return s.standings.ReplaceAll(ctx, recs)
}

func (s *Sink) UpsertGames(ctx context.Context, recs []*store.Game) (int, error) {
	return s.games.UpsertAll(ctx, recs)
}

func (s *Sink) ReplaceGames(ctx context.Context, recs []*store.Game) (int, error) {
	return s.games.ReplaceAll(ctx, recs)
}
