package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/courtside-app/courtside/internal/cache"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/courtside-app/courtside/internal/store/repository"
)

// StandingsService handles league table reads, with a Redis cache in front
// of postgres. The cache is invalidated whenever a scrape saves a batch.
type StandingsService struct {
	repo  *repository.StandingsRepository
	cache *cache.RedisCache
}

// NewStandingsService creates a new standings service
func NewStandingsService(db *store.Database, rc *cache.RedisCache) *StandingsService {
	return &StandingsService{
		repo:  repository.NewStandingsRepository(db),
		cache: rc,
	}
}

// GetTable returns the league table ordered by position.
func (s *StandingsService) GetTable(ctx context.Context) ([]*store.Standing, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.KeyStandings); err == nil {
			var standings []*store.Standing
			if err := json.Unmarshal([]byte(cached), &standings); err == nil {
				return standings, nil
			}
			log.Printf("⚠️  Discarding unreadable standings cache entry")
		}
	}

	standings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching standings: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(standings); err == nil {
			if err := s.cache.Set(ctx, cache.KeyStandings, data, cache.DefaultTTL); err != nil {
				log.Printf("⚠️  Failed to cache standings: %v", err)
			}
		}
	}

	return standings, nil
}

// GetTeam returns one team's standing by exact name.
func (s *StandingsService) GetTeam(ctx context.Context, name string) (*store.Standing, error) {
	standing, err := s.repo.GetByTeam(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetching standing for %q: %w", name, err)
	}
	return standing, nil
}

// InvalidateCache drops the cached table after a refresh.
func (s *StandingsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.KeyStandings); err != nil {
		log.Printf("⚠️  Failed to invalidate standings cache: %v", err)
	}
}
