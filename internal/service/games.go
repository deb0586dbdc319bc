package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/courtside-app/courtside/internal/cache"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/courtside-app/courtside/internal/store/repository"
)

// GameService handles schedule and result reads.
type GameService struct {
	repo  *repository.GameRepository
	cache *cache.RedisCache
}

// NewGameService creates a new game service
func NewGameService(db *store.Database, rc *cache.RedisCache) *GameService {
	return &GameService{
		repo:  repository.NewGameRepository(db),
		cache: rc,
	}
}

// GetSchedule returns the full season schedule ordered by date.
func (s *GameService) GetSchedule(ctx context.Context) ([]*store.Game, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.KeyGames); err == nil {
			var games []*store.Game
			if err := json.Unmarshal([]byte(cached), &games); err == nil {
				return games, nil
			}
			log.Printf("⚠️  Discarding unreadable games cache entry")
		}
	}

	games, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(games); err == nil {
			if err := s.cache.Set(ctx, cache.KeyGames, data, cache.DefaultTTL); err != nil {
				log.Printf("⚠️  Failed to cache games: %v", err)
			}
		}
	}

	return games, nil
}

// GetUpcoming returns fixtures from today onward, soonest first.
func (s *GameService) GetUpcoming(ctx context.Context, limit int) ([]*store.Game, error) {
	games, err := s.repo.GetUpcoming(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("fetching upcoming games: %w", err)
	}
	return games, nil
}

// GetResults returns finished games, most recent first.
func (s *GameService) GetResults(ctx context.Context, limit int) ([]*store.Game, error) {
	games, err := s.repo.GetResults(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("fetching results: %w", err)
	}
	return games, nil
}

// InvalidateCache drops the cached schedule after a refresh.
func (s *GameService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.KeyGames); err != nil {
		log.Printf("⚠️  Failed to invalidate games cache: %v", err)
	}
}
