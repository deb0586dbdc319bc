// Package scheduler drives the daily scrape cycle and fans successful
// refreshes out to the cache, the Redis streams and the websocket hub.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/courtside-app/courtside/internal/scrape"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/courtside-app/courtside/internal/store/repository"
)

// Notifier receives successful run results for push delivery. The websocket
// server satisfies this.
type Notifier interface {
	BroadcastRefresh(result interface{})
}

// StreamPublisher publishes run results to a message stream.
type StreamPublisher interface {
	PublishRefresh(ctx context.Context, kind string, result interface{}) error
}

// CacheInvalidator drops a cached read path after its data refreshes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// Config holds scheduler configuration
type Config struct {
	DailyHour  int           // Default: 3 (3 AM)
	MaxRetries int           // Default: 3
	RetryDelay time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		DailyHour:  3,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}

// Scheduler runs both scrape kinds once a day and on manual trigger.
type Scheduler struct {
	orchestrator *scrape.Orchestrator
	runs         *repository.RunRepository
	config       *Config
	cancel       context.CancelFunc

	notifier  Notifier
	publisher StreamPublisher
	caches    map[scrape.Kind]CacheInvalidator
}

// New creates a scheduler around an orchestrator. Any of notifier,
// publisher or the cache invalidators may be nil.
func New(orch *scrape.Orchestrator, runs *repository.RunRepository, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}

	return &Scheduler{
		orchestrator: orch,
		runs:         runs,
		config:       config,
		caches:       make(map[scrape.Kind]CacheInvalidator),
	}
}

// SetNotifier wires a push notifier for successful refreshes.
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetPublisher wires a stream publisher for successful refreshes.
func (s *Scheduler) SetPublisher(p StreamPublisher) {
	s.publisher = p
}

// SetCacheInvalidator registers the read cache to drop after a kind refreshes.
func (s *Scheduler) SetCacheInvalidator(kind scrape.Kind, ci CacheInvalidator) {
	s.caches[kind] = ci
}

// Start begins the daily cycle and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("→ Daily scrape scheduler started (runs at %02d:00)", s.config.DailyHour)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for {
		// Calculate time until next run
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.DailyHour, 0, 0, 0, now.Location())

		// If we've passed today's run time, schedule for tomorrow
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}

		waitDuration := time.Until(nextRun)
		log.Printf("  Next scrape: %s (in %v)", nextRun.Format("2006-01-02 15:04:05"), waitDuration.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Println("→ Daily scrape scheduler stopped")
			return
		case <-time.After(waitDuration):
			log.Println("═══ Daily Scrape Starting ═══")
			s.runAll(ctx)
			log.Println("═══ Daily Scrape Complete ═══")
		}
	}
}

// Stop cancels the daily cycle.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runAll scrapes both kinds, standings first.
func (s *Scheduler) runAll(ctx context.Context) {
	for _, kind := range []scrape.Kind{scrape.KindStandings, scrape.KindSchedule} {
		if _, err := s.runWithRetry(ctx, kind); err != nil {
			log.Printf("❌ Daily %s scrape failed: %v", kind, err)
		}
	}
}

// runWithRetry runs one kind, retrying transient failures.
func (s *Scheduler) runWithRetry(ctx context.Context, kind scrape.Kind) (scrape.Result, error) {
	var result scrape.Result
	var err error

	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		result, err = s.orchestrator.Run(ctx, kind)
		if err == nil {
			break
		}

		log.Printf("  ⚠️  %s attempt %d/%d failed: %v", kind, attempt, s.config.MaxRetries, err)

		if attempt < s.config.MaxRetries {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.config.RetryDelay):
			}
		}
	}

	s.record(ctx, kind, result, err)

	if err != nil {
		return result, err
	}

	s.fanOut(ctx, kind, result)
	return result, nil
}

// TriggerManual runs one kind immediately, outside the daily cycle. Used by
// the refresh endpoint.
func (s *Scheduler) TriggerManual(ctx context.Context, kind scrape.Kind) (scrape.Result, error) {
	log.Printf("Manual %s refresh triggered", kind)
	return s.runWithRetry(ctx, kind)
}

// record persists the run outcome, success or not.
func (s *Scheduler) record(ctx context.Context, kind scrape.Kind, result scrape.Result, runErr error) {
	if s.runs == nil {
		return
	}

	run := &store.ScrapeRun{
		Kind:      string(kind),
		Success:   runErr == nil,
		Requested: result.Requested,
		Saved:     result.Saved,
		Skipped:   result.Skipped,
		StartedAt: result.Timestamp,
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if runErr != nil {
		run.Reason = runErr.Error()
	}

	if err := s.runs.Insert(ctx, run); err != nil {
		log.Printf("  ⚠️  Failed to record %s run: %v", kind, err)
	}
}

// fanOut invalidates caches and pushes the refresh event.
func (s *Scheduler) fanOut(ctx context.Context, kind scrape.Kind, result scrape.Result) {
	if ci, ok := s.caches[kind]; ok && ci != nil {
		ci.InvalidateCache(ctx)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRefresh(ctx, string(kind), result); err != nil {
			log.Printf("  ⚠️  Failed to publish %s refresh: %v", kind, err)
		}
	}

	if s.notifier != nil {
		s.notifier.BroadcastRefresh(result)
	}
}
