package scrape

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/courtside-app/courtside/internal/store"
)

// State names the orchestrator's position in a run. Transitions are strictly
// forward: Idle → Fetching → Parsing → Normalizing → Saving → Done, with
// Failed reachable from any stage.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateParsing     State = "parsing"
	StateNormalizing State = "normalizing"
	StateSaving      State = "saving"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Retention selects how a run persists its batch. One policy per run,
// never mixed: either every record upserts by natural key, or the table is
// cleared and the batch inserted.
type Retention string

const (
	RetentionUpsert  Retention = "upsert"
	RetentionReplace Retention = "replace"
)

// Config carries everything a run needs. It is constructed once and passed
// in; the pipeline holds no ambient singletons.
type Config struct {
	StandingsURLs []string
	ScheduleURLs  []string
	// Marker is an optional string expected inside the real table, typically
	// the club's own team name.
	Marker    string
	Retention Retention
}

// Result is the observable outcome of one run. A run is never a silent
// no-op: zero candidate rows and all-rows-rejected produce distinct errors.
type Result struct {
	Kind      Kind      `json:"kind"`
	Success   bool      `json:"success"`
	Requested int       `json:"requested"`
	Saved     int       `json:"saved"`
	Skipped   int       `json:"skipped"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Orchestrator sequences fetch → locate → extract → map → normalize → save
// for one league. Concurrent runs of the same kind are serialized here, not
// left to the store's concurrency control.
type Orchestrator struct {
	fetcher HTMLFetcher
	sink    Sink
	locator *Locator
	config  Config

	mu      sync.Mutex
	running map[Kind]bool
}

// NewOrchestrator wires the pipeline.
func NewOrchestrator(fetcher HTMLFetcher, sink Sink, config Config) *Orchestrator {
	if config.Retention == "" {
		config.Retention = RetentionUpsert
	}
	return &Orchestrator{
		fetcher: fetcher,
		sink:    sink,
		locator: NewLocator(config.Marker),
		config:  config,
	}
}

// Run executes one scrape cycle for kind and returns its result. Running the
// same kind twice concurrently is refused; running twice in sequence against
// unchanged upstream content leaves the store byte-for-byte identical.
func (o *Orchestrator) Run(ctx context.Context, kind Kind) (Result, error) {
	started := time.Now()

	if !kind.Valid() {
		return o.fail(kind, started, fmt.Errorf("unknown scrape kind %q", kind))
	}

	if !o.tryAcquire(kind) {
		return o.fail(kind, started, fmt.Errorf("%w: %s", ErrRunInProgress, kind))
	}
	defer o.release(kind)

	log.Printf("═══ Scrape run: %s ═══", kind)

	// Fetching
	o.logState(kind, StateFetching)
	html, err := o.fetcher.Fetch(ctx, o.urlsFor(kind))
	if err != nil {
		return o.fail(kind, started, err)
	}

	// Parsing
	o.logState(kind, StateParsing)
	doc, err := ParseHTML(html)
	if err != nil {
		return o.fail(kind, started, err)
	}

	table, err := o.locator.Locate(doc, kind)
	if err != nil {
		return o.fail(kind, started, err)
	}

	rows := ExtractRows(table)
	candidates := 0
	for _, row := range rows {
		if len(row) >= minColumns {
			candidates++
		}
	}
	if candidates == 0 {
		return o.fail(kind, started, fmt.Errorf("%w: %s", ErrNoDataRows, kind))
	}

	// Normalizing
	o.logState(kind, StateNormalizing)
	cols := HeaderColumns(rows, kind)
	if cols == nil {
		log.Printf("  ⚠️  No usable header row, falling back to positional mapping")
	}

	var standings []*store.Standing
	var games []*store.Game
	rejected := 0

	for _, row := range rows {
		switch kind {
		case KindStandings:
			raw, ok := MapStandingsRow(row, cols)
			if !ok {
				rejected++
				continue
			}
			rec, err := NormalizeStanding(raw, started)
			if err != nil {
				rejected++
				log.Printf("  ⚠️  Skipping row: %v", err)
				continue
			}
			standings = append(standings, rec)

		case KindSchedule:
			raw, ok := MapGameRow(row, cols)
			if !ok {
				rejected++
				continue
			}
			rec, err := NormalizeGame(raw, started)
			if err != nil {
				rejected++
				log.Printf("  ⚠️  Skipping row: %v", err)
				continue
			}
			games = append(games, rec)
		}
	}

	requested := len(standings) + len(games)
	if requested == 0 {
		return o.fail(kind, started,
			fmt.Errorf("%w: %d candidate rows, all rejected", ErrAllRowsRejected, candidates))
	}

	// Saving
	o.logState(kind, StateSaving)
	var saved int
	switch kind {
	case KindStandings:
		saved, err = o.saveStandings(ctx, standings)
	case KindSchedule:
		saved, err = o.saveGames(ctx, games)
	}
	if err != nil {
		return o.fail(kind, started, fmt.Errorf("%w: %v", ErrSinkUnreachable, err))
	}

	o.logState(kind, StateDone)
	result := Result{
		Kind:      kind,
		Success:   true,
		Requested: requested,
		Saved:     saved,
		Skipped:   rejected + (requested - saved),
		Timestamp: started,
	}
	log.Printf("✓ Scrape %s complete: %d requested, %d saved, %d skipped",
		kind, result.Requested, result.Saved, result.Skipped)
	return result, nil
}

func (o *Orchestrator) saveStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	if o.config.Retention == RetentionReplace {
		return o.sink.ReplaceStandings(ctx, recs)
	}
	return o.sink.UpsertStandings(ctx, recs)
}

func (o *Orchestrator) saveGames(ctx context.Context, recs []*store.Game) (int, error) {
	if o.config.Retention == RetentionReplace {
		return o.sink.ReplaceGames(ctx, recs)
	}
	return o.sink.UpsertGames(ctx, recs)
}

func (o *Orchestrator) urlsFor(kind Kind) []string {
	if kind == KindSchedule {
		return o.config.ScheduleURLs
	}
	return o.config.StandingsURLs
}

// tryAcquire marks kind as running; false when a run is already in flight.
func (o *Orchestrator) tryAcquire(kind Kind) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running == nil {
		o.running = make(map[Kind]bool)
	}
	if o.running[kind] {
		return false
	}
	o.running[kind] = true
	return true
}

func (o *Orchestrator) release(kind Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running[kind] = false
}

func (o *Orchestrator) logState(kind Kind, state State) {
	log.Printf("  → %s: %s", kind, state)
}

func (o *Orchestrator) fail(kind Kind, started time.Time, err error) (Result, error) {
	log.Printf("  ❌ Scrape %s failed: %v", kind, err)
	return Result{
		Kind:      kind,
		Success:   false,
		Error:     err.Error(),
		Timestamp: started,
	}, err
}
