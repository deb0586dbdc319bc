// Package scrape implements the fetch → locate → extract → map → normalize →
// upsert pipeline that keeps league standings and the game schedule in sync
// with the association website. The upstream markup has changed shape several
// times, so every stage is built to degrade row-by-row instead of failing a
// whole run on one bad cell.
package scrape

import (
	"context"
	"errors"

	"github.com/courtside-app/courtside/internal/store"
)

// Kind selects which of the two supported tables a run targets.
type Kind string

const (
	KindStandings Kind = "standings"
	KindSchedule  Kind = "schedule"
)

// Valid reports whether k is one of the supported scrape kinds.
func (k Kind) Valid() bool {
	return k == KindStandings || k == KindSchedule
}

// Pipeline failure taxonomy. Row-level problems are counted and skipped;
// these sentinels mark page-level or connectivity failures that abort a run.
var (
	// ErrFetchExhausted means every configured mirror URL failed.
	ErrFetchExhausted = errors.New("fetch exhausted: all mirror URLs failed")

	// ErrNoMatchingTable means the page fetched but no table matched the
	// requested kind. Usually a sign the source changed its layout.
	ErrNoMatchingTable = errors.New("no matching table found in document")

	// ErrMalformedRecord marks a single row whose fields do not parse.
	// Callers skip the row and count it; it never aborts a batch.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNoDataRows means the located table produced zero candidate rows.
	ErrNoDataRows = errors.New("table contained no candidate data rows")

	// ErrAllRowsRejected means candidate rows existed but every one was
	// rejected during mapping or normalization.
	ErrAllRowsRejected = errors.New("all candidate rows were rejected")

	// ErrRunInProgress means a scrape of the same kind is already running.
	ErrRunInProgress = errors.New("scrape already in progress")

	// ErrSinkUnreachable means the sink failed for the whole batch, not for
	// individual records.
	ErrSinkUnreachable = errors.New("sink unreachable")
)

// RawRow is the ordered cell text of one table row, trimmed. It carries no
// semantics; the mapper decides what each cell means.
type RawRow []string

// minColumns is the smallest row the mapper will consider a data row.
// Shorter rows pass through extraction untouched and are rejected there.
const minColumns = 5

// Sink persists normalized records. Upsert methods are keyed by the records'
// natural identifiers and must fail per-record; Replace methods clear the
// table and insert the batch. A run uses one strategy, never both.
type Sink interface {
	UpsertStandings(ctx context.Context, recs []*store.Standing) (saved int, err error)
	ReplaceStandings(ctx context.Context, recs []*store.Standing) (saved int, err error)
	UpsertGames(ctx context.Context, recs []*store.Game) (saved int, err error)
	ReplaceGames(ctx context.Context, recs []*store.Game) (saved int, err error)
}

// HTMLFetcher retrieves raw HTML, trying each URL in order.
type HTMLFetcher interface {
	Fetch(ctx context.Context, urls []string) (string, error)
}
