package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/courtside-app/courtside/internal/store"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves a fixed page without the network.
type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(ctx context.Context, urls []string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

// memorySink records batches in maps keyed by natural key, so repeated upserts
// of the same records leave it unchanged.
type memorySink struct {
	mu        sync.Mutex
	standings map[string]*store.Standing
	games     map[string]*store.Game
	calls     int
}

func newMemorySink() *memorySink {
	return &memorySink{
		standings: make(map[string]*store.Standing),
		games:     make(map[string]*store.Game),
	}
}

func (m *memorySink) UpsertStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, rec := range recs {
		m.standings[rec.TeamName] = rec
	}
	return len(recs), nil
}

func (m *memorySink) ReplaceStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.standings = make(map[string]*store.Standing)
	for _, rec := range recs {
		m.standings[rec.TeamName] = rec
	}
	return len(recs), nil
}

func (m *memorySink) UpsertGames(ctx context.Context, recs []*store.Game) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	for _, rec := range recs {
		m.games[rec.GameDate.String()+rec.HomeTeam+rec.AwayTeam] = rec
	}
	return len(recs), nil
}

func (m *memorySink) ReplaceGames(ctx context.Context, recs []*store.Game) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.games = make(map[string]*store.Game)
	for _, rec := range recs {
		m.games[rec.GameDate.String()+rec.HomeTeam+rec.AwayTeam] = rec
	}
	return len(recs), nil
}

const fullPage = "<html><body>" + navTable + scheduleTable + standingsTable + "</body></html>"

func TestRunStandingsEndToEnd(t *testing.T) {
	sink := newMemorySink()
	orch := NewOrchestrator(&stubFetcher{html: fullPage}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
		ScheduleURLs:  []string{"http://example.invalid/"},
		Marker:        "בני יהודה",
	})

	result, err := orch.Run(context.Background(), KindStandings)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 3, result.Requested)
	require.Equal(t, 3, result.Saved)
	// The header row is wide enough to be a candidate but never a record.
	require.Equal(t, 1, result.Skipped)

	rec, ok := sink.standings["בני יהודה תל אביב"]
	require.True(t, ok)
	require.Equal(t, 3, rec.Position)
	require.Equal(t, 7, rec.GamesPlayed)
	require.Equal(t, 5, rec.Wins)
	require.Equal(t, 2, rec.Losses)
	require.Equal(t, 33, rec.Points)
}

func TestRunScheduleEndToEnd(t *testing.T) {
	sink := newMemorySink()
	orch := NewOrchestrator(&stubFetcher{html: fullPage}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
		ScheduleURLs:  []string{"http://example.invalid/"},
	})

	result, err := orch.Run(context.Background(), KindSchedule)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Requested)
	require.Equal(t, 2, result.Saved)
	require.Len(t, sink.games, 2)

	var played, upcoming *store.Game
	for _, g := range sink.games {
		if g.HasResult {
			played = g
		} else {
			upcoming = g
		}
	}

	require.NotNil(t, played)
	require.Equal(t, "בני יהודה תל אביב", played.HomeTeam)
	require.Equal(t, "מכבי חיפה", played.AwayTeam)
	require.Equal(t, 61, played.AwayScore)
	require.Equal(t, 46, played.HomeScore)
	require.Equal(t, "היכל ספורט", played.Location)

	require.NotNil(t, upcoming)
	require.Equal(t, DefaultVenue, upcoming.Location)
	require.Equal(t, 2025, upcoming.GameDate.Year())
}

func TestRunIsIdempotent(t *testing.T) {
	sink := newMemorySink()
	orch := NewOrchestrator(&stubFetcher{html: fullPage}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
	})

	first, err := orch.Run(context.Background(), KindStandings)
	require.NoError(t, err)

	second, err := orch.Run(context.Background(), KindStandings)
	require.NoError(t, err)

	require.Equal(t, first.Requested, second.Requested)
	require.Equal(t, first.Saved, second.Saved)
	require.Len(t, sink.standings, 3)
}

func TestRunFailsWhenAllMirrorsDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer down.Close()

	sink := newMemorySink()
	orch := NewOrchestrator(NewFetcher(2*time.Second, ""), sink, Config{
		StandingsURLs: []string{down.URL, down.URL},
	})

	result, err := orch.Run(context.Background(), KindStandings)
	require.True(t, errors.Is(err, ErrFetchExhausted))
	require.False(t, result.Success)
	require.NotEmpty(t, result.Error)
	// No partial effects: the sink is never touched on a failed fetch.
	require.Zero(t, sink.calls)
}

func TestRunRejectsUnknownKind(t *testing.T) {
	orch := NewOrchestrator(&stubFetcher{html: fullPage}, newMemorySink(), Config{})

	result, err := orch.Run(context.Background(), Kind("players"))
	require.Error(t, err)
	require.False(t, result.Success)
}

func TestRunFailsWhenAllRowsRejected(t *testing.T) {
	// A recognizable standings header, but every data row fails validation.
	page := `<html><body><table>
		<tr><th>מיקום</th><th>קבוצה</th><th>משחקים</th><th>נצחונות</th><th>הפסדים</th><th>נקודות</th></tr>
		<tr><td>999</td><td>שם כלשהו</td><td>7</td><td>6</td><td>1</td><td>34</td></tr>
	</table></body></html>`

	sink := newMemorySink()
	orch := NewOrchestrator(&stubFetcher{html: page}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
	})

	result, err := orch.Run(context.Background(), KindStandings)
	require.True(t, errors.Is(err, ErrAllRowsRejected))
	require.False(t, result.Success)
	require.Zero(t, sink.calls)
}

func TestRunFailsWhenNoTableMatches(t *testing.T) {
	page := `<html><body><p>עמוד תחזוקה</p></body></html>`

	orch := NewOrchestrator(&stubFetcher{html: page}, newMemorySink(), Config{
		StandingsURLs: []string{"http://example.invalid/"},
	})

	_, err := orch.Run(context.Background(), KindStandings)
	require.True(t, errors.Is(err, ErrNoMatchingTable))
}

// blockingSink parks the first save until released, to hold a run open.
type blockingSink struct {
	memorySink
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSink) UpsertStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return len(recs), nil
}

func TestRunRefusesConcurrentSameKind(t *testing.T) {
	sink := &blockingSink{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	orch := NewOrchestrator(&stubFetcher{html: fullPage}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
	})

	done := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background(), KindStandings)
		done <- err
	}()

	// Wait until the first run is inside its save, then race a second one.
	<-sink.entered
	_, err := orch.Run(context.Background(), KindStandings)
	require.True(t, errors.Is(err, ErrRunInProgress))

	close(sink.release)
	require.NoError(t, <-done)
}

func TestRunReplaceRetentionClearsSink(t *testing.T) {
	sink := newMemorySink()
	sink.standings["קבוצה שעזבה את הליגה"] = &store.Standing{TeamName: "קבוצה שעזבה את הליגה"}

	orch := NewOrchestrator(&stubFetcher{html: fullPage}, sink, Config{
		StandingsURLs: []string{"http://example.invalid/"},
		Retention:     RetentionReplace,
	})

	result, err := orch.Run(context.Background(), KindStandings)
	require.NoError(t, err)
	require.True(t, result.Success)

	// The stale team is gone, only the freshly scraped batch remains.
	require.Len(t, sink.standings, 3)
	_, stale := sink.standings["קבוצה שעזבה את הליגה"]
	require.False(t, stale)
}
