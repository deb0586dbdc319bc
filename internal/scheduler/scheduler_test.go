package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtside-app/courtside/internal/scrape"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/stretchr/testify/require"
)

const standingsPage = `<html><body><table>
	<tr><th>מיקום</th><th>קבוצה</th><th>משחקים</th><th>נצחונות</th><th>הפסדים</th><th>נקודות</th></tr>
	<tr><td>1</td><td>מכבי חיפה</td><td>7</td><td>6</td><td>1</td><td>34</td></tr>
	<tr><td>2</td><td>בני יהודה תל אביב</td><td>7</td><td>5</td><td>2</td><td>33</td></tr>
</table></body></html>`

type pageFetcher struct {
	html  string
	fails int
	calls int
}

func (p *pageFetcher) Fetch(ctx context.Context, urls []string) (string, error) {
	p.calls++
	if p.calls <= p.fails {
		return "", scrape.ErrFetchExhausted
	}
	return p.html, nil
}

type nullSink struct{ saved int }

func (n *nullSink) UpsertStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	n.saved += len(recs)
	return len(recs), nil
}
func (n *nullSink) ReplaceStandings(ctx context.Context, recs []*store.Standing) (int, error) {
	return n.UpsertStandings(ctx, recs)
}
func (n *nullSink) UpsertGames(ctx context.Context, recs []*store.Game) (int, error) {
	n.saved += len(recs)
	return len(recs), nil
}
func (n *nullSink) ReplaceGames(ctx context.Context, recs []*store.Game) (int, error) {
	return n.UpsertGames(ctx, recs)
}

type captureNotifier struct{ events []interface{} }

func (c *captureNotifier) BroadcastRefresh(result interface{}) {
	c.events = append(c.events, result)
}

type capturePublisher struct{ kinds []string }

func (c *capturePublisher) PublishRefresh(ctx context.Context, kind string, result interface{}) error {
	c.kinds = append(c.kinds, kind)
	return nil
}

type captureInvalidator struct{ calls int }

func (c *captureInvalidator) InvalidateCache(ctx context.Context) { c.calls++ }

func newTestScheduler(fetcher scrape.HTMLFetcher, sink scrape.Sink) *Scheduler {
	orch := scrape.NewOrchestrator(fetcher, sink, scrape.Config{
		StandingsURLs: []string{"http://example.invalid/"},
		ScheduleURLs:  []string{"http://example.invalid/"},
	})
	return New(orch, nil, &Config{DailyHour: 3, MaxRetries: 3, RetryDelay: time.Millisecond})
}

func TestTriggerManualFansOut(t *testing.T) {
	sink := &nullSink{}
	sched := newTestScheduler(&pageFetcher{html: standingsPage}, sink)

	notifier := &captureNotifier{}
	publisher := &capturePublisher{}
	invalidator := &captureInvalidator{}
	sched.SetNotifier(notifier)
	sched.SetPublisher(publisher)
	sched.SetCacheInvalidator(scrape.KindStandings, invalidator)

	result, err := sched.TriggerManual(context.Background(), scrape.KindStandings)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Saved)
	require.Equal(t, 2, sink.saved)

	require.Len(t, notifier.events, 1)
	require.Equal(t, []string{"standings"}, publisher.kinds)
	require.Equal(t, 1, invalidator.calls)
}

func TestTriggerManualRetriesTransientFailures(t *testing.T) {
	fetcher := &pageFetcher{html: standingsPage, fails: 2}
	sched := newTestScheduler(fetcher, &nullSink{})

	result, err := sched.TriggerManual(context.Background(), scrape.KindStandings)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 3, fetcher.calls)
}

func TestTriggerManualGivesUpAfterMaxRetries(t *testing.T) {
	fetcher := &pageFetcher{html: standingsPage, fails: 10}
	sink := &nullSink{}
	sched := newTestScheduler(fetcher, sink)

	notifier := &captureNotifier{}
	sched.SetNotifier(notifier)

	_, err := sched.TriggerManual(context.Background(), scrape.KindStandings)
	require.True(t, errors.Is(err, scrape.ErrFetchExhausted))
	require.Equal(t, 3, fetcher.calls)
	// Nothing is pushed for a failed run.
	require.Empty(t, notifier.events)
	require.Zero(t, sink.saved)
}
