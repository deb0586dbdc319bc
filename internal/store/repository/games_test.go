package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/stretchr/testify/require"
)

func gameColumns() []string {
	return []string{"id", "game_date", "home_team", "away_team", "home_score", "away_score", "has_result", "location", "updated_at"}
}

func TestGamesGetUpcoming(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	now := time.Now()
	gameDate := now.Add(48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE game_date >= $1")).
		WithArgs(now, 10).
		WillReturnRows(sqlmock.NewRows(gameColumns()).
			AddRow(1, gameDate, "בני יהודה תל אביב", "מכבי חיפה", 0, 0, false, "אולם ביתי", now))

	games, err := repo.GetUpcoming(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "בני יהודה תל אביב", games[0].HomeTeam)
	require.False(t, games[0].HasResult)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGamesGetResultsFiltersUnplayed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("has_result = TRUE")).
		WithArgs(now, 20).
		WillReturnRows(sqlmock.NewRows(gameColumns()).
			AddRow(7, now.Add(-72*time.Hour), "בני יהודה תל אביב", "מכבי חיפה", 46, 61, true, "היכל ספורט", now))

	games, err := repo.GetResults(context.Background(), now, 20)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.True(t, games[0].HasResult)
	require.Equal(t, 61, games[0].AwayScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGamesUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	rec := &store.Game{
		GameDate:  time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC),
		HomeTeam:  "בני יהודה תל אביב",
		AwayTeam:  "מכבי חיפה",
		HomeScore: 46,
		AwayScore: 61,
		HasResult: true,
		Location:  "היכל ספורט",
		UpdatedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (game_date, home_team, away_team) DO UPDATE")).
		WithArgs(rec.GameDate, rec.HomeTeam, rec.AwayTeam, rec.HomeScore, rec.AwayScore,
			rec.HasResult, rec.Location, rec.UpdatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	require.NoError(t, repo.Upsert(context.Background(), rec))
	require.Equal(t, 9, rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGamesReplaceAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	recs := []*store.Game{
		{HomeTeam: "א", AwayTeam: "ב", GameDate: time.Now()},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM games")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("INSERT INTO games").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	saved, err := repo.ReplaceAll(context.Background(), recs)
	require.NoError(t, err)
	require.Equal(t, 1, saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGamesUpsertAllFailsWhenNothingSaved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGameRepository(db)

	recs := []*store.Game{{HomeTeam: "א", AwayTeam: "ב"}}

	mock.ExpectQuery("ON CONFLICT").WillReturnError(errors.New("connection refused"))

	saved, err := repo.UpsertAll(context.Background(), recs)
	require.Error(t, err)
	require.Zero(t, saved)
}

func TestRunsInsertAndRecent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepository(db)

	run := &store.ScrapeRun{
		Kind: "standings", Success: true,
		Requested: 12, Saved: 12, Skipped: 1,
		StartedAt: time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scrape_runs")).
		WithArgs(run.Kind, run.Success, run.Requested, run.Saved, run.Skipped, run.Reason, run.StartedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	require.NoError(t, repo.Insert(context.Background(), run))
	require.Equal(t, 5, run.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scrape_runs")).
		WithArgs("standings", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "success", "requested", "saved", "skipped", "reason", "started_at"}).
			AddRow(5, "standings", true, 12, 12, 1, "", run.StartedAt))

	runs, err := repo.Recent(context.Background(), "standings", 20)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.True(t, runs[0].Success)
	require.NoError(t, mock.ExpectationsWereMet())
}
