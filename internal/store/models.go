package store

import (
	"time"
)

// Standing represents one team's row in the league table.
// TeamName is the natural key; the whole set is refreshed on every
// successful scrape cycle.
type Standing struct {
	ID          int       `json:"id" db:"id"`
	TeamName    string    `json:"name" db:"name"`
	Position    int       `json:"position" db:"position"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	Wins        int       `json:"wins" db:"wins"`
	Losses      int       `json:"losses" db:"losses"`
	Points      int       `json:"points" db:"points"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Game represents one scheduled or completed fixture.
// The natural key is (GameDate, HomeTeam, AwayTeam). HasResult is the only
// reliable signal that a game was played; 0-0 on an upcoming game is a
// placeholder, not a result.
type Game struct {
	ID        int       `json:"id" db:"id"`
	GameDate  time.Time `json:"game_date" db:"game_date"`
	HomeTeam  string    `json:"home_team" db:"home_team"`
	AwayTeam  string    `json:"away_team" db:"away_team"`
	HomeScore int       `json:"home_score" db:"home_score"`
	AwayScore int       `json:"away_score" db:"away_score"`
	HasResult bool      `json:"has_result" db:"has_result"`
	Location  string    `json:"location" db:"location"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ScrapeRun is the persisted outcome of one orchestrator run. Keeping every
// run means "fetched zero candidate rows" and "rejected every row" stay
// distinguishable after the fact, which matters when the source site changes
// layout without notice.
type ScrapeRun struct {
	ID        int       `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	Success   bool      `json:"success" db:"success"`
	Requested int       `json:"requested" db:"requested"`
	Saved     int       `json:"saved" db:"saved"`
	Skipped   int       `json:"skipped" db:"skipped"`
	Reason    string    `json:"reason,omitempty" db:"reason"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
}
