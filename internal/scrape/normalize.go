package scrape

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/courtside-app/courtside/internal/store"
)

// awayScoreFirst fixes which side of the dash in a "61 - 46" score cell
// belongs to which team. The site's historical markup has shown both orders;
// the majority of observed layouts put the away score left of the dash, so
// that is the single convention applied everywhere. Verify against live data
// before trusting it for a new season.
const awayScoreFirst = true

// DefaultVenue substitutes for a missing location cell. Matches the label the
// app shows for home-gym games.
const DefaultVenue = "אולם ביתי"

// siteLocation is the timezone game times are published in.
var siteLocation = mustLoadLocation("Asia/Jerusalem")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NormalizeStanding converts raw standings fields into a typed record.
// Identifying fields that fail to parse reject the row; plain numeric fields
// default to zero so NaN-like garbage never propagates.
func NormalizeStanding(raw *RawStanding, now time.Time) (*store.Standing, error) {
	team := strings.TrimSpace(raw.Team)
	if team == "" {
		return nil, fmt.Errorf("%w: empty team name", ErrMalformedRecord)
	}

	position, err := strconv.Atoi(strings.TrimSpace(raw.Position))
	if err != nil {
		return nil, fmt.Errorf("%w: position %q does not parse", ErrMalformedRecord, raw.Position)
	}

	rec := &store.Standing{
		TeamName:    team,
		Position:    position,
		GamesPlayed: atoiOrZero(raw.Played),
		Wins:        atoiOrZero(raw.Wins),
		Losses:      atoiOrZero(raw.Losses),
		Points:      atoiOrZero(raw.Points),
		UpdatedAt:   now,
	}

	// When all three counters came from independent columns they must agree.
	// A mismatch is logged, never silently trusted.
	if raw.Wins != "" && raw.Losses != "" && raw.Played != "" {
		if rec.Wins+rec.Losses != rec.GamesPlayed {
			log.Printf("  ⚠️  %s: wins(%d)+losses(%d) != games played(%d)",
				rec.TeamName, rec.Wins, rec.Losses, rec.GamesPlayed)
		}
	}

	return rec, nil
}

// NormalizeGame converts raw schedule fields into a typed record, combining
// the DD/MM/YY date and HH:MM time cells into a single instant.
func NormalizeGame(raw *RawGame, now time.Time) (*store.Game, error) {
	home := strings.TrimSpace(raw.Home)
	away := strings.TrimSpace(raw.Away)
	if home == "" || away == "" {
		return nil, fmt.Errorf("%w: missing team name", ErrMalformedRecord)
	}

	gameDate, err := parseGameDate(raw.Date, raw.Time)
	if err != nil {
		return nil, err
	}

	rec := &store.Game{
		GameDate:  gameDate,
		HomeTeam:  home,
		AwayTeam:  away,
		Location:  strings.TrimSpace(raw.Venue),
		UpdatedAt: now,
	}
	if rec.Location == "" {
		rec.Location = DefaultVenue
	}

	if score := strings.TrimSpace(raw.Score); score != "" {
		away, home, ok := splitScore(score)
		if ok {
			rec.AwayScore = away
			rec.HomeScore = home
			rec.HasResult = true
		}
	}

	return rec, nil
}

// parseGameDate combines "DD/MM/YY" and "HH:MM" into one instant. Two-digit
// years are in the 2000s; a missing or malformed time defaults to midnight.
// A malformed date rejects the row.
func parseGameDate(dateText, timeText string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(dateText), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: date %q is not DD/MM/YY", ErrMalformedRecord, dateText)
	}

	day, errD := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errD != nil || errM != nil || errY != nil {
		return time.Time{}, fmt.Errorf("%w: date %q has non-numeric tokens", ErrMalformedRecord, dateText)
	}
	if year < 100 {
		year += 2000
	}

	hour, minute := 0, 0
	if clock := strings.TrimSpace(timeText); clock != "" {
		if tokens := strings.Split(clock, ":"); len(tokens) == 2 {
			if h, err := strconv.Atoi(tokens[0]); err == nil {
				hour = h
			}
			if m, err := strconv.Atoi(tokens[1]); err == nil {
				minute = m
			}
		}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, siteLocation), nil
}

// splitScore parses "A - B" into (away, home) per the fixed convention.
func splitScore(text string) (awayScore, homeScore int, ok bool) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}

	left, errL := strconv.Atoi(strings.TrimSpace(parts[0]))
	right, errR := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errL != nil || errR != nil || left < 0 || right < 0 {
		return 0, 0, false
	}

	if awayScoreFirst {
		return left, right, true
	}
	return right, left, true
}

// atoiOrZero parses a numeric cell, defaulting to 0 on failure.
func atoiOrZero(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
