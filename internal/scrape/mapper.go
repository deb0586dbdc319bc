package scrape

import (
	"strconv"
	"strings"
)

// Column label variants per semantic field, covering every locale the site
// has served. Matching is substring-based on lowercased header cells.
var standingsLabels = map[string][]string{
	"position": {"מיקום", "דירוג", "position", "pos"},
	"team":     {"קבוצה", "team", "name"},
	"played":   {"משחקים", "מש'", "played", "games"},
	"wins":     {"נצחונות", "נצ'", "wins"},
	"losses":   {"הפסדים", "הפ'", "losses"},
	"points":   {"נקודות", "נק'", "points"},
}

var scheduleLabels = map[string][]string{
	"date":  {"תאריך", "date"},
	"time":  {"שעה", "time"},
	"home":  {"מארחת", "home"},
	"away":  {"אורחת", "away", "visitor"},
	"score": {"תוצאה", "score", "result"},
	"venue": {"אולם", "מקום", "venue", "location"},
}

// headerKeywords is the defense against mis-parsed header rows leaking into
// data: a row whose name cell matches any of these is decoration, not a team.
var headerKeywords = []string{"מיקום", "קבוצה", "ball", "team", "time", "date", "header"}

// columnMap binds semantic fields to cell indices for one table.
type columnMap map[string]int

// Positional fallbacks tried when no usable header exists. The first is the
// compact six-column table, the second the wide layout observed in row dumps
// where the name sits at index 10. A candidate is accepted only when its
// numbers cross-check (wins+losses == played, or a plausible rank).
var standingsFallbackLayouts = []columnMap{
	{"position": 0, "team": 1, "played": 2, "wins": 3, "losses": 4, "points": 5},
	{"position": 0, "points": 1, "wins": 6, "losses": 7, "played": 8, "team": 10},
}

var scheduleFallbackLayouts = []columnMap{
	{"date": 0, "time": 1, "home": 2, "away": 3, "score": 4, "venue": 5},
	// Round-number-first layout.
	{"date": 1, "time": 2, "home": 3, "score": 4, "away": 5, "venue": 6},
}

// RawStanding carries one standings row's cells, still as text.
type RawStanding struct {
	Position string
	Team     string
	Played   string
	Wins     string
	Losses   string
	Points   string
}

// RawGame carries one schedule row's cells, still as text.
type RawGame struct {
	Date  string
	Time  string
	Home  string
	Away  string
	Score string
	Venue string
}

// HeaderColumns scans rows for a header row and builds the field → index
// mapping for the given kind. Returns nil when no row matches enough labels;
// callers then fall back to positional mapping.
func HeaderColumns(rows []RawRow, kind Kind) columnMap {
	labels := standingsLabels
	if kind == KindSchedule {
		labels = scheduleLabels
	}

	for _, row := range rows {
		cols := columnMap{}
		for idx, cell := range row {
			text := strings.ToLower(cell)
			if text == "" {
				continue
			}
			for field, variants := range labels {
				if _, taken := cols[field]; taken {
					continue
				}
				for _, variant := range variants {
					if strings.Contains(text, variant) {
						cols[field] = idx
						break
					}
				}
			}
		}

		// Three matched labels is enough confidence that this really is the
		// header and not a team name containing a stray keyword.
		if len(cols) >= 3 {
			return cols
		}
	}

	return nil
}

// MapStandingsRow maps one row's cells to raw standings fields.
// The second return is false when the row is not a data row.
func MapStandingsRow(cells RawRow, cols columnMap) (*RawStanding, bool) {
	if len(cells) < minColumns {
		return nil, false
	}

	if cols != nil {
		raw := &RawStanding{
			Position: cellAt(cells, cols, "position"),
			Team:     cellAt(cells, cols, "team"),
			Played:   cellAt(cells, cols, "played"),
			Wins:     cellAt(cells, cols, "wins"),
			Losses:   cellAt(cells, cols, "losses"),
			Points:   cellAt(cells, cols, "points"),
		}
		if !validStandingsRow(raw) {
			return nil, false
		}
		return raw, true
	}

	// No usable header: try each known layout and keep the first whose
	// numbers are self-consistent.
	var fallback *RawStanding
	for _, layout := range standingsFallbackLayouts {
		raw := &RawStanding{
			Position: cellAt(cells, layout, "position"),
			Team:     cellAt(cells, layout, "team"),
			Played:   cellAt(cells, layout, "played"),
			Wins:     cellAt(cells, layout, "wins"),
			Losses:   cellAt(cells, layout, "losses"),
			Points:   cellAt(cells, layout, "points"),
		}
		if !validStandingsRow(raw) {
			continue
		}
		if recordConsistent(raw) {
			return raw, true
		}
		if fallback == nil {
			fallback = raw
		}
	}

	// A plausible rank without the wins+losses cross-check is still accepted;
	// the normalizer logs the mismatch rather than trusting it silently.
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// MapGameRow maps one row's cells to raw schedule fields.
func MapGameRow(cells RawRow, cols columnMap) (*RawGame, bool) {
	if len(cells) < minColumns {
		return nil, false
	}

	if cols != nil {
		raw := &RawGame{
			Date:  cellAt(cells, cols, "date"),
			Time:  cellAt(cells, cols, "time"),
			Home:  cellAt(cells, cols, "home"),
			Away:  cellAt(cells, cols, "away"),
			Score: cellAt(cells, cols, "score"),
			Venue: cellAt(cells, cols, "venue"),
		}
		if !validGameRow(raw) {
			return nil, false
		}
		return raw, true
	}

	for _, layout := range scheduleFallbackLayouts {
		raw := &RawGame{
			Date:  cellAt(cells, layout, "date"),
			Time:  cellAt(cells, layout, "time"),
			Home:  cellAt(cells, layout, "home"),
			Away:  cellAt(cells, layout, "away"),
			Score: cellAt(cells, layout, "score"),
			Venue: cellAt(cells, layout, "venue"),
		}
		if validGameRow(raw) {
			return raw, true
		}
	}
	return nil, false
}

// cellAt returns the cell at the mapped index, or "" when the field is not
// mapped or the row is too short.
func cellAt(cells RawRow, cols columnMap, field string) string {
	idx, ok := cols[field]
	if !ok || idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// validStandingsRow rejects header rows, decoration, and garbage: the team
// name must exist and not be a header keyword, and the position must be a
// plausible rank.
func validStandingsRow(raw *RawStanding) bool {
	if raw.Team == "" || isHeaderKeyword(raw.Team) {
		return false
	}

	rank, err := strconv.Atoi(strings.TrimSpace(raw.Position))
	if err != nil || rank < minPlausibleRank || rank > maxPlausibleRank {
		return false
	}
	return true
}

// validGameRow requires a recognizable date and two real team names.
func validGameRow(raw *RawGame) bool {
	if !datePattern.MatchString(raw.Date) {
		return false
	}
	if raw.Home == "" || raw.Away == "" {
		return false
	}
	if isHeaderKeyword(raw.Home) || isHeaderKeyword(raw.Away) {
		return false
	}
	return true
}

// recordConsistent cross-checks wins + losses == played when all three
// parsed. Used to choose between fallback layouts.
func recordConsistent(raw *RawStanding) bool {
	wins, errW := strconv.Atoi(strings.TrimSpace(raw.Wins))
	losses, errL := strconv.Atoi(strings.TrimSpace(raw.Losses))
	played, errP := strconv.Atoi(strings.TrimSpace(raw.Played))
	if errW != nil || errL != nil || errP != nil {
		return false
	}
	return wins+losses == played
}

// isHeaderKeyword reports whether a would-be team name is actually a column
// label in some locale.
func isHeaderKeyword(name string) bool {
	text := strings.ToLower(strings.TrimSpace(name))
	for _, keyword := range headerKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
