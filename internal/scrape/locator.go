package scrape

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Header vocabulary per kind, every locale variant seen on the site so far.
// The two sets are deliberately disjoint: the distinctive words of one kind
// are used to exclude its tables from the other kind's search.
var (
	standingsVocabulary = []string{
		"מיקום", "דירוג", "קבוצה", "נצחונות", "הפסדים", "נקודות",
		"position", "team", "wins", "losses",
	}
	scheduleVocabulary = []string{
		"תאריך", "שעה", "מארחת", "אורחת", "תוצאה", "מחזור",
		"date", "time", "home", "away", "visitor",
	}
)

// datePattern recognizes the site's DD/MM/YY date cells.
var datePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{2}\b`)

// plausibleRank bounds what the content sniffer accepts as a standings
// position. The league has never had more than a few dozen teams.
const (
	minPlausibleRank = 1
	maxPlausibleRank = 50
)

// Locator picks the one data table for a kind out of however many tables the
// page carries (navigation widgets, promo snippets, the other kind's table).
// Earlier single-strategy versions of this selection each broke on a site
// redesign, so strategies are tried in a fixed priority order and the first
// confident match wins.
type Locator struct {
	// marker is an optional string (typically a known team name) expected to
	// appear inside the real table. When set it is the strongest tiebreaker.
	marker string
}

// NewLocator creates a locator. marker may be empty.
func NewLocator(marker string) *Locator {
	return &Locator{marker: marker}
}

// ParseHTML converts raw HTML into a goquery document.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

type locateStrategy struct {
	name  string
	apply func(tables []*goquery.Selection, kind Kind) []*goquery.Selection
}

// Locate returns the single table matching kind, or ErrNoMatchingTable.
func (l *Locator) Locate(doc *goquery.Document, kind Kind) (*goquery.Selection, error) {
	var tables []*goquery.Selection
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		// A table whose header speaks the other kind's vocabulary can never
		// be the one we want, however plausible its cells look.
		if matchesVocabulary(headerText(tbl), otherVocabulary(kind)) {
			return
		}
		tables = append(tables, tbl)
	})

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no candidate tables for %s", ErrNoMatchingTable, kind)
	}

	strategies := []locateStrategy{
		{name: "header-vocabulary", apply: byHeaderVocabulary},
		{name: "content-sniffing", apply: byContentSniffing},
	}

	for _, strategy := range strategies {
		candidates := strategy.apply(tables, kind)
		if len(candidates) == 0 {
			continue
		}

		chosen := l.pickBest(candidates)
		log.Printf("  ✓ Located %s table via %s (%d candidate(s), %d data rows)",
			kind, strategy.name, len(candidates), dataRowCount(chosen))
		return chosen, nil
	}

	return nil, fmt.Errorf("%w: no table matched %s by header or content", ErrNoMatchingTable, kind)
}

// pickBest resolves between candidate tables: the marker string wins when
// present, otherwise the table with the most data rows is taken as the real
// content rather than a decorative snippet.
func (l *Locator) pickBest(candidates []*goquery.Selection) *goquery.Selection {
	if l.marker != "" {
		for _, tbl := range candidates {
			if strings.Contains(tbl.Text(), l.marker) {
				return tbl
			}
		}
	}

	best := candidates[0]
	bestRows := dataRowCount(best)
	for _, tbl := range candidates[1:] {
		if rows := dataRowCount(tbl); rows > bestRows {
			best, bestRows = tbl, rows
		}
	}
	return best
}

// byHeaderVocabulary keeps tables whose header row speaks the requested
// kind's vocabulary.
func byHeaderVocabulary(tables []*goquery.Selection, kind Kind) []*goquery.Selection {
	var out []*goquery.Selection
	for _, tbl := range tables {
		if matchesVocabulary(headerText(tbl), vocabularyFor(kind)) {
			out = append(out, tbl)
		}
	}
	return out
}

// byContentSniffing keeps tables whose cells look like the requested data:
// a plausible rank in the first cell of a wide row for standings, a DD/MM/YY
// date somewhere in a wide row for the schedule.
func byContentSniffing(tables []*goquery.Selection, kind Kind) []*goquery.Selection {
	var out []*goquery.Selection
	for _, tbl := range tables {
		sniffed := false
		tbl.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := row.Find("td, th")
			if cells.Length() < minColumns {
				return true
			}

			switch kind {
			case KindStandings:
				first := strings.TrimSpace(cells.First().Text())
				if rank, err := strconv.Atoi(first); err == nil &&
					rank >= minPlausibleRank && rank <= maxPlausibleRank {
					sniffed = true
					return false
				}
			case KindSchedule:
				if datePattern.MatchString(row.Text()) {
					sniffed = true
					return false
				}
			}
			return true
		})

		if sniffed {
			out = append(out, tbl)
		}
	}
	return out
}

// headerText returns the lowercased text of a table's first row.
func headerText(tbl *goquery.Selection) string {
	return strings.ToLower(strings.TrimSpace(tbl.Find("tr").First().Text()))
}

func vocabularyFor(kind Kind) []string {
	if kind == KindSchedule {
		return scheduleVocabulary
	}
	return standingsVocabulary
}

func otherVocabulary(kind Kind) []string {
	if kind == KindSchedule {
		return standingsVocabulary
	}
	return scheduleVocabulary
}

// matchesVocabulary reports whether text contains any of the given words.
func matchesVocabulary(text string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// dataRowCount counts rows wide enough to be data.
func dataRowCount(tbl *goquery.Selection) int {
	count := 0
	tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td, th").Length() >= minColumns {
			count++
		}
	})
	return count
}
