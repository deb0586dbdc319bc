package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractRows converts every row of a table into its ordered, trimmed cell
// texts. This stage is purely mechanical: header rows, decoration, and
// too-short rows all pass through untouched so the mapper's rejection logic
// stays the single place that decides what a row means.
func ExtractRows(tbl *goquery.Selection) []RawRow {
	var rows []RawRow

	tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells RawRow
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		rows = append(rows, cells)
	})

	return rows
}
