package scrape

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const standingsTable = `
<table id="standings">
	<tr><th>מיקום</th><th>קבוצה</th><th>משחקים</th><th>נצחונות</th><th>הפסדים</th><th>נקודות</th></tr>
	<tr><td>1</td><td>מכבי חיפה</td><td>7</td><td>6</td><td>1</td><td>34</td></tr>
	<tr><td>2</td><td>הפועל ירושלים</td><td>7</td><td>5</td><td>2</td><td>33</td></tr>
	<tr><td>3</td><td>בני יהודה תל אביב</td><td>7</td><td>5</td><td>2</td><td>33</td></tr>
</table>`

const scheduleTable = `
<table id="schedule">
	<tr><th>תאריך</th><th>שעה</th><th>מארחת</th><th>אורחת</th><th>תוצאה</th><th>אולם</th></tr>
	<tr><td>15/03/25</td><td>18:30</td><td>בני יהודה תל אביב</td><td>מכבי חיפה</td><td>61 - 46</td><td>היכל ספורט</td></tr>
	<tr><td>22/03/25</td><td>19:00</td><td>הפועל ירושלים</td><td>בני יהודה תל אביב</td><td></td><td></td></tr>
</table>`

const navTable = `
<table id="nav">
	<tr><td>ראשי</td><td>אודות</td></tr>
</table>`

func TestLocateStandingsByHeaderVocabulary(t *testing.T) {
	doc, err := ParseHTML("<html><body>" + navTable + scheduleTable + standingsTable + "</body></html>")
	require.NoError(t, err)

	tbl, err := NewLocator("").Locate(doc, KindStandings)
	require.NoError(t, err)

	id, _ := tbl.Attr("id")
	require.Equal(t, "standings", id)
}

func TestLocateScheduleByHeaderVocabulary(t *testing.T) {
	doc, err := ParseHTML("<html><body>" + standingsTable + navTable + scheduleTable + "</body></html>")
	require.NoError(t, err)

	tbl, err := NewLocator("").Locate(doc, KindSchedule)
	require.NoError(t, err)

	id, _ := tbl.Attr("id")
	require.Equal(t, "schedule", id)
}

func TestLocateNeverPicksOtherKindsTable(t *testing.T) {
	// Only the schedule table is present; its cells carry plausible ranks, but
	// its header speaks the schedule vocabulary so it is excluded outright.
	doc, err := ParseHTML("<html><body>" + scheduleTable + "</body></html>")
	require.NoError(t, err)

	_, err = NewLocator("").Locate(doc, KindStandings)
	require.True(t, errors.Is(err, ErrNoMatchingTable))
}

func TestLocateByContentSniffing(t *testing.T) {
	// No vocabulary in the header row, but the cells look like standings.
	headerless := `
	<table id="raw">
		<tr><td>1</td><td>מכבי חיפה</td><td>7</td><td>6</td><td>1</td><td>34</td></tr>
		<tr><td>2</td><td>הפועל ירושלים</td><td>7</td><td>5</td><td>2</td><td>33</td></tr>
	</table>`

	doc, err := ParseHTML("<html><body>" + navTable + headerless + "</body></html>")
	require.NoError(t, err)

	tbl, err := NewLocator("").Locate(doc, KindStandings)
	require.NoError(t, err)

	id, _ := tbl.Attr("id")
	require.Equal(t, "raw", id)
}

func TestLocatePrefersMarkerTable(t *testing.T) {
	decoy := `
	<table id="decoy">
		<tr><th>מיקום</th><th>קבוצה</th><th>משחקים</th><th>נצחונות</th><th>הפסדים</th><th>נקודות</th></tr>
		<tr><td>1</td><td>קבוצה אחרת</td><td>5</td><td>4</td><td>1</td><td>24</td></tr>
		<tr><td>2</td><td>עוד קבוצה</td><td>5</td><td>3</td><td>2</td><td>23</td></tr>
		<tr><td>3</td><td>שלישית</td><td>5</td><td>2</td><td>3</td><td>22</td></tr>
		<tr><td>4</td><td>רביעית</td><td>5</td><td>1</td><td>4</td><td>21</td></tr>
	</table>`

	// The decoy has more rows; the marker must still win.
	doc, err := ParseHTML("<html><body>" + decoy + standingsTable + "</body></html>")
	require.NoError(t, err)

	tbl, err := NewLocator("בני יהודה").Locate(doc, KindStandings)
	require.NoError(t, err)

	id, _ := tbl.Attr("id")
	require.Equal(t, "standings", id)
}

func TestLocatePrefersMostDataRowsWithoutMarker(t *testing.T) {
	small := `
	<table id="small">
		<tr><th>מיקום</th><th>קבוצה</th><th>משחקים</th><th>נצחונות</th><th>הפסדים</th><th>נקודות</th></tr>
		<tr><td>1</td><td>יחידה</td><td>2</td><td>1</td><td>1</td><td>3</td></tr>
	</table>`

	doc, err := ParseHTML("<html><body>" + small + standingsTable + "</body></html>")
	require.NoError(t, err)

	tbl, err := NewLocator("").Locate(doc, KindStandings)
	require.NoError(t, err)

	id, _ := tbl.Attr("id")
	require.Equal(t, "standings", id)
}

func TestLocateFailsOnEmptyPage(t *testing.T) {
	doc, err := ParseHTML("<html><body><p>no tables here</p></body></html>")
	require.NoError(t, err)

	_, err = NewLocator("").Locate(doc, KindStandings)
	require.True(t, errors.Is(err, ErrNoMatchingTable))
}
