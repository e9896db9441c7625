package usage

import "time"

// Period is a half-open billing window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// calendarAnchor puts every boundary at midnight UTC on the 1st.
var calendarAnchor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PeriodContaining returns the monthly period around now. Boundaries fall on the
// anchor's day of month and time of day, clamped to the last day of short months.
// A zero anchor means calendar months.
func PeriodContaining(anchor, now time.Time) Period {
	if anchor.IsZero() {
		anchor = calendarAnchor
	}
	anchor = anchor.UTC()
	now = now.UTC()

	start := boundary(anchor, now.Year(), now.Month())
	if start.After(now) {
		start = boundary(anchor, now.Year(), now.Month()-1)
	}
	return Period{
		Start: start,
		End:   boundary(anchor, start.Year(), start.Month()+1),
	}
}

func boundary(anchor time.Time, year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	day := anchor.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
