package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DefaultLookbackYears is the fetch depth used when no start date is known.
const DefaultLookbackYears = 2

// DateWindow is an inclusive calendar-date range in UTC.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// ResolveWindow applies the fetch defaults: end is today, start is two years
// before end.
func ResolveWindow(start, end *time.Time, now time.Time) DateWindow {
	w := DateWindow{End: truncateDay(now)}
	if end != nil && !end.IsZero() {
		w.End = truncateDay(*end)
	}
	if start != nil && !start.IsZero() {
		w.Start = truncateDay(*start)
	} else {
		w.Start = w.End.AddDate(-DefaultLookbackYears, 0, 0)
	}
	return w
}

// IncrementalStart turns a sync cursor into the next fetch start date. The
// cursor day minus one tolerates timestamps truncated at the source.
func IncrementalStart(cursor *time.Time) *time.Time {
	if cursor == nil || cursor.IsZero() {
		return nil
	}
	start := truncateDay(*cursor).AddDate(0, 0, -1)
	return &start
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
