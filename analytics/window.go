package analytics

import "time"

const isoDate = "2006-01-02"

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// startFallback derives the default window start from the window end.
type startFallback func(end time.Time) time.Time

func daysBack(n int) startFallback {
	return func(end time.Time) time.Time {
		return startOfDay(end.AddDate(0, 0, -n))
	}
}

// monthsBack clamps to the last day of the target month, so Mar 31 minus
// one month is Feb 28 rather than Mar 3.
func monthsBack(n int) startFallback {
	return func(end time.Time) time.Time {
		y, m, d := end.Date()
		first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, end.Location())
		if last := first.AddDate(0, 1, -1).Day(); d > last {
			d = last
		}
		return first.AddDate(0, 0, d-1)
	}
}

var (
	summaryDefault = daysBack(365)
	periodDefault  = daysBack(30)
	listingDefault = monthsBack(1)
)

// ResolveWindow turns optional from/to calendar dates into a window.
//
// A supplied to expands to the last nanosecond of that day and a supplied
// from to the first instant of its day. An absent to means now; an absent
// from is computed from the end by fallback. Unparseable values never fail:
// a bad to becomes now and a bad from becomes the start of today.
func ResolveWindow(from, to string, now time.Time, loc *time.Location, fallback startFallback) Window {
	end := now
	if to != "" {
		if d, err := time.ParseInLocation(isoDate, to, loc); err == nil {
			end = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}

	start := fallback(end)
	if from != "" {
		if d, err := time.ParseInLocation(isoDate, from, loc); err == nil {
			start = d
		} else {
			start = startOfDay(now)
		}
	}
	return Window{Start: start, End: end}
}

// Previous returns the window of the same whole-day length that ends where w
// starts. Windows shorter than a day look back one day.
func (w Window) Previous() Window {
	days := int(w.End.Sub(w.Start) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return Window{Start: w.Start.AddDate(0, 0, -days), End: w.Start}
}

func (w Window) StartDate() string { return w.Start.Format(isoDate) }
func (w Window) EndDate() string { return w.End.Format(isoDate) }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
