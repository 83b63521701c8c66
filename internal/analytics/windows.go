package analytics

import "time"

const (
	dailyBuckets        = 30
	restockLookbackDays = 14
	dateLayout          = "2006-01-02"
)

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayWindow covers the calendar day containing t. Days around DST changes
// are 23 or 25 hours long.
func dayWindow(t time.Time, loc *time.Location) Window {
	start := startOfDay(t, loc)
	y, m, d := start.Date()
	return Window{Start: start, End: time.Date(y, m, d+1, 0, 0, 0, 0, loc)}
}

// Windows are all ranges of one report, derived from the same now.
type Windows struct {
	Now             time.Time
	Today           Window
	LastWeekSameDay Window
	Last7Days       Window
	Last14Days      Window
	Last30Days      Window
	PriorPeriod     Window
	// Days holds dailyBuckets calendar days ending today, oldest first.
	Days []Window
}

func NewWindows(now time.Time, loc *time.Location) Windows {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	ago := func(days int) time.Time { return now.AddDate(0, 0, -days) }

	w := Windows{
		Now:             now,
		Today:           Window{Start: startOfDay(now, loc), End: now},
		LastWeekSameDay: dayWindow(ago(7), loc),
		Last7Days:       Window{Start: ago(7), End: now},
		Last14Days:      Window{Start: ago(restockLookbackDays), End: now},
		Last30Days:      Window{Start: ago(30), End: now},
		PriorPeriod:     Window{Start: ago(60), End: ago(30)},
		Days:            make([]Window, 0, dailyBuckets),
	}
	for i := dailyBuckets - 1; i >= 0; i-- {
		w.Days = append(w.Days, dayWindow(ago(i), loc))
	}
	return w
}

// Daily spans every day bucket.
func (w Windows) Daily() Window {
	return Window{Start: w.Days[0].Start, End: w.Days[len(w.Days)-1].End}
}
