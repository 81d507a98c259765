package stats

import "time"

// Window is a closed time interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Trailing returns the window of length d that ends at asOf.
func Trailing(asOf time.Time, d time.Duration) Window {
	return Window{Start: asOf.Add(-d), End: asOf}
}

// Contains reports whether t falls inside the window. Both ends are
// inclusive, so an event exactly d before asOf still counts.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// MinuteBucket truncates t to the start of its UTC minute.
func MinuteBucket(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

// Latest returns the most recent of the given times, or the zero time
// when none are supplied.
func Latest(times ...time.Time) time.Time {
	var latest time.Time
	for _, t := range times {
		if t.After(latest) {
			latest = t
		}
	}
	return latest
}
