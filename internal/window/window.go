package window

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the on-disk and command-line date format.
const DateLayout = "2006-01-02"

// ErrEmptyRange is returned when before does not come after since.
var ErrEmptyRange = errors.New("before must be later than since")

// TimeWindow is the half-open date range [Since, Before).
type TimeWindow struct {
	Since  time.Time
	Before time.Time
}

// String returns "since..before" using DateLayout.
func (w TimeWindow) String() string {
	return w.SinceString() + ".." + w.BeforeString()
}

func (w TimeWindow) SinceString() string  { return w.Since.Format(DateLayout) }
func (w TimeWindow) BeforeString() string { return w.Before.Format(DateLayout) }

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Before)
}

// CoversMonth reports whether the month starting at month overlaps the
// window. A window opening mid-month covers that whole month's key.
func (w TimeWindow) CoversMonth(month time.Time) bool {
	return !month.Before(MonthStart(w.Since)) && month.Before(w.Before)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextMonth returns the first day of the month following t.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// Whole returns the single window covering [since, before).
func Whole(since, before time.Time) ([]TimeWindow, error) {
	if !before.After(since) {
		return nil, ErrEmptyRange
	}
	return []TimeWindow{{Since: since, Before: before}}, nil
}

// SplitByMonth splits [since, before) into consecutive calendar-month windows.
// The end of the range is capped at the first day of the month after now, so
// future months with no commits are never queried. The first window starts at
// since even when since is not the first of a month.
func SplitByMonth(since, before, now time.Time) ([]TimeWindow, error) {
	if !before.After(since) {
		return nil, ErrEmptyRange
	}

	limit := NextMonth(now)
	end := before
	if end.After(limit) {
		end = limit
	}
	if !end.After(since) {
		return nil, fmt.Errorf("range %s..%s lies after %s: %w",
			since.Format(DateLayout), before.Format(DateLayout), limit.Format(DateLayout), ErrEmptyRange)
	}

	var windows []TimeWindow
	start := since
	for start.Before(end) {
		next := NextMonth(start)
		if next.After(end) {
			next = end
		}
		windows = append(windows, TimeWindow{Since: start, Before: next})
		start = next
	}
	return windows, nil
}
