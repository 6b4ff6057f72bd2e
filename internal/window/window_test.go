package window

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSplitByMonth_QuarterRange(t *testing.T) {
	now := date(2024, 6, 15)
	windows, err := SplitByMonth(date(2018, 1, 1), date(2018, 4, 1), now)
	if err != nil {
		t.Fatalf("SplitByMonth returned error: %v", err)
	}

	expected := []string{
		"2018-01-01..2018-02-01",
		"2018-02-01..2018-03-01",
		"2018-03-01..2018-04-01",
	}
	if len(windows) != len(expected) {
		t.Fatalf("len(windows) = %d, expected %d", len(windows), len(expected))
	}
	for i, w := range windows {
		if w.String() != expected[i] {
			t.Errorf("windows[%d] = %s, expected %s", i, w, expected[i])
		}
	}
}

func TestSplitByMonth_TruncatesAtNextMonth(t *testing.T) {
	now := date(2024, 3, 10)
	windows, err := SplitByMonth(date(2024, 1, 1), date(2025, 1, 1), now)
	if err != nil {
		t.Fatalf("SplitByMonth returned error: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("len(windows) = %d, expected 3", len(windows))
	}
	last := windows[len(windows)-1]
	if !last.Before.Equal(date(2024, 4, 1)) {
		t.Errorf("last.Before = %s, expected 2024-04-01", last.BeforeString())
	}
}

func TestSplitByMonth_MidMonthBounds(t *testing.T) {
	windows, err := SplitByMonth(date(2024, 1, 15), date(2024, 3, 10), date(2030, 1, 1))
	if err != nil {
		t.Fatalf("SplitByMonth returned error: %v", err)
	}
	expected := []string{
		"2024-01-15..2024-02-01",
		"2024-02-01..2024-03-01",
		"2024-03-01..2024-03-10",
	}
	if len(windows) != len(expected) {
		t.Fatalf("len(windows) = %d, expected %d", len(windows), len(expected))
	}
	for i, w := range windows {
		if w.String() != expected[i] {
			t.Errorf("windows[%d] = %s, expected %s", i, w, expected[i])
		}
	}
}

func TestSplitByMonth_Errors(t *testing.T) {
	tests := []struct {
		name   string
		since  time.Time
		before time.Time
		now    time.Time
	}{
		{name: "equal bounds", since: date(2024, 1, 1), before: date(2024, 1, 1), now: date(2024, 6, 1)},
		{name: "reversed", since: date(2024, 2, 1), before: date(2024, 1, 1), now: date(2024, 6, 1)},
		{name: "entirely in future", since: date(2030, 1, 1), before: date(2030, 6, 1), now: date(2024, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitByMonth(tt.since, tt.before, tt.now)
			if !errors.Is(err, ErrEmptyRange) {
				t.Errorf("SplitByMonth error = %v, expected ErrEmptyRange", err)
			}
		})
	}
}

func TestWhole(t *testing.T) {
	windows, err := Whole(date(2024, 1, 1), date(2024, 7, 1))
	if err != nil {
		t.Fatalf("Whole returned error: %v", err)
	}
	if len(windows) != 1 || windows[0].String() != "2024-01-01..2024-07-01" {
		t.Errorf("Whole = %v, expected single 2024-01-01..2024-07-01 window", windows)
	}

	if _, err := Whole(date(2024, 1, 1), date(2023, 1, 1)); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("Whole(reversed) error = %v, expected ErrEmptyRange", err)
	}
}

func TestContains(t *testing.T) {
	w := TimeWindow{Since: date(2024, 1, 1), Before: date(2024, 2, 1)}
	tests := []struct {
		when     time.Time
		expected bool
	}{
		{date(2023, 12, 31), false},
		{date(2024, 1, 1), true},
		{date(2024, 1, 31), true},
		{date(2024, 2, 1), false},
	}
	for _, tt := range tests {
		if got := w.Contains(tt.when); got != tt.expected {
			t.Errorf("Contains(%s) = %v, expected %v", tt.when.Format(DateLayout), got, tt.expected)
		}
	}
}

func TestCoversMonth(t *testing.T) {
	tests := []struct {
		name     string
		w        TimeWindow
		month    time.Time
		expected bool
	}{
		{name: "full month", w: TimeWindow{Since: date(2024, 1, 1), Before: date(2024, 2, 1)}, month: date(2024, 1, 1), expected: true},
		{name: "mid-month start", w: TimeWindow{Since: date(2018, 1, 15), Before: date(2018, 2, 1)}, month: date(2018, 1, 1), expected: true},
		{name: "mid-month end", w: TimeWindow{Since: date(2024, 2, 1), Before: date(2024, 3, 15)}, month: date(2024, 3, 1), expected: true},
		{name: "next month", w: TimeWindow{Since: date(2018, 1, 15), Before: date(2018, 2, 1)}, month: date(2018, 2, 1), expected: false},
		{name: "previous month", w: TimeWindow{Since: date(2018, 1, 15), Before: date(2018, 2, 1)}, month: date(2017, 12, 1), expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.CoversMonth(tt.month); got != tt.expected {
				t.Errorf("CoversMonth(%s) = %v, expected %v", tt.month.Format(DateLayout), got, tt.expected)
			}
		})
	}
}

func TestNextMonth(t *testing.T) {
	tests := []struct {
		in       time.Time
		expected time.Time
	}{
		{date(2024, 1, 31), date(2024, 2, 1)},
		{date(2024, 12, 5), date(2025, 1, 1)},
		{date(2024, 2, 1), date(2024, 3, 1)},
	}
	for _, tt := range tests {
		if got := NextMonth(tt.in); !got.Equal(tt.expected) {
			t.Errorf("NextMonth(%s) = %s, expected %s", tt.in.Format(DateLayout), got.Format(DateLayout), tt.expected.Format(DateLayout))
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("ParseDate(2024-13-01) expected error")
	}
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if !got.Equal(date(2024, 2, 29)) {
		t.Errorf("ParseDate = %s, expected 2024-02-29", got)
	}
}
