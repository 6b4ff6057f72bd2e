package window

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Monthly windows tile the requested range: contiguous, non-overlapping,
// each within one calendar month, and ending at min(before, next month of now).
func TestSplitByMonth_Tiles_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := date(2015, 1, 1)
		startDays := rapid.IntRange(0, 3000).Draw(t, "startDays")
		spanDays := rapid.IntRange(1, 1500).Draw(t, "spanDays")
		nowDays := rapid.IntRange(0, 4500).Draw(t, "nowDays")

		since := base.AddDate(0, 0, startDays)
		before := since.AddDate(0, 0, spanDays)
		now := base.AddDate(0, 0, nowDays)

		windows, err := SplitByMonth(since, before, now)
		end := before
		if limit := NextMonth(now); end.After(limit) {
			end = limit
		}
		if !end.After(since) {
			if err == nil {
				t.Fatalf("expected error for range ending at %s", end.Format(DateLayout))
			}
			return
		}
		if err != nil {
			t.Fatalf("SplitByMonth returned error: %v", err)
		}

		if !windows[0].Since.Equal(since) {
			t.Fatalf("first window starts %s, expected %s", windows[0].SinceString(), since.Format(DateLayout))
		}
		if !windows[len(windows)-1].Before.Equal(end) {
			t.Fatalf("last window ends %s, expected %s", windows[len(windows)-1].BeforeString(), end.Format(DateLayout))
		}
		for i, w := range windows {
			if !w.Before.After(w.Since) {
				t.Fatalf("window %d is empty: %s", i, w)
			}
			if w.Before.After(NextMonth(w.Since)) {
				t.Fatalf("window %d spans more than one month: %s", i, w)
			}
			if i > 0 && !windows[i-1].Before.Equal(w.Since) {
				t.Fatalf("windows %d and %d are not contiguous", i-1, i)
			}
		}
	})
}

func TestContains_HalfOpen_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		since := date(2020, 1, 1).AddDate(0, 0, rapid.IntRange(0, 1000).Draw(t, "since"))
		w := TimeWindow{Since: since, Before: NextMonth(since)}
		if !w.Contains(w.Since) {
			t.Fatal("window must contain its since bound")
		}
		if w.Contains(w.Before) {
			t.Fatal("window must not contain its before bound")
		}
		if w.Contains(w.Since.Add(-time.Second)) {
			t.Fatal("window must not contain instants before since")
		}
	})
}
