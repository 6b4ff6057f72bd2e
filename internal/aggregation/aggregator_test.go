package aggregation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/gitlog"
	"github.com/masmgr/codestat/internal/identity"
	"github.com/masmgr/codestat/internal/window"
)

var jan2024 = window.TimeWindow{
	Since:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	Before: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
}

const billingLog = `a1||Alice <alice@laptop.local>||2024-01-03T10:00:00+08:00

 src/a.go | 12 ++++++++++--
 1 file changed, 10 insertions(+), 2 deletions(-)
a2||Bob <bob@example.com>||2024-01-04T10:00:00+08:00

 src/b.go | 3 ---
 1 file changed, 3 deletions(-)
a3||alice-without-email||2024-01-05T10:00:00+08:00

 src/c.go | 100 ++++
 1 file changed, 100 insertions(+)
a4||Alice <alice@example.com>||2024-01-06T10:00:00+08:00

 src/d.go | 5 +++++
 1 file changed, 5 insertions(+)
`

func parseInto(t *testing.T, project, log string, resolver identity.Resolver) ProjectResult {
	t.Helper()
	agg := NewProjectAggregator(project, "master", resolver, zerolog.Nop())
	if _, err := gitlog.NewParser(zerolog.Nop()).Parse(strings.NewReader(log), agg); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return agg.Result()
}

func TestProjectAggregator_NormalizedAuthors(t *testing.T) {
	norm := identity.NewNormalizer(map[string]string{"alice@laptop.local": "alice@example.com"}, zerolog.Nop())
	res := parseInto(t, "billing", billingLog, norm)

	if res.Totals != (Counts{LinesAdded: 15, Commits: 3}) {
		t.Errorf("Totals = %+v, expected 15 lines / 3 commits", res.Totals)
	}
	expected := map[string]Counts{
		"alice@example.com": {LinesAdded: 15, Commits: 2},
		"bob@example.com":   {LinesAdded: 0, Commits: 1},
	}
	if diff := cmp.Diff(expected, res.ByAuthor); diff != "" {
		t.Errorf("ByAuthor mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectAggregator_OriginalAuthors(t *testing.T) {
	res := parseInto(t, "billing", billingLog, identity.Passthrough{})

	if res.Totals.Commits != 4 {
		t.Errorf("Totals.Commits = %d, expected 4", res.Totals.Commits)
	}
	if _, ok := res.ByAuthor["Alice <alice@laptop.local>"]; !ok {
		t.Error("raw author key missing in original-author mode")
	}
	if c := res.ByAuthor["alice-without-email"]; c.LinesAdded != 100 {
		t.Errorf("bare author lines = %d, expected 100", c.LinesAdded)
	}
}

func TestProjectAggregator_RejectsMalformedAuthor(t *testing.T) {
	agg := NewProjectAggregator("billing", "master", identity.NewNormalizer(nil, zerolog.Nop()), zerolog.Nop())
	err := agg.OnCommit(gitlog.CommitRecord{ID: "x", RawAuthor: "nobody"})
	if !errors.Is(err, identity.ErrMalformedAuthor) {
		t.Fatalf("OnCommit error = %v, expected ErrMalformedAuthor", err)
	}
	agg.OnLinesAdded(gitlog.CommitRecord{ID: "x"}, 50)
	if res := agg.Result(); res.Totals != (Counts{}) {
		t.Errorf("Totals = %+v, expected zero after rejected commit", res.Totals)
	}
}

func TestWindowStats_MergeKeepsLevelsConsistent(t *testing.T) {
	norm := identity.NewNormalizer(map[string]string{"alice@laptop.local": "alice@example.com"}, zerolog.Nop())
	ws := NewWindowStats(jan2024, nil)
	ws.Merge(parseInto(t, "billing", billingLog, norm))
	ws.Merge(parseInto(t, "search", "b1||Alice <alice@example.com>||2024-01-09T00:00:00Z\n 1 file changed, 7 insertions(+)\n", norm))
	ws.Merge(ProjectResult{Project: "idle", Branch: "master", ByAuthor: map[string]Counts{}})

	if ws.Projects.Len() != 2 {
		t.Errorf("Projects.Len = %d, expected 2 (idle project excluded)", ws.Projects.Len())
	}
	rec := ws.Reconcile()
	if !rec.Consistent() {
		t.Errorf("Reconcile = %+v, expected consistent totals", rec)
	}
	if got, _ := ws.Authors.Get("alice@example.com"); got != (Counts{LinesAdded: 22, Commits: 3}) {
		t.Errorf("alice = %+v, expected 22 lines / 3 commits", got)
	}
}

func TestWindowStats_MarkCorrected(t *testing.T) {
	ws := NewWindowStats(jan2024, nil)
	if !ws.MarkCorrected() {
		t.Error("first MarkCorrected = false, expected true")
	}
	if ws.MarkCorrected() {
		t.Error("second MarkCorrected = true, expected false")
	}
	if !ws.Corrected() {
		t.Error("Corrected = false, expected true")
	}
}

func TestMonthlyStats_AppendChronological(t *testing.T) {
	windows, err := window.SplitByMonth(jan2024.Since, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SplitByMonth returned error: %v", err)
	}

	var m MonthlyStats
	for _, w := range windows {
		if err := m.Append(NewWindowStats(w, nil)); err != nil {
			t.Fatalf("Append(%s) returned error: %v", w, err)
		}
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", m.Len())
	}
	if err := m.Append(NewWindowStats(jan2024, nil)); !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("Append(out of order) error = %v, expected ErrOutOfOrder", err)
	}

	if ws, ok := m.Find(windows[1]); !ok || ws.Window.SinceString() != "2024-02-01" {
		t.Errorf("Find(feb) = %v, %v, expected february window", ws, ok)
	}
	if _, ok := m.Find(window.TimeWindow{Since: jan2024.Since, Before: windows[2].Before}); ok {
		t.Error("Find(non-existing window) = true, expected false")
	}
}
