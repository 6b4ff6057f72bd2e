package gitlog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"pgregory.net/rapid"
)

type countingObserver struct {
	commits int
	lines   int
}

func (o *countingObserver) OnCommit(CommitRecord) error {
	o.commits++
	return nil
}

func (o *countingObserver) OnLinesAdded(_ CommitRecord, n int) {
	o.lines += n
}

// Every header yields exactly one commit event and insertions sum to the
// generated totals regardless of deletions or file lines.
func TestParse_CountsMatchGenerated_Rapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "commits")
		var b strings.Builder
		wantLines := 0
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%040d||Dev%d <dev%d@example.com>||2024-03-%02dT12:00:00Z\n\n", i, i%3, i%3, i%28+1)
			files := rapid.IntRange(0, 4).Draw(t, "files")
			for f := 0; f < files; f++ {
				fmt.Fprintf(&b, " pkg/file%d.go | %d ++--\n", f, f+1)
			}
			ins := rapid.IntRange(0, 500).Draw(t, "ins")
			del := rapid.IntRange(0, 500).Draw(t, "del")
			if files == 0 {
				continue
			}
			line := fmt.Sprintf(" %d files changed", files)
			if ins > 0 {
				line += fmt.Sprintf(", %d insertions(+)", ins)
				wantLines += ins
			}
			if del > 0 {
				line += fmt.Sprintf(", %d deletions(-)", del)
			}
			b.WriteString(line + "\n")
		}

		obs := &countingObserver{}
		res, err := NewParser(zerolog.Nop()).Parse(strings.NewReader(b.String()), obs)
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if res.Commits != n || obs.commits != n {
			t.Fatalf("commits = %d/%d, expected %d", res.Commits, obs.commits, n)
		}
		if res.LinesAdded != wantLines || obs.lines != wantLines {
			t.Fatalf("lines = %d/%d, expected %d", res.LinesAdded, obs.lines, wantLines)
		}
	})
}
