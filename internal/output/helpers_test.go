package output

import (
	"fmt"
	"time"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/finallines"
	"github.com/masmgr/codestat/internal/window"
)

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}

var (
	jan = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

// sampleWindow returns a window with two projects and three authors.
func sampleWindow() *aggregation.WindowStats {
	ws := aggregation.NewWindowStats(window.TimeWindow{Since: jan, Before: feb}, nil)
	ws.Merge(aggregation.ProjectResult{
		Project: "billing",
		Branch:  "master",
		Totals:  aggregation.Counts{LinesAdded: 300, Commits: 4},
		ByAuthor: map[string]aggregation.Counts{
			"alice@example.com": {LinesAdded: 200, Commits: 3},
			"bob@example.com":   {LinesAdded: 100, Commits: 1},
		},
	})
	ws.Merge(aggregation.ProjectResult{
		Project: "search",
		Branch:  "develop",
		Totals:  aggregation.Counts{LinesAdded: 0, Commits: 1},
		ByAuthor: map[string]aggregation.Counts{
			"carol@example.com": {LinesAdded: 0, Commits: 1},
		},
	})
	return ws
}

func sampleFinalLines() *FinalLinesReport {
	return &FinalLinesReport{
		Date:       jan,
		Extensions: []string{".java", ".py"},
		Projects: []ProjectLines{
			{Project: "billing", Tally: finallines.Tally{ByExt: map[string]int{".java": 120, ".py": 40}, Total: 160, Others: 7}},
			{Project: "search", Tally: finallines.Tally{ByExt: map[string]int{".java": 0, ".py": 40}, Total: 40}},
		},
		GeneratedAt: jan,
	}
}
