package output

import (
	"fmt"
	"strconv"

	"github.com/masmgr/codestat/internal/aggregation"
)

// NoShare is shown when a percentage has a zero denominator.
const NoShare = "-"

// Share formats value/total*100 with one decimal place, or NoShare when
// total is zero.
func Share(value, total int) string {
	if total == 0 {
		return NoShare
	}
	return fmt.Sprintf("%.1f", float64(value)/float64(total)*100)
}

// ProjectRow is one line of the project table.
type ProjectRow struct {
	Since        string
	Before       string
	Project      string
	Branch       string
	Lines        int
	LinesShare   string
	Commits      int
	CommitsShare string
}

// ProjectAuthorRow is one line of the project/author table. Subtotal rows
// carry preformatted cells that may hold a "sum!=project" mismatch marker.
type ProjectAuthorRow struct {
	Since        string
	Before       string
	Project      string
	Branch       string
	Author       string
	Lines        int
	LinesShare   string
	Commits      int
	CommitsShare string

	Subtotal    bool
	LinesCell   string
	CommitsCell string
	Mismatch    bool
}

// AuthorRow is one line of the author table.
type AuthorRow struct {
	Since        string
	Before       string
	Author       string
	Lines        int
	LinesShare   string
	Commits      int
	CommitsShare string
}

// ProjectRows builds the project table of a window. Shares are relative to
// the whole collection.
func ProjectRows(ws *aggregation.WindowStats) []ProjectRow {
	total := ws.Projects.Totals()
	since, before := ws.Window.SinceString(), ws.Window.BeforeString()

	rows := make([]ProjectRow, 0, ws.Projects.Len())
	for _, p := range ws.Projects.Projects() {
		t, _ := ws.Projects.Get(p)
		rows = append(rows, ProjectRow{
			Since:        since,
			Before:       before,
			Project:      p,
			Branch:       t.Branch,
			Lines:        t.LinesAdded,
			LinesShare:   Share(t.LinesAdded, total.LinesAdded),
			Commits:      t.Commits,
			CommitsShare: Share(t.Commits, total.Commits),
		})
	}
	return rows
}

// ProjectAuthorRows builds the project/author table of a window. Shares are
// relative to the project's author sum. With subtotal, a total row follows
// the last author of each project.
func ProjectAuthorRows(ws *aggregation.WindowStats, subtotal bool) []ProjectAuthorRow {
	sums := ws.ProjectAuthors.SumByProject()
	since, before := ws.Window.SinceString(), ws.Window.BeforeString()

	keys := ws.ProjectAuthors.Keys()
	rows := make([]ProjectAuthorRow, 0, len(keys)+len(sums))
	for i, k := range keys {
		t, _ := ws.ProjectAuthors.Get(k.Project, k.Author)
		sum := sums[k.Project]
		rows = append(rows, ProjectAuthorRow{
			Since:        since,
			Before:       before,
			Project:      k.Project,
			Branch:       t.Branch,
			Author:       k.Author,
			Lines:        t.LinesAdded,
			LinesShare:   Share(t.LinesAdded, sum.LinesAdded),
			Commits:      t.Commits,
			CommitsShare: Share(t.Commits, sum.Commits),
		})

		lastOfProject := i == len(keys)-1 || keys[i+1].Project != k.Project
		if subtotal && lastOfProject {
			rows = append(rows, subtotalRow(ws, since, before, k.Project, sum))
		}
	}
	return rows
}

func subtotalRow(ws *aggregation.WindowStats, since, before, project string, sum aggregation.Counts) ProjectAuthorRow {
	proj, ok := ws.Projects.Get(project)
	linesCell, linesMismatch := reconcileCell(sum.LinesAdded, proj.LinesAdded, ok)
	commitsCell, commitsMismatch := reconcileCell(sum.Commits, proj.Commits, ok)
	return ProjectAuthorRow{
		Since:       since,
		Before:      before,
		Project:     project,
		Author:      "total",
		Lines:       sum.LinesAdded,
		Commits:     sum.Commits,
		Subtotal:    true,
		LinesCell:   linesCell,
		CommitsCell: commitsCell,
		Mismatch:    linesMismatch || commitsMismatch,
	}
}

// reconcileCell renders an author sum, appending "!=<project>" when the
// independently tracked project value differs.
func reconcileCell(sum, project int, hasProject bool) (string, bool) {
	if !hasProject {
		return strconv.Itoa(sum) + "!=?", true
	}
	if sum != project {
		return strconv.Itoa(sum) + "!=" + strconv.Itoa(project), true
	}
	return strconv.Itoa(sum), false
}

// AuthorRows builds the author table of a window. Shares are relative to
// the whole collection.
func AuthorRows(ws *aggregation.WindowStats) []AuthorRow {
	total := ws.Authors.Totals()
	since, before := ws.Window.SinceString(), ws.Window.BeforeString()

	rows := make([]AuthorRow, 0, ws.Authors.Len())
	for _, a := range ws.Authors.Authors() {
		c, _ := ws.Authors.Get(a)
		rows = append(rows, AuthorRow{
			Since:        since,
			Before:       before,
			Author:       a,
			Lines:        c.LinesAdded,
			LinesShare:   Share(c.LinesAdded, total.LinesAdded),
			Commits:      c.Commits,
			CommitsShare: Share(c.Commits, total.Commits),
		})
	}
	return rows
}

// FinalLinesRow is one project of the final lines table.
type FinalLinesRow struct {
	Project    string
	Lines      int
	LinesShare string
	ByExt      []int
	Condensed  string
	Others     int
}

// FinalLinesRows builds the final lines table with one ByExt entry per
// report extension.
func FinalLinesRows(report *FinalLinesReport) []FinalLinesRow {
	total := report.Total()
	rows := make([]FinalLinesRow, 0, len(report.Projects))
	for _, p := range report.Projects {
		byExt := make([]int, len(report.Extensions))
		for i, e := range report.Extensions {
			byExt[i] = p.Tally.ByExt[e]
		}
		rows = append(rows, FinalLinesRow{
			Project:    p.Project,
			Lines:      p.Tally.Total,
			LinesShare: Share(p.Tally.Total, total.Total),
			ByExt:      byExt,
			Condensed:  p.Tally.Condensed(report.Extensions),
			Others:     p.Tally.Others,
		})
	}
	return rows
}
