package output

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/masmgr/codestat/internal/aggregation"
)

// ConsoleStatWriter writes commit statistics as console tables.
type ConsoleStatWriter struct{}

// Write prints the project, project/author and author tables of every window.
func (w *ConsoleStatWriter) Write(report *StatReport, options OutputOptions) error {
	out := stdout(options)
	heading := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	for _, ws := range report.Windows {
		heading.Fprintf(out, "Commit statistics %s to %s\n", ws.Window.SinceString(), ws.Window.BeforeString())
		if ws.Corrected() {
			fmt.Fprintln(out, "Corrections applied.")
		}
		fmt.Fprintln(out)

		writeProjectTable(out, ws)
		writeProjectAuthorTable(out, ws, options.Subtotal)
		writeAuthorTable(out, ws)

		rec := ws.Reconcile()
		if !rec.Consistent() {
			warn.Fprintf(out, "Totals differ: projects %d/%d, project authors %d/%d, authors %d/%d (lines/commits)\n",
				rec.Projects.LinesAdded, rec.Projects.Commits,
				rec.ProjectAuthors.LinesAdded, rec.ProjectAuthors.Commits,
				rec.Authors.LinesAdded, rec.Authors.Commits)
		}
		total := ws.Projects.Totals()
		fmt.Fprintf(out, "%s lines added in %s commits\n\n", humanize.Comma(int64(total.LinesAdded)), humanize.Comma(int64(total.Commits)))
	}

	if len(report.Abnormal) > 0 {
		heading.Fprintln(out, "Remapped authors")
		tw := newTable(out)
		tw.AppendHeader(table.Row{"Raw email", "Canonical", "Last commit"})
		for _, a := range report.Abnormal {
			tw.AppendRow(table.Row{a.Raw, a.Canonical, a.LastSeen.Format(reportDateTimeLayout)})
		}
		tw.Render()
		fmt.Fprintln(out)
	}
	return nil
}

func newTable(out io.Writer, rightAligned ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, n := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func writeProjectTable(out io.Writer, ws *aggregation.WindowStats) {
	rows := ProjectRows(ws)
	tw := newTable(out, 3, 4, 5, 6)
	tw.AppendHeader(table.Row{"Project", "Branch", "Added lines", "Lines%", "Commits", "Commits%"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Project, r.Branch, r.Lines, r.LinesShare, r.Commits, r.CommitsShare})
	}
	total := ws.Projects.Totals()
	tw.AppendFooter(table.Row{fmt.Sprintf("total %d projects", len(rows)), "", total.LinesAdded, "", total.Commits, ""})
	tw.Render()
	fmt.Fprintln(out)
}

func writeProjectAuthorTable(out io.Writer, ws *aggregation.WindowStats, subtotal bool) {
	rows := ProjectAuthorRows(ws, subtotal)
	mismatch := color.New(color.FgRed).SprintFunc()

	tw := newTable(out, 4, 5, 6, 7)
	tw.AppendHeader(table.Row{"Project", "Branch", "Author", "Added lines", "Lines%", "Commits", "Commits%"})
	for _, r := range rows {
		if r.Subtotal {
			lines, commits := r.LinesCell, r.CommitsCell
			if r.Mismatch {
				lines, commits = mismatch(lines), mismatch(commits)
			}
			tw.AppendRow(table.Row{r.Project, "", r.Author, lines, "", commits, ""})
			tw.AppendSeparator()
			continue
		}
		tw.AppendRow(table.Row{r.Project, r.Branch, r.Author, r.Lines, r.LinesShare, r.Commits, r.CommitsShare})
	}
	total := ws.ProjectAuthors.Totals()
	projects := len(ws.ProjectAuthors.SumByProject())
	tw.AppendFooter(table.Row{fmt.Sprintf("total %d projects", projects), "", "", total.LinesAdded, "", total.Commits, ""})
	tw.Render()
	fmt.Fprintln(out)
}

func writeAuthorTable(out io.Writer, ws *aggregation.WindowStats) {
	rows := AuthorRows(ws)
	tw := newTable(out, 2, 3, 4, 5)
	tw.AppendHeader(table.Row{"Author", "Added lines", "Lines%", "Commits", "Commits%"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Author, r.Lines, r.LinesShare, r.Commits, r.CommitsShare})
	}
	total := ws.Authors.Totals()
	tw.AppendFooter(table.Row{fmt.Sprintf("total %d authors", len(rows)), total.LinesAdded, "", total.Commits, ""})
	tw.Render()
	fmt.Fprintln(out)
}

// ConsoleFinalLinesWriter writes final line counts as a console table.
type ConsoleFinalLinesWriter struct{}

// Write prints one row per project, either with a column per extension or
// with all nonzero extensions packed into one column.
func (w *ConsoleFinalLinesWriter) Write(report *FinalLinesReport, options OutputOptions) error {
	out := stdout(options)
	color.New(color.FgGreen, color.Bold).Fprintf(out, "Final lines %s\n\n", report.Date.Format(reportDateLayout))

	rows := FinalLinesRows(report)
	total := report.Total()

	header := table.Row{"Project", "Final lines", "Lines%"}
	right := []int{2, 3}
	if options.Condensed {
		header = append(header, "Lines by extension")
	} else {
		for i, e := range report.Extensions {
			header = append(header, e)
			right = append(right, 4+i)
		}
	}
	header = append(header, "others")
	right = append(right, len(header))

	tw := newTable(out, right...)
	tw.AppendHeader(header)
	for _, r := range rows {
		row := table.Row{r.Project, r.Lines, r.LinesShare}
		if options.Condensed {
			row = append(row, r.Condensed)
		} else {
			for _, n := range r.ByExt {
				row = append(row, n)
			}
		}
		tw.AppendRow(append(row, r.Others))
	}

	footer := table.Row{fmt.Sprintf("total %d projects", len(rows)), total.Total, ""}
	if options.Condensed {
		footer = append(footer, total.Condensed(report.Extensions))
	} else {
		for _, e := range report.Extensions {
			footer = append(footer, total.ByExt[e])
		}
	}
	tw.AppendFooter(append(footer, total.Others))
	tw.Render()

	fmt.Fprintf(out, "%s final lines across %d projects\n", humanize.Comma(int64(total.Total)), len(rows))
	return nil
}
