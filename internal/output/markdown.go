package output

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownStatWriter writes commit statistics as Markdown.
type MarkdownStatWriter struct{}

// Write outputs one section with three tables per window.
func (w *MarkdownStatWriter) Write(report *StatReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Commit Statistics")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Period:** %s to %s\n\n", report.Since.Format(reportDateLayout), report.Before.Format(reportDateLayout))
	fmt.Fprintf(out, "**Generated:** %s\n\n", report.GeneratedAt.Format(reportDateTimeLayout))

	for _, ws := range report.Windows {
		fmt.Fprintf(out, "## %s to %s\n\n", ws.Window.SinceString(), ws.Window.BeforeString())

		fmt.Fprintln(out, "### Projects")
		fmt.Fprintln(out)
		writeMarkdownHeader(out, "Project", "Branch", "Added lines", "Lines%", "Commits", "Commits%")
		for _, r := range ProjectRows(ws) {
			fmt.Fprintf(out, "| %s | %s | %d | %s | %d | %s |\n",
				escapeMarkdown(r.Project), escapeMarkdown(r.Branch), r.Lines, r.LinesShare, r.Commits, r.CommitsShare)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "### Project Authors")
		fmt.Fprintln(out)
		writeMarkdownHeader(out, "Project", "Branch", "Author", "Added lines", "Lines%", "Commits", "Commits%")
		for _, r := range ProjectAuthorRows(ws, options.Subtotal) {
			if r.Subtotal {
				fmt.Fprintf(out, "| **%s** | | **total** | **%s** | | **%s** | |\n",
					escapeMarkdown(r.Project), r.LinesCell, r.CommitsCell)
				continue
			}
			fmt.Fprintf(out, "| %s | %s | %s | %d | %s | %d | %s |\n",
				escapeMarkdown(r.Project), escapeMarkdown(r.Branch), escapeMarkdown(r.Author),
				r.Lines, r.LinesShare, r.Commits, r.CommitsShare)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "### Authors")
		fmt.Fprintln(out)
		writeMarkdownHeader(out, "Author", "Added lines", "Lines%", "Commits", "Commits%")
		for _, r := range AuthorRows(ws) {
			fmt.Fprintf(out, "| %s | %d | %s | %d | %s |\n",
				escapeMarkdown(r.Author), r.Lines, r.LinesShare, r.Commits, r.CommitsShare)
		}
		fmt.Fprintln(out)

		if rec := ws.Reconcile(); !rec.Consistent() {
			fmt.Fprintf(out, "> Totals differ across tables: projects %d, project authors %d, authors %d added lines.\n\n",
				rec.Projects.LinesAdded, rec.ProjectAuthors.LinesAdded, rec.Authors.LinesAdded)
		}
	}

	if len(report.Abnormal) > 0 {
		fmt.Fprintln(out, "## Remapped Authors")
		fmt.Fprintln(out)
		writeMarkdownHeader(out, "Raw email", "Canonical", "Last commit")
		for _, a := range report.Abnormal {
			fmt.Fprintf(out, "| %s | %s | %s |\n", escapeMarkdown(a.Raw), escapeMarkdown(a.Canonical), a.LastSeen.Format(reportDateTimeLayout))
		}
	}
	return nil
}

// MarkdownFinalLinesWriter writes final line counts as Markdown.
type MarkdownFinalLinesWriter struct{}

// Write outputs the final lines table.
func (w *MarkdownFinalLinesWriter) Write(report *FinalLinesReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Final Lines")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Date:** %s\n\n", report.Date.Format(reportDateLayout))

	header := []string{"Project", "Final lines", "Lines%"}
	if options.Condensed {
		header = append(header, "Lines by extension")
	} else {
		header = append(header, report.Extensions...)
	}
	writeMarkdownHeader(out, append(header, "others")...)

	for _, r := range FinalLinesRows(report) {
		cells := []string{escapeMarkdown(r.Project), fmt.Sprint(r.Lines), r.LinesShare}
		if options.Condensed {
			cells = append(cells, r.Condensed)
		} else {
			for _, n := range r.ByExt {
				cells = append(cells, fmt.Sprint(n))
			}
		}
		cells = append(cells, fmt.Sprint(r.Others))
		fmt.Fprintf(out, "| %s |\n", strings.Join(cells, " | "))
	}

	fmt.Fprintf(out, "\n**Total:** %d final lines\n", report.Total().Total)
	return nil
}

func writeMarkdownHeader(out io.Writer, columns ...string) {
	fmt.Fprintf(out, "| %s |\n", strings.Join(columns, " | "))
	seps := make([]string, len(columns))
	for i, c := range columns {
		seps[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintf(out, "|-%s-|\n", strings.Join(seps, "-|-"))
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
