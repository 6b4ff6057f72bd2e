package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// TSVStatWriter writes commit statistics as three tab-separated files.
type TSVStatWriter struct{}

// Write creates the project, project/author and author files in OutputDir.
func (w *TSVStatWriter) Write(report *StatReport, options OutputOptions) error {
	dir := options.OutputDir
	since, before, byMonth := report.Since, report.Before, report.ByMonth

	err := writeTSV(filepath.Join(dir, ProjStatFileName(since, before, byMonth)),
		[]string{"since", "before", "project", "branch", "added lines", "lines%", "commits", "commits%"},
		func(emit func([]string) error) error {
			for _, ws := range report.Windows {
				for _, r := range ProjectRows(ws) {
					if err := emit([]string{r.Since, r.Before, r.Project, r.Branch,
						strconv.Itoa(r.Lines), r.LinesShare, strconv.Itoa(r.Commits), r.CommitsShare}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	err = writeTSV(filepath.Join(dir, ProjAuthorStatFileName(since, before, byMonth)),
		[]string{"since", "before", "project", "branch", "author", "added lines", "lines%", "commits", "commits%"},
		func(emit func([]string) error) error {
			for _, ws := range report.Windows {
				for _, r := range ProjectAuthorRows(ws, false) {
					if err := emit([]string{r.Since, r.Before, r.Project, r.Branch, r.Author,
						strconv.Itoa(r.Lines), r.LinesShare, strconv.Itoa(r.Commits), r.CommitsShare}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	if err != nil {
		return err
	}

	return writeTSV(filepath.Join(dir, AuthorStatFileName(since, before, byMonth)),
		[]string{"since", "before", "author", "added lines", "lines%", "commits", "commits%"},
		func(emit func([]string) error) error {
			for _, ws := range report.Windows {
				for _, r := range AuthorRows(ws) {
					if err := emit([]string{r.Since, r.Before, r.Author,
						strconv.Itoa(r.Lines), r.LinesShare, strconv.Itoa(r.Commits), r.CommitsShare}); err != nil {
						return err
					}
				}
			}
			return nil
		})
}

// TSVFinalLinesWriter writes final line counts as a tab-separated file.
type TSVFinalLinesWriter struct{}

// Write creates final_lines_stat_<date>.txt in OutputDir.
func (w *TSVFinalLinesWriter) Write(report *FinalLinesReport, options OutputOptions) error {
	date := report.Date.Format(reportDateLayout)
	header := []string{"date", "project", "final lines", "lines%"}
	if options.Condensed {
		header = append(header, "lines by extension")
	} else {
		header = append(header, report.Extensions...)
	}
	header = append(header, "others")

	return writeTSV(filepath.Join(options.OutputDir, FinalLinesFileName(report.Date)), header,
		func(emit func([]string) error) error {
			for _, r := range FinalLinesRows(report) {
				row := []string{date, r.Project, strconv.Itoa(r.Lines), r.LinesShare}
				if options.Condensed {
					row = append(row, r.Condensed)
				} else {
					for _, n := range r.ByExt {
						row = append(row, strconv.Itoa(n))
					}
				}
				if err := emit(append(row, strconv.Itoa(r.Others))); err != nil {
					return err
				}
			}
			return nil
		})
}

func writeTSV(path string, header []string, rows func(emit func([]string) error) error) error {
	writer, file, err := createTSVWriter(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := writer.Write(header); err != nil {
		return err
	}
	if err := rows(writer.Write); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func createTSVWriter(path string) (*csv.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	return writer, file, nil
}
