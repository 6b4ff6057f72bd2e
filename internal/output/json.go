package output

import (
	"encoding/json"
	"fmt"
)

// JSONStatWriter writes commit statistics as JSON.
type JSONStatWriter struct{}

// JSONStatReport is the JSON output structure for commit statistics.
type JSONStatReport struct {
	Since       string               `json:"since"`
	Before      string               `json:"before"`
	ByMonth     bool                 `json:"byMonth"`
	GeneratedAt string               `json:"generatedAt"`
	Windows     []JSONWindow         `json:"windows"`
	Abnormal    []JSONAbnormalAuthor `json:"remappedAuthors,omitempty"`
}

// JSONWindow holds the three tables of one window.
type JSONWindow struct {
	Since          string              `json:"since"`
	Before         string              `json:"before"`
	Corrected      bool                `json:"corrected"`
	Consistent     bool                `json:"consistent"`
	Projects       []JSONProject       `json:"projects"`
	ProjectAuthors []JSONProjectAuthor `json:"projectAuthors"`
	Authors        []JSONAuthor        `json:"authors"`
}

type JSONProject struct {
	Project      string `json:"project"`
	Branch       string `json:"branch"`
	LinesAdded   int    `json:"linesAdded"`
	LinesShare   string `json:"linesShare"`
	Commits      int    `json:"commits"`
	CommitsShare string `json:"commitsShare"`
}

type JSONProjectAuthor struct {
	Project      string `json:"project"`
	Branch       string `json:"branch"`
	Author       string `json:"author"`
	LinesAdded   int    `json:"linesAdded"`
	LinesShare   string `json:"linesShare"`
	Commits      int    `json:"commits"`
	CommitsShare string `json:"commitsShare"`
}

type JSONAuthor struct {
	Author       string `json:"author"`
	LinesAdded   int    `json:"linesAdded"`
	LinesShare   string `json:"linesShare"`
	Commits      int    `json:"commits"`
	CommitsShare string `json:"commitsShare"`
}

type JSONAbnormalAuthor struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	LastSeen  string `json:"lastSeen"`
}

// Write outputs the commit statistics as JSON.
func (w *JSONStatWriter) Write(report *StatReport, options OutputOptions) error {
	out := JSONStatReport{
		Since:       report.Since.Format(reportDateLayout),
		Before:      report.Before.Format(reportDateLayout),
		ByMonth:     report.ByMonth,
		GeneratedAt: report.GeneratedAt.Format(reportDateTimeLayout),
		Windows:     make([]JSONWindow, 0, len(report.Windows)),
	}

	for _, ws := range report.Windows {
		jw := JSONWindow{
			Since:          ws.Window.SinceString(),
			Before:         ws.Window.BeforeString(),
			Corrected:      ws.Corrected(),
			Consistent:     ws.Reconcile().Consistent(),
			Projects:       []JSONProject{},
			ProjectAuthors: []JSONProjectAuthor{},
			Authors:        []JSONAuthor{},
		}
		for _, r := range ProjectRows(ws) {
			jw.Projects = append(jw.Projects, JSONProject{
				Project: r.Project, Branch: r.Branch,
				LinesAdded: r.Lines, LinesShare: r.LinesShare,
				Commits: r.Commits, CommitsShare: r.CommitsShare,
			})
		}
		for _, r := range ProjectAuthorRows(ws, false) {
			jw.ProjectAuthors = append(jw.ProjectAuthors, JSONProjectAuthor{
				Project: r.Project, Branch: r.Branch, Author: r.Author,
				LinesAdded: r.Lines, LinesShare: r.LinesShare,
				Commits: r.Commits, CommitsShare: r.CommitsShare,
			})
		}
		for _, r := range AuthorRows(ws) {
			jw.Authors = append(jw.Authors, JSONAuthor{
				Author:     r.Author,
				LinesAdded: r.Lines, LinesShare: r.LinesShare,
				Commits: r.Commits, CommitsShare: r.CommitsShare,
			})
		}
		out.Windows = append(out.Windows, jw)
	}

	for _, a := range report.Abnormal {
		out.Abnormal = append(out.Abnormal, JSONAbnormalAuthor{
			Raw:       a.Raw,
			Canonical: a.Canonical,
			LastSeen:  a.LastSeen.Format(reportDateTimeLayout),
		})
	}

	return writeJSON(out, options)
}

// JSONFinalLinesWriter writes final line counts as JSON.
type JSONFinalLinesWriter struct{}

// JSONFinalLinesReport is the JSON output structure for final line counts.
type JSONFinalLinesReport struct {
	Date        string                  `json:"date"`
	GeneratedAt string                  `json:"generatedAt"`
	Extensions  []string                `json:"extensions"`
	Total       int                     `json:"total"`
	Projects    []JSONFinalLinesProject `json:"projects"`
}

type JSONFinalLinesProject struct {
	Project    string         `json:"project"`
	FinalLines int            `json:"finalLines"`
	LinesShare string         `json:"linesShare"`
	ByExt      map[string]int `json:"byExtension"`
	Others     int            `json:"others"`
}

// Write outputs the final line counts as JSON.
func (w *JSONFinalLinesWriter) Write(report *FinalLinesReport, options OutputOptions) error {
	out := JSONFinalLinesReport{
		Date:        report.Date.Format(reportDateLayout),
		GeneratedAt: report.GeneratedAt.Format(reportDateTimeLayout),
		Extensions:  report.Extensions,
		Total:       report.Total().Total,
		Projects:    make([]JSONFinalLinesProject, 0, len(report.Projects)),
	}
	for _, r := range FinalLinesRows(report) {
		byExt := make(map[string]int)
		for i, e := range report.Extensions {
			if r.ByExt[i] != 0 {
				byExt[e] = r.ByExt[i]
			}
		}
		out.Projects = append(out.Projects, JSONFinalLinesProject{
			Project:    r.Project,
			FinalLines: r.Lines,
			LinesShare: r.LinesShare,
			ByExt:      byExt,
			Others:     r.Others,
		})
	}
	return writeJSON(out, options)
}

func writeJSON(data interface{}, options OutputOptions) error {
	out, file, err := openOutputWriter(options)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
