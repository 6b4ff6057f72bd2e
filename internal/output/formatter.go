package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/finallines"
	"github.com/masmgr/codestat/internal/identity"
)

// Compile-time interface conformance checks.
var (
	_ StatReportWriter = (*ConsoleStatWriter)(nil)
	_ StatReportWriter = (*TSVStatWriter)(nil)
	_ StatReportWriter = (*JSONStatWriter)(nil)
	_ StatReportWriter = (*MarkdownStatWriter)(nil)

	_ FinalLinesReportWriter = (*ConsoleFinalLinesWriter)(nil)
	_ FinalLinesReportWriter = (*TSVFinalLinesWriter)(nil)
	_ FinalLinesReportWriter = (*JSONFinalLinesWriter)(nil)
	_ FinalLinesReportWriter = (*MarkdownFinalLinesWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatFile     OutputFormat = "file"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatConsole, FormatFile, FormatJSON, FormatMarkdown:
		return f, nil
	case "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown output format %q (console, file, json, markdown)", s)
	}
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format OutputFormat
	// OutputDir receives the tab-separated report files.
	OutputDir string
	// OutputPath is the JSON or Markdown destination; empty means Out.
	OutputPath string
	// Out overrides stdout for console output and unset OutputPath.
	Out       io.Writer
	Subtotal  bool
	Condensed bool
}

// StatReport holds the commit statistics of a run.
type StatReport struct {
	Since       time.Time
	Before      time.Time
	ByMonth     bool
	Windows     []*aggregation.WindowStats
	Abnormal    []identity.AbnormalAuthor
	GeneratedAt time.Time
}

// ProjectLines is the final line tally of one project.
type ProjectLines struct {
	Project string
	Tally   finallines.Tally
}

// FinalLinesReport holds the final line counts of a run.
type FinalLinesReport struct {
	Date        time.Time
	Extensions  []string
	Projects    []ProjectLines
	GeneratedAt time.Time
}

// Total sums all project tallies.
func (r *FinalLinesReport) Total() finallines.Tally {
	total := finallines.Tally{ByExt: map[string]int{}}
	for _, p := range r.Projects {
		total = total.Plus(p.Tally)
	}
	return total
}

// StatReportWriter writes commit statistics.
type StatReportWriter interface {
	Write(report *StatReport, options OutputOptions) error
}

// FinalLinesReportWriter writes final line counts.
type FinalLinesReportWriter interface {
	Write(report *FinalLinesReport, options OutputOptions) error
}

// NewStatReportWriter creates a report writer for the specified format.
func NewStatReportWriter(format OutputFormat) StatReportWriter {
	switch format {
	case FormatFile:
		return &TSVStatWriter{}
	case FormatJSON:
		return &JSONStatWriter{}
	case FormatMarkdown:
		return &MarkdownStatWriter{}
	default:
		return &ConsoleStatWriter{}
	}
}

// NewFinalLinesReportWriter creates a final lines writer for the specified format.
func NewFinalLinesReportWriter(format OutputFormat) FinalLinesReportWriter {
	switch format {
	case FormatFile:
		return &TSVFinalLinesWriter{}
	case FormatJSON:
		return &JSONFinalLinesWriter{}
	case FormatMarkdown:
		return &MarkdownFinalLinesWriter{}
	default:
		return &ConsoleFinalLinesWriter{}
	}
}
