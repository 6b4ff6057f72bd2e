package chart

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/window"
)

const (
	chartWidth  = "100%"
	chartHeight = "600px"
	xAxisRotate = 30
	monthLayout = "2006-01"
)

// ErrEmptyDataset is returned when there is nothing to draw.
var ErrEmptyDataset = errors.New("no data to chart")

// Metric selects which counter a chart plots.
type Metric string

const (
	MetricLines   Metric = "lines"
	MetricCommits Metric = "commits"
)

// ParseMetric parses a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricLines, "":
		return MetricLines, nil
	case MetricCommits:
		return MetricCommits, nil
	default:
		return "", fmt.Errorf("unknown metric %q (expected lines or commits)", s)
	}
}

func (m Metric) value(c aggregation.Counts) int {
	if m == MetricCommits {
		return c.Commits
	}
	return c.LinesAdded
}

// Series is one named bar series aligned with Dataset.Labels.
type Series struct {
	Name   string
	Values []int
}

// Dataset is everything a bar chart needs.
type Dataset struct {
	Title    string
	Subtitle string
	Labels   []string
	Series   []Series
}

// RenderBar writes d as a standalone HTML bar chart.
func RenderBar(w io.Writer, d Dataset) error {
	if len(d.Labels) == 0 || len(d.Series) == 0 {
		return ErrEmptyDataset
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: d.Title,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: d.Title, Subtitle: d.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(d.Series) > 1)}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate:   xAxisRotate,
				Interval: "0",
			},
		}),
	)
	bar.SetXAxis(d.Labels)

	for _, s := range d.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func monthLabel(w window.TimeWindow) string {
	return w.Since.Format(monthLayout)
}

// filterMonth keeps the windows whose start falls in month (YYYY-MM).
// An empty month keeps all of them.
func filterMonth(stats *aggregation.MonthlyStats, month string) []*aggregation.WindowStats {
	if month == "" {
		return stats.Windows()
	}
	var out []*aggregation.WindowStats
	for _, ws := range stats.Windows() {
		if monthLabel(ws.Window) == month {
			out = append(out, ws)
		}
	}
	return out
}

// ByProject charts every project, one series per window.
func ByProject(stats *aggregation.MonthlyStats, metric Metric, month string) Dataset {
	windows := filterMonth(stats, month)
	labels := projectNames(windows)

	d := Dataset{
		Title:    fmt.Sprintf("%s by project", metric),
		Subtitle: month,
		Labels:   labels,
	}
	for _, ws := range windows {
		values := make([]int, len(labels))
		for i, p := range labels {
			if t, ok := ws.Projects.Get(p); ok {
				values[i] = metric.value(t.Counts)
			}
		}
		d.Series = append(d.Series, Series{Name: monthLabel(ws.Window), Values: values})
	}
	return d
}

// ByAuthor charts every author, one series per window.
func ByAuthor(stats *aggregation.MonthlyStats, metric Metric, month string) Dataset {
	windows := filterMonth(stats, month)
	labels := authorNames(windows)

	d := Dataset{
		Title:    fmt.Sprintf("%s by author", metric),
		Subtitle: month,
		Labels:   labels,
	}
	for _, ws := range windows {
		values := make([]int, len(labels))
		for i, a := range labels {
			if c, ok := ws.Authors.Get(a); ok {
				values[i] = metric.value(c)
			}
		}
		d.Series = append(d.Series, Series{Name: monthLabel(ws.Window), Values: values})
	}
	return d
}

// ProjectByMonth charts one project across all windows.
func ProjectByMonth(stats *aggregation.MonthlyStats, project string, metric Metric) Dataset {
	d := Dataset{Title: fmt.Sprintf("%s of %s by month", metric, project)}
	values := make([]int, 0, stats.Len())
	for _, ws := range stats.Windows() {
		d.Labels = append(d.Labels, monthLabel(ws.Window))
		t, _ := ws.Projects.Get(project)
		values = append(values, metric.value(t.Counts))
	}
	if len(values) > 0 {
		d.Series = []Series{{Name: project, Values: values}}
	}
	return d
}

// AuthorByMonth charts one author across all windows.
func AuthorByMonth(stats *aggregation.MonthlyStats, author string, metric Metric) Dataset {
	d := Dataset{Title: fmt.Sprintf("%s of %s by month", metric, author)}
	values := make([]int, 0, stats.Len())
	for _, ws := range stats.Windows() {
		d.Labels = append(d.Labels, monthLabel(ws.Window))
		c, _ := ws.Authors.Get(author)
		values = append(values, metric.value(c))
	}
	if len(values) > 0 {
		d.Series = []Series{{Name: author, Values: values}}
	}
	return d
}

func projectNames(windows []*aggregation.WindowStats) []string {
	set := make(map[string]struct{})
	for _, ws := range windows {
		for _, p := range ws.Projects.Projects() {
			set[p] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func authorNames(windows []*aggregation.WindowStats) []string {
	set := make(map[string]struct{})
	for _, ws := range windows {
		for _, a := range ws.Authors.Authors() {
			set[a] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
