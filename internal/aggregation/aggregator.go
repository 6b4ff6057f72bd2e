package aggregation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/gitlog"
	"github.com/masmgr/codestat/internal/identity"
	"github.com/masmgr/codestat/internal/window"
)

// ProjectResult is one project's finished tallies for a window.
type ProjectResult struct {
	Project  string
	Branch   string
	Totals   Counts
	ByAuthor map[string]Counts
}

// ProjectAggregator folds one project's commit stream into its tallies.
// It implements gitlog.Observer.
type ProjectAggregator struct {
	project  string
	branch   string
	resolver identity.Resolver
	logger   zerolog.Logger

	totals   Counts
	byAuthor map[string]Counts
	current  string
}

// NewProjectAggregator creates an aggregator for project. Authors are
// resolved with resolver before they are used as tally keys.
func NewProjectAggregator(project, branch string, resolver identity.Resolver, logger zerolog.Logger) *ProjectAggregator {
	return &ProjectAggregator{
		project:  project,
		branch:   branch,
		resolver: resolver,
		logger:   logger.With().Str("project", project).Logger(),
		byAuthor: make(map[string]Counts),
	}
}

// OnCommit counts the commit for the project and its resolved author.
func (a *ProjectAggregator) OnCommit(rec gitlog.CommitRecord) error {
	a.current = ""
	author, err := a.resolver.Resolve(rec.RawAuthor, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("commit %s: %w", rec.ID, err)
	}
	a.current = author
	a.totals.Commits++
	c := a.byAuthor[author]
	c.Commits++
	a.byAuthor[author] = c
	return nil
}

// OnLinesAdded attributes n lines to the most recently counted commit.
func (a *ProjectAggregator) OnLinesAdded(_ gitlog.CommitRecord, n int) {
	if a.current == "" {
		a.logger.Warn().Int("lines", n).Msg("lines without an active commit")
		return
	}
	a.totals.LinesAdded += n
	c := a.byAuthor[a.current]
	c.LinesAdded += n
	a.byAuthor[a.current] = c
}

// Result returns a copy of the accumulated tallies.
func (a *ProjectAggregator) Result() ProjectResult {
	byAuthor := make(map[string]Counts, len(a.byAuthor))
	for k, v := range a.byAuthor {
		byAuthor[k] = v
	}
	return ProjectResult{
		Project:  a.project,
		Branch:   a.branch,
		Totals:   a.totals,
		ByAuthor: byAuthor,
	}
}

var _ gitlog.Observer = (*ProjectAggregator)(nil)

// WindowStats holds the three coupled collections of one window.
type WindowStats struct {
	Window         window.TimeWindow
	Projects       *ProjStat
	ProjectAuthors *ProjAuthorStat
	Authors        *AuthorStat

	corrected bool
}

// NewWindowStats creates empty collections for w.
func NewWindowStats(w window.TimeWindow, merge map[string]string) *WindowStats {
	return &WindowStats{
		Window:         w,
		Projects:       NewProjStat(merge),
		ProjectAuthors: NewProjAuthorStat(merge),
		Authors:        NewAuthorStat(),
	}
}

// Merge folds a project's result into all three collections. Projects
// without commits are left out.
func (ws *WindowStats) Merge(r ProjectResult) {
	if r.Totals.Commits == 0 {
		return
	}
	ws.Projects.Add(r.Project, ProjectTally{Branch: r.Branch, Counts: r.Totals})
	for author, c := range r.ByAuthor {
		ws.ProjectAuthors.Add(r.Project, author, ProjectTally{Branch: r.Branch, Counts: c})
		ws.Authors.Add(author, c)
	}
}

// MarkCorrected records that corrections were applied. It reports false
// when they had already been applied.
func (ws *WindowStats) MarkCorrected() bool {
	if ws.corrected {
		return false
	}
	ws.corrected = true
	return true
}

// Corrected reports whether corrections were applied.
func (ws *WindowStats) Corrected() bool { return ws.corrected }

// Reconciliation compares the totals of the three collections.
type Reconciliation struct {
	Projects       Counts
	ProjectAuthors Counts
	Authors        Counts
}

// Consistent reports whether all three totals agree.
func (r Reconciliation) Consistent() bool {
	return r.Projects == r.ProjectAuthors && r.ProjectAuthors == r.Authors
}

func (ws *WindowStats) Reconcile() Reconciliation {
	return Reconciliation{
		Projects:       ws.Projects.Totals(),
		ProjectAuthors: ws.ProjectAuthors.Totals(),
		Authors:        ws.Authors.Totals(),
	}
}

// ErrOutOfOrder is returned when windows are appended out of chronological order.
var ErrOutOfOrder = errors.New("window appended out of chronological order")

// MonthlyStats is the ordered sequence of independent window snapshots.
type MonthlyStats struct {
	windows []*WindowStats
}

// Append adds ws after the last window. The new window must not start
// before the previous one ends.
func (m *MonthlyStats) Append(ws *WindowStats) error {
	if n := len(m.windows); n > 0 {
		last := m.windows[n-1].Window
		if ws.Window.Since.Before(last.Before) {
			return fmt.Errorf("%w: %s after %s", ErrOutOfOrder, ws.Window, last)
		}
	}
	m.windows = append(m.windows, ws)
	return nil
}

func (m *MonthlyStats) Windows() []*WindowStats { return m.windows }

func (m *MonthlyStats) Len() int { return len(m.windows) }

// Find returns the stored window equal to w.
func (m *MonthlyStats) Find(w window.TimeWindow) (*WindowStats, bool) {
	i := sort.Search(len(m.windows), func(i int) bool {
		return !m.windows[i].Window.Since.Before(w.Since)
	})
	if i < len(m.windows) && m.windows[i].Window.Since.Equal(w.Since) && m.windows[i].Window.Before.Equal(w.Before) {
		return m.windows[i], true
	}
	return nil, false
}

// ProjectNames returns every project present in any window, sorted.
func (m *MonthlyStats) ProjectNames() []string {
	set := make(map[string]struct{})
	for _, ws := range m.windows {
		for _, p := range ws.Projects.Projects() {
			set[p] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// AuthorNames returns every author present in any window, sorted.
func (m *MonthlyStats) AuthorNames() []string {
	set := make(map[string]struct{})
	for _, ws := range m.windows {
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
