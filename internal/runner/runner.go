package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	progress "gopkg.in/cheggaaa/pb.v1"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/correction"
	"github.com/masmgr/codestat/internal/gitlog"
	"github.com/masmgr/codestat/internal/identity"
	"github.com/masmgr/codestat/internal/window"
)

// ErrProjectMissing is returned when a project has no working copy and cannot be cloned.
var ErrProjectMissing = errors.New("project working copy missing")

// Project is one registry entry, cloned from <group>/<name>.
type Project struct {
	Group string
	Name  string
}

func (p Project) String() string { return p.Group + "/" + p.Name }

// ParseProject parses "group/name".
func ParseProject(s string) (Project, error) {
	group, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || group == "" || name == "" || strings.Contains(name, "/") {
		return Project{}, fmt.Errorf("invalid project %q (expected group/name)", s)
	}
	return Project{Group: group, Name: name}, nil
}

// Failure is a project that could not be processed in a window.
type Failure struct {
	Project string
	Window  string
	Err     error
}

func (f Failure) String() string {
	if f.Window == "" {
		return fmt.Sprintf("%s: %v", f.Project, f.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", f.Project, f.Window, f.Err)
}

// StatOptions configures a commit statistics run.
type StatOptions struct {
	Projects       []Project
	Windows        []window.TimeWindow
	Merge          map[string]string
	UpdateCodes    bool
	CreateLog      bool
	OriginalAuthor bool
	Progress       bool
}

// WindowSummary describes what happened in one window besides the tallies.
type WindowSummary struct {
	Window         window.TimeWindow
	Unchanged      []string
	Corrections    correction.Report
	Reconciliation aggregation.Reconciliation
}

// StatResult is the outcome of RunStats.
type StatResult struct {
	Stats     *aggregation.MonthlyStats
	Summaries []WindowSummary
	Failures  []Failure
	Abnormal  []identity.AbnormalAuthor
	Outside   []correction.Entry
}

// Runner drives the per-window, per-project pipeline.
type Runner struct {
	workspace   gitlog.Workspace
	normalizer  *identity.Normalizer
	corrections *correction.Layer
	parser      *gitlog.Parser
	logger      zerolog.Logger

	progressOut io.Writer
}

// New creates a Runner. corrections may be nil.
func New(ws gitlog.Workspace, normalizer *identity.Normalizer, corrections *correction.Layer, logger zerolog.Logger) *Runner {
	return &Runner{
		workspace:   ws,
		normalizer:  normalizer,
		corrections: corrections,
		parser:      gitlog.NewParser(logger),
		logger:      logger,
		progressOut: os.Stderr,
	}
}

// RunStats aggregates every project for every window. Per-project failures
// are logged and collected; the rest of the run continues.
func (r *Runner) RunStats(ctx context.Context, opts StatOptions) (*StatResult, error) {
	var resolver identity.Resolver = r.normalizer
	if opts.OriginalAuthor || r.normalizer == nil {
		resolver = identity.Passthrough{}
	}

	result := &StatResult{Stats: &aggregation.MonthlyStats{}}
	cloned := make(map[string]bool)

	for i, w := range opts.Windows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r.logger.Info().Str("window", w.String()).Int("projects", len(opts.Projects)).Msg("aggregating window")

		ws := aggregation.NewWindowStats(w, opts.Merge)
		bar := r.startProgress(opts.Progress, len(opts.Projects))
		for _, p := range opts.Projects {
			if err := r.processProject(ctx, ws, p, i == 0, opts, resolver, cloned); err != nil {
				r.logger.Error().Err(err).Str("project", p.String()).Str("window", w.String()).Msg("project not processed")
				result.Failures = append(result.Failures, Failure{Project: p.String(), Window: w.String(), Err: err})
				if ctx.Err() != nil {
					r.finishProgress(bar)
					return result, ctx.Err()
				}
			}
			r.stepProgress(bar, p.Name)
		}
		r.finishProgress(bar)

		summary := WindowSummary{Window: w}
		if r.corrections != nil {
			summary.Corrections = r.corrections.Apply(ws)
		}
		summary.Reconciliation = ws.Reconcile()
		if !summary.Reconciliation.Consistent() {
			rec := summary.Reconciliation
			r.logger.Warn().
				Str("window", w.String()).
				Interface("projects", rec.Projects).
				Interface("project_authors", rec.ProjectAuthors).
				Interface("authors", rec.Authors).
				Msg("totals differ between collections")
		}
		summary.Unchanged = unchangedProjects(ws, opts.Projects)
		if len(summary.Unchanged) > 0 {
			r.logger.Info().Str("window", w.String()).Strs("projects", summary.Unchanged).Msg("projects not changed")
		}

		if err := result.Stats.Append(ws); err != nil {
			return result, err
		}
		result.Summaries = append(result.Summaries, summary)
	}

	if r.corrections != nil {
		result.Outside = r.corrections.Outside(opts.Windows)
		for _, e := range result.Outside {
			r.logger.Debug().Str("correction", e.String()).Msg("correction outside the requested range")
		}
	}
	if !opts.OriginalAuthor && r.normalizer != nil {
		result.Abnormal = r.normalizer.Ledger()
	}
	if len(result.Failures) > 0 {
		r.logger.Warn().Int("count", len(result.Failures)).Msg("some projects were not processed")
	}
	return result, nil
}

// processProject brings the working copy up to date as requested, parses its
// log for w and merges the tallies into ws. Tallies read before a log error
// are kept.
func (r *Runner) processProject(ctx context.Context, ws *aggregation.WindowStats, p Project, first bool, opts StatOptions, resolver identity.Resolver, cloned map[string]bool) error {
	refresh := opts.CreateLog || opts.UpdateCodes

	fresh, err := r.ensureWorkingCopy(ctx, p)
	if err != nil {
		return err
	}
	if fresh {
		cloned[p.Name] = true
		if err := r.workspace.Fetch(ctx, p.Name); err != nil {
			return fmt.Errorf("fetch %s: %w", p, err)
		}
	} else if first && opts.UpdateCodes {
		if err := r.workspace.Fetch(ctx, p.Name); err != nil {
			return fmt.Errorf("fetch %s: %w", p, err)
		}
	}
	if cloned[p.Name] {
		refresh = true
	}

	rc, err := r.workspace.OpenCommitLog(ctx, p.Name, ws.Window, refresh)
	if err != nil {
		return fmt.Errorf("open log of %s: %w", p, err)
	}
	defer rc.Close()

	agg := aggregation.NewProjectAggregator(p.Name, r.workspace.Branch(p.Name), resolver, r.logger)
	parsed, parseErr := r.parser.Parse(rc, agg)
	ws.Merge(agg.Result())

	r.logger.Debug().
		Str("project", p.Name).
		Str("window", ws.Window.String()).
		Int("commits", parsed.Commits).
		Int("lines_added", parsed.LinesAdded).
		Int("skipped", parsed.Skipped).
		Msg("project processed")

	if parseErr != nil {
		return fmt.Errorf("read log of %s: %w", p, parseErr)
	}
	return nil
}

// ensureWorkingCopy clones p when its working copy is absent and reports
// whether it did. A directory that is not a git repository is ErrProjectMissing.
func (r *Runner) ensureWorkingCopy(ctx context.Context, p Project) (bool, error) {
	if r.workspace.Exists(p.Name) {
		if !r.workspace.IsRepository(p.Name) {
			return false, fmt.Errorf("%w: %s: %s is not a git repository", ErrProjectMissing, p, r.workspace.ProjectPath(p.Name))
		}
		return false, nil
	}
	if err := r.workspace.Clone(ctx, p.Group, p.Name); err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrProjectMissing, p, err)
	}
	return true, nil
}

func unchangedProjects(ws *aggregation.WindowStats, projects []Project) []string {
	var out []string
	for _, p := range projects {
		if _, ok := ws.Projects.Get(p.Name); !ok {
			out = append(out, p.Name)
		}
	}
	return out
}

func (r *Runner) startProgress(enabled bool, total int) *progress.ProgressBar {
	if !enabled || total == 0 {
		return nil
	}
	bar := progress.New(total)
	bar.Output = r.progressOut
	bar.ShowSpeed = false
	bar.SetMaxWidth(80).Start()
	return bar
}

func (r *Runner) stepProgress(bar *progress.ProgressBar, project string) {
	if bar == nil {
		return
	}
	bar.Postfix(" " + project).Increment()
}

func (r *Runner) finishProgress(bar *progress.ProgressBar) {
	if bar != nil {
		bar.Finish()
	}
}
