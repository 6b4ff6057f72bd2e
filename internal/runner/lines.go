package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/masmgr/codestat/internal/aggregation"
	"github.com/masmgr/codestat/internal/finallines"
	"github.com/masmgr/codestat/internal/output"
)

// DefaultBranch is checked out before final lines are counted.
const DefaultBranch = "master"

// LinesOptions configures a final line count run.
type LinesOptions struct {
	Projects    []Project
	Merge       map[string]string
	Branch      string
	UpdateCodes bool
	Progress    bool
}

// RunFinalLines counts the lines of every project's working copy. Projects
// renamed through the merge table are folded into one row. A project that
// cannot be counted is logged, collected and left out of the report.
func (r *Runner) RunFinalLines(ctx context.Context, counter *finallines.Counter, opts LinesOptions) (*output.FinalLinesReport, []Failure, error) {
	branch := opts.Branch
	if branch == "" {
		branch = DefaultBranch
	}

	now := time.Now()
	report := &output.FinalLinesReport{
		Date:        now,
		Extensions:  counter.Extensions(),
		GeneratedAt: now,
	}
	index := make(map[string]int)
	var failures []Failure

	bar := r.startProgress(opts.Progress, len(opts.Projects))
	defer r.finishProgress(bar)

	for _, p := range opts.Projects {
		if err := ctx.Err(); err != nil {
			return report, failures, err
		}

		res, err := r.countProject(ctx, counter, p, branch, opts.UpdateCodes)
		r.stepProgress(bar, p.Name)
		if err != nil {
			r.logger.Error().Err(err).Str("project", p.String()).Msg("project not processed")
			failures = append(failures, Failure{Project: p.String(), Err: err})
			continue
		}
		r.logDiagnostics(p, res)

		key := aggregation.RemapProject(opts.Merge, p.Name)
		if i, ok := index[key]; ok {
			report.Projects[i].Tally = report.Projects[i].Tally.Plus(res.Tally)
			continue
		}
		index[key] = len(report.Projects)
		report.Projects = append(report.Projects, output.ProjectLines{Project: key, Tally: res.Tally})
	}

	total := report.Total()
	r.logger.Info().Int("projects", len(report.Projects)).Int("lines", total.Total).Int("others", total.Others).Msg("final lines counted")
	return report, failures, nil
}

func (r *Runner) countProject(ctx context.Context, counter *finallines.Counter, p Project, branch string, update bool) (finallines.Result, error) {
	if _, err := r.ensureWorkingCopy(ctx, p); err != nil {
		return finallines.Result{}, err
	}

	if update {
		if err := r.workspace.Pull(ctx, p.Name, branch); err != nil {
			return finallines.Result{}, fmt.Errorf("pull %s: %w", p, err)
		}
	} else if err := r.workspace.Checkout(ctx, p.Name, branch); err != nil {
		return finallines.Result{}, fmt.Errorf("checkout %s: %w", p, err)
	}

	res, err := counter.Count(ctx, r.workspace.ProjectPath(p.Name))
	if err != nil {
		return res, fmt.Errorf("count %s: %w", p, err)
	}
	return res, nil
}

func (r *Runner) logDiagnostics(p Project, res finallines.Result) {
	ev := r.logger.Debug().Str("project", p.Name).Int("lines", res.Total).Int("others", res.Others)
	if undefined := res.SortedUndefined(); len(undefined) > 0 {
		ev = ev.Strs("undefined", undefined)
	}
	ev.Msg("project lines counted")

	if n := len(res.Skipped); n > 0 {
		r.logger.Debug().Str("project", p.Name).Int("files", n).Msg("files skipped")
	}
	if n := len(res.NotUTF8); n > 0 {
		r.logger.Info().Str("project", p.Name).Int("files", n).Msg("files decoded with a fallback encoding")
	}
	if n := len(res.Errors); n > 0 {
		r.logger.Warn().Str("project", p.Name).Int("files", n).Msg("files could not be counted")
	}
}
