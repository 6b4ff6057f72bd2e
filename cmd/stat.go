package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/output"
	"github.com/masmgr/codestat/internal/runner"
)

// StatCmd returns the stat command.
func StatCmd() *cli.Command {
	flags := concat(projectFlags(), rangeFlags(), logFlags(), outputFlags(), []cli.Flag{
		&cli.BoolFlag{
			Name:  "subtotal",
			Usage: "Print per-project subtotal rows in the project/author table",
		},
	})

	return &cli.Command{
		Name:    "stat",
		Aliases: []string{"s"},
		Usage:   "Count added lines and commits by project, project/author and author",
		Flags:   flags,
		Action:  statAction,
	}
}

func statAction(c *cli.Context) error {
	format, err := parseOutputFlag(c.String("output"))
	if err != nil {
		return failUsage(c, err)
	}

	rc, err := NewRangedRunContext(c)
	if err != nil {
		return failUsage(c, err)
	}
	defer rc.Close()

	res, err := collectStats(c, rc)
	if err != nil {
		return err
	}

	report := &output.StatReport{
		Since:       rc.Since,
		Before:      rc.Before,
		ByMonth:     rc.ByMonth,
		Windows:     res.Stats.Windows(),
		Abnormal:    res.Abnormal,
		GeneratedAt: time.Now(),
	}
	if err := writeStatReport(c, rc, format, report); err != nil {
		return err
	}

	printFailures(os.Stderr, res.Failures)
	return nil
}

// collectStats runs the commit pipeline for the context's windows.
func collectStats(c *cli.Context, rc *RunContext) (*runner.StatResult, error) {
	r, err := rc.Runner(rc.Workspace())
	if err != nil {
		return nil, err
	}
	res, err := r.RunStats(c.Context, rc.StatOptions(c))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate commits: %w", err)
	}
	return res, nil
}
