package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/finallines"
	"github.com/masmgr/codestat/internal/runner"
)

// LinesCmd returns the lines command.
func LinesCmd() *cli.Command {
	flags := concat(projectFlags(), outputFlags(), []cli.Flag{
		&cli.BoolFlag{
			Name:  "condensed",
			Usage: "Pack per-extension counts into one column",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch to count (default: finalLines.branch from config)",
		},
	})

	return &cli.Command{
		Name:    "lines",
		Aliases: []string{"l"},
		Usage:   "Count final lines of every project by file extension",
		Flags:   flags,
		Action:  linesAction,
	}
}

func linesAction(c *cli.Context) error {
	format, err := parseOutputFlag(c.String("output"))
	if err != nil {
		return failUsage(c, err)
	}

	rc, err := NewRunContext(c)
	if err != nil {
		return failUsage(c, err)
	}
	defer rc.Close()

	r, err := rc.Runner(rc.Workspace())
	if err != nil {
		return err
	}

	fl := rc.Config.FinalLines
	counter := finallines.NewCounter(finallines.Options{
		Extensions:     fl.Extensions,
		SkipPaths:      fl.SkipPaths,
		SkipExtensions: fl.SkipExtensions,
		SkipVendor:     fl.SkipVendor,
	}, rc.Logger)

	branch := c.String("branch")
	if branch == "" {
		branch = fl.Branch
	}

	report, failures, err := r.RunFinalLines(c.Context, counter, runner.LinesOptions{
		Projects:    rc.Projects,
		Merge:       rc.Config.Merge,
		Branch:      branch,
		UpdateCodes: c.Bool("update-codes"),
		Progress:    c.Bool("progress"),
	})
	if err != nil {
		return fmt.Errorf("failed to count final lines: %w", err)
	}

	if err := writeFinalLinesReport(c, rc, format, report); err != nil {
		return err
	}
	printFailures(os.Stderr, failures)
	return nil
}
