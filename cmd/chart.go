package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/chart"
)

// ChartCmd returns the chart command.
func ChartCmd() *cli.Command {
	flags := concat(projectFlags(), rangeFlags(), logFlags(), []cli.Flag{
		&cli.StringFlag{
			Name:  "view",
			Usage: "Render one chart and exit (by-project, by-author, project-by-month, author-by-month); interactive when empty",
		},
		&cli.StringFlag{
			Name:  "metric",
			Usage: "Plotted counter (lines, commits)",
			Value: "lines",
		},
		&cli.StringFlag{
			Name:  "month",
			Usage: "Restrict by-project and by-author charts to one month (YYYY-MM)",
		},
		&cli.StringFlag{
			Name:  "author",
			Usage: "Author for author-by-month",
		},
		&cli.StringFlag{
			Name:  "select-project",
			Usage: "Project for project-by-month",
		},
	})

	return &cli.Command{
		Name:   "chart",
		Usage:  "Render bar charts of commit statistics as HTML",
		Flags:  flags,
		Action: chartAction,
	}
}

func chartAction(c *cli.Context) error {
	metric, err := chart.ParseMetric(c.String("metric"))
	if err != nil {
		return failUsage(c, usageError(err))
	}
	view, err := parseView(c.String("view"))
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
	printFailures(os.Stderr, res.Failures)

	session := chart.NewSession(res.Stats, rc.Config.OutputDir, os.Stdout, rc.Logger)
	session.Metric = metric
	session.Month = c.String("month")

	if view == chart.CmdHelp {
		return session.Run(c.Context, os.Stdin)
	}

	steps := []struct {
		cmd chart.Command
		arg string
	}{
		{chart.CmdSelectProject, c.String("select-project")},
		{chart.CmdSelectAuthor, c.String("author")},
		{view, ""},
	}
	for _, s := range steps {
		if _, err := session.Dispatch(s.cmd, s.arg); err != nil {
			return err
		}
	}
	return nil
}

// parseView maps --view to a chart command. An empty view selects the
// interactive loop, reported as CmdHelp.
func parseView(s string) (chart.Command, error) {
	if s == "" {
		return chart.CmdHelp, nil
	}
	cmd, _, err := chart.ParseCommand(s)
	if err != nil {
		return 0, usageError(err)
	}
	switch cmd {
	case chart.CmdByProject, chart.CmdByAuthor, chart.CmdProjectByMonth, chart.CmdAuthorByMonth:
		return cmd, nil
	default:
		return 0, usageError(fmt.Errorf("%q is not a chart view", s))
	}
}
