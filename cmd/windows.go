package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/gitlog"
	"github.com/masmgr/codestat/internal/window"
)

// WindowsCmd returns the windows command.
func WindowsCmd() *cli.Command {
	return &cli.Command{
		Name:   "windows",
		Usage:  "Print the windows a date range is split into",
		Flags:  rangeFlags(),
		Action: windowsAction,
	}
}

func windowsAction(c *cli.Context) error {
	_, _, _, windows, err := parseWindows(c, time.Now())
	if err != nil {
		return failUsage(c, err)
	}
	printWindows(c.App.Writer, windows)
	return nil
}

func printWindows(w io.Writer, windows []window.TimeWindow) {
	color.New(color.Bold).Fprintf(w, "%d window(s)\n", len(windows))
	for _, tw := range windows {
		fmt.Fprintf(w, "  %s  %s  %s\n", tw.SinceString(), tw.BeforeString(), gitlog.LogFileName(tw))
	}
}
