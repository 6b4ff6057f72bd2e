package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/internal/output"
	"github.com/masmgr/codestat/internal/window"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "codestat",
		Usage:   "Commit and line statistics across many Git repositories",
		Version: "1.0.0",
		Commands: []*cli.Command{
			StatCmd(),
			LinesCmd(),
			ChartCmd(),
			WindowsCmd(),
			InitCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json)",
			},
		},
	}
}

// projectFlags select which projects are processed and how working copies are refreshed.
func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Process a single project (group/name)",
		},
		&cli.BoolFlag{
			Name:  "update-codes",
			Usage: "Fetch or pull working copies first (implies --create-log)",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show a progress bar on stderr",
		},
	}
}

// rangeFlags select the date range of a run.
func rangeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "since",
			Usage: "Count commits since this date, inclusive (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "before",
			Usage: "Count commits before this date, exclusive (YYYY-MM-DD)",
		},
		&cli.BoolFlag{
			Name:    "by-month",
			Aliases: []string{"m"},
			Usage:   "Split the range into monthly windows",
		},
	}
}

// logFlags control how commit logs are produced.
func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "create-log",
			Usage: "Regenerate git log files instead of reusing cached ones",
		},
		&cli.BoolFlag{
			Name:  "original-author",
			Usage: "Use raw author strings without normalization",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output (console, file, json, markdown)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:  "output-path",
			Usage: "Destination file for json and markdown output (default: stdout)",
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// parseOutputFlag parses the output flag.
func parseOutputFlag(s string) (output.OutputFormat, error) {
	format, err := output.ParseFormat(s)
	if err != nil {
		return "", usageError(err)
	}
	return format, nil
}

// UsageError marks errors caused by invalid arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// Run executes the CLI application. Invalid arguments print the command
// usage; every error exits with status 1.
func Run() {
	app := App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage *UsageError
		if errors.As(err, &usage) || errors.Is(err, window.ErrEmptyRange) {
			fmt.Fprintln(os.Stderr, "Run 'codestat <command> --help' for usage.")
		}
		os.Exit(1)
	}
}
