package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/codestat/config"
	"github.com/masmgr/codestat/internal/correction"
	"github.com/masmgr/codestat/internal/gitlog"
	"github.com/masmgr/codestat/internal/identity"
	"github.com/masmgr/codestat/internal/logging"
	"github.com/masmgr/codestat/internal/output"
	"github.com/masmgr/codestat/internal/runner"
	"github.com/masmgr/codestat/internal/window"
)

// RunContext holds the state shared by every command: configuration,
// logger, selected projects and, for ranged commands, the windows.
type RunContext struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Projects []runner.Project
	Since    time.Time
	Before   time.Time
	ByMonth  bool
	Windows  []window.TimeWindow

	logCloser io.Closer
}

// NewRunContext loads configuration and sets up logging. Argument errors
// are returned as *UsageError.
func NewRunContext(c *cli.Context) (*RunContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if c.Bool("debug") {
		level = "debug"
	}
	format := cfg.Log.Format
	if f := c.String("log-format"); f != "" {
		format = f
	}
	logger, closer, err := logging.NewWithFile(level, format, os.Stderr, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	projects, err := selectProjects(cfg, c.String("project"))
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &RunContext{
		Config:    cfg,
		Logger:    logger,
		Projects:  projects,
		logCloser: closer,
	}, nil
}

// NewRangedRunContext is NewRunContext plus the --since/--before windows.
func NewRangedRunContext(c *cli.Context) (*RunContext, error) {
	since, before, byMonth, windows, err := parseWindows(c, time.Now())
	if err != nil {
		return nil, err
	}

	rc, err := NewRunContext(c)
	if err != nil {
		return nil, err
	}
	rc.Since, rc.Before, rc.ByMonth, rc.Windows = since, before, byMonth, windows
	return rc, nil
}

// Close releases the log file.
func (rc *RunContext) Close() error {
	if rc.logCloser == nil {
		return nil
	}
	return rc.logCloser.Close()
}

// Workspace returns the git working copy manager.
func (rc *RunContext) Workspace() *gitlog.GitCLI {
	return gitlog.NewGitCLI(rc.Config.Workspace, rc.Config.GitHost, rc.Logger)
}

// Runner builds the pipeline over ws.
func (rc *RunContext) Runner(ws gitlog.Workspace) (*runner.Runner, error) {
	entries, err := rc.Config.CorrectionEntries()
	if err != nil {
		return nil, err
	}
	normalizer := identity.NewNormalizer(rc.Config.Authors.Aliases, rc.Logger)
	corrections := correction.NewLayer(entries, rc.Logger)
	return runner.New(ws, normalizer, corrections, rc.Logger), nil
}

// StatOptions creates runner options from CLI flags.
func (rc *RunContext) StatOptions(c *cli.Context) runner.StatOptions {
	return runner.StatOptions{
		Projects:       rc.Projects,
		Windows:        rc.Windows,
		Merge:          rc.Config.Merge,
		UpdateCodes:    c.Bool("update-codes"),
		CreateLog:      c.Bool("create-log") || c.Bool("update-codes"),
		OriginalAuthor: c.Bool("original-author"),
		Progress:       c.Bool("progress"),
	}
}

// OutputOptions creates OutputOptions from CLI flags.
func (rc *RunContext) OutputOptions(c *cli.Context, format output.OutputFormat) output.OutputOptions {
	return output.OutputOptions{
		Format:     format,
		OutputDir:  rc.Config.OutputDir,
		OutputPath: c.String("output-path"),
		Subtotal:   c.Bool("subtotal"),
		Condensed:  c.Bool("condensed"),
	}
}

// loadConfig loads configuration from file or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// selectProjects returns the single --project or the whole registry.
func selectProjects(cfg *config.Config, single string) ([]runner.Project, error) {
	if single != "" {
		p, err := runner.ParseProject(single)
		if err != nil {
			return nil, usageError(err)
		}
		return []runner.Project{p}, nil
	}

	var projects []runner.Project
	for _, s := range cfg.ProjectList() {
		p, err := runner.ParseProject(s)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if len(projects) == 0 {
		return nil, errors.New("no projects configured (set projects in the config file or use --project)")
	}
	return projects, nil
}

// parseWindows validates --since/--before and splits the range.
func parseWindows(c *cli.Context, now time.Time) (time.Time, time.Time, bool, []window.TimeWindow, error) {
	since, before, err := config.ParseRange(c.String("since"), c.String("before"))
	if err != nil {
		return since, before, false, nil, usageError(err)
	}

	byMonth := c.Bool("by-month")
	var windows []window.TimeWindow
	if byMonth {
		windows, err = window.SplitByMonth(since, before, now)
	} else {
		windows, err = window.Whole(since, before)
	}
	if err != nil {
		return since, before, byMonth, nil, usageError(err)
	}
	return since, before, byMonth, windows, nil
}

// failUsage prints the command help for argument errors and passes err on.
func failUsage(c *cli.Context, err error) error {
	var usage *UsageError
	if errors.As(err, &usage) {
		_ = cli.ShowSubcommandHelp(c)
	}
	return err
}

// printFailures lists projects that were not processed.
func printFailures(w io.Writer, failures []runner.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\nProjects not processed (%d):\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
