package chart

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/aggregation"
)

// Command is one action of the interactive chart loop.
type Command int

const (
	CmdHelp Command = iota
	CmdListProjects
	CmdListAuthors
	CmdSelectProject
	CmdSelectAuthor
	CmdSelectMonth
	CmdSelectMetric
	CmdByProject
	CmdByAuthor
	CmdProjectByMonth
	CmdAuthorByMonth
	CmdQuit
)

var commandNames = map[string]Command{
	"help":             CmdHelp,
	"?":                CmdHelp,
	"projects":         CmdListProjects,
	"authors":          CmdListAuthors,
	"project":          CmdSelectProject,
	"author":           CmdSelectAuthor,
	"month":            CmdSelectMonth,
	"metric":           CmdSelectMetric,
	"by-project":       CmdByProject,
	"by-author":        CmdByAuthor,
	"project-by-month": CmdProjectByMonth,
	"author-by-month":  CmdAuthorByMonth,
	"quit":             CmdQuit,
	"exit":             CmdQuit,
	"q":                CmdQuit,
}

var (
	// ErrUnknownCommand is returned for input that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoSelection is returned when a chart needs a project or author that was not selected.
	ErrNoSelection = errors.New("nothing selected")
	// ErrUnknownName is returned when selecting a project or author that has no data.
	ErrUnknownName = errors.New("no data for name")
)

// ParseCommand splits an input line into a command and its argument.
func ParseCommand(line string) (Command, string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CmdHelp, "", nil
	}
	cmd, ok := commandNames[strings.ToLower(fields[0])]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return cmd, strings.Join(fields[1:], " "), nil
}

// Session holds the state of an interactive chart loop.
type Session struct {
	Stats   *aggregation.MonthlyStats
	Project string
	Author  string
	Month   string
	Metric  Metric
	OutDir  string

	out    io.Writer
	logger zerolog.Logger
}

// NewSession creates a session over stats. Charts are written into outDir.
func NewSession(stats *aggregation.MonthlyStats, outDir string, out io.Writer, logger zerolog.Logger) *Session {
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		Stats:  stats,
		Metric: MetricLines,
		OutDir: outDir,
		out:    out,
		logger: logger,
	}
}

// Dispatch executes cmd. It reports whether the loop should stop.
func (s *Session) Dispatch(cmd Command, arg string) (bool, error) {
	switch cmd {
	case CmdHelp:
		s.printHelp()
	case CmdListProjects:
		s.printList("Projects", s.Stats.ProjectNames())
	case CmdListAuthors:
		s.printList("Authors", s.Stats.AuthorNames())
	case CmdSelectProject:
		if arg != "" && !slices.Contains(s.Stats.ProjectNames(), arg) {
			return false, fmt.Errorf("%w: project %q", ErrUnknownName, arg)
		}
		s.Project = arg
	case CmdSelectAuthor:
		if arg != "" && !slices.Contains(s.Stats.AuthorNames(), arg) {
			return false, fmt.Errorf("%w: author %q", ErrUnknownName, arg)
		}
		s.Author = arg
	case CmdSelectMonth:
		s.Month = arg
	case CmdSelectMetric:
		m, err := ParseMetric(arg)
		if err != nil {
			return false, err
		}
		s.Metric = m
	case CmdByProject:
		return false, s.render("by_project", ByProject(s.Stats, s.Metric, s.Month))
	case CmdByAuthor:
		return false, s.render("by_author", ByAuthor(s.Stats, s.Metric, s.Month))
	case CmdProjectByMonth:
		if s.Project == "" {
			return false, fmt.Errorf("%w: select a project first", ErrNoSelection)
		}
		return false, s.render("project_"+s.Project, ProjectByMonth(s.Stats, s.Project, s.Metric))
	case CmdAuthorByMonth:
		if s.Author == "" {
			return false, fmt.Errorf("%w: select an author first", ErrNoSelection)
		}
		return false, s.render("author_"+s.Author, AuthorByMonth(s.Stats, s.Author, s.Metric))
	case CmdQuit:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownCommand, cmd)
	}
	return false, nil
}

// Run reads commands from in until quit, end of input or cancellation.
// Command errors are printed and the loop continues.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	prompt := color.New(color.FgCyan)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		prompt.Fprint(s.out, "chart> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		cmd, arg, err := ParseCommand(scanner.Text())
		if err == nil {
			var done bool
			done, err = s.Dispatch(cmd, arg)
			if done {
				return nil
			}
		}
		if err != nil {
			color.New(color.FgRed).Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// ChartPath returns the file a chart with the given name is written to.
func (s *Session) ChartPath(name string) string {
	file := fmt.Sprintf("chart_%s_%s", sanitize(name), s.Metric)
	if s.Month != "" {
		file += "_" + s.Month
	}
	return filepath.Join(s.OutDir, file+".html")
}

func (s *Session) render(name string, d Dataset) error {
	path := s.ChartPath(name)
	if s.OutDir != "" {
		if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := RenderBar(f, d); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}

	s.logger.Info().Str("path", path).Str("title", d.Title).Msg("chart written")
	fmt.Fprintf(s.out, "Chart written to %s\n", path)
	return nil
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  projects | authors            list names with data")
	fmt.Fprintln(s.out, "  project <name> | author <name> select a project or author")
	fmt.Fprintln(s.out, "  month <YYYY-MM>               restrict by-project/by-author to one month")
	fmt.Fprintln(s.out, "  metric lines|commits          choose the plotted counter")
	fmt.Fprintln(s.out, "  by-project | by-author        chart all projects or authors")
	fmt.Fprintln(s.out, "  project-by-month              chart the selected project per month")
	fmt.Fprintln(s.out, "  author-by-month               chart the selected author per month")
	fmt.Fprintln(s.out, "  quit")
	fmt.Fprintf(s.out, "Selected: project=%q author=%q month=%q metric=%s\n", s.Project, s.Author, s.Month, s.Metric)
}

func (s *Session) printList(title string, names []string) {
	fmt.Fprintf(s.out, "%s (%d):\n", title, len(names))
	for _, n := range names {
		fmt.Fprintf(s.out, "  %s\n", n)
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '<', '>', '@', ' ', '*', '?', '"', '|':
			return '_'
		}
		return r
	}, name)
}
