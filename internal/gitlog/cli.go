package gitlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/window"
)

// ErrLogNotFound is returned when no cached log exists and refresh was not requested.
var ErrLogNotFound = errors.New("git log file not found")

// LogFileName returns the cache file name for w.
func LogFileName(w window.TimeWindow) string {
	return fmt.Sprintf("git_log_stat_%s_%s.txt", w.SinceString(), w.BeforeString())
}

// GitCLI drives the git binary against working copies under a workspace directory.
type GitCLI struct {
	root   string
	host   string
	logger zerolog.Logger
}

// NewGitCLI creates a GitCLI cloning from git@host:group/project.git into root.
func NewGitCLI(root, host string, logger zerolog.Logger) *GitCLI {
	return &GitCLI{root: root, host: host, logger: logger}
}

func (g *GitCLI) ProjectPath(project string) string {
	return filepath.Join(g.root, project)
}

func (g *GitCLI) Exists(project string) bool {
	info, err := os.Stat(g.ProjectPath(project))
	return err == nil && info.IsDir()
}

// IsRepository reports whether the project's working copy opens as a git repository.
func (g *GitCLI) IsRepository(project string) bool {
	return IsRepository(g.ProjectPath(project))
}

// RemoteURL returns the SSH clone URL of a project.
func (g *GitCLI) RemoteURL(group, project string) string {
	return fmt.Sprintf("git@%s:%s/%s.git", g.host, group, project)
}

// Clone clones the project unless its working copy already exists.
func (g *GitCLI) Clone(ctx context.Context, group, project string) error {
	if g.Exists(project) {
		return nil
	}
	if err := os.MkdirAll(g.root, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	url := g.RemoteURL(group, project)
	g.logger.Info().Str("project", project).Str("url", url).Msg("git cloning")
	return g.run(ctx, g.root, "clone", url, project)
}

func (g *GitCLI) Fetch(ctx context.Context, project string) error {
	g.logger.Info().Str("project", project).Msg("git fetching")
	return g.run(ctx, g.ProjectPath(project), "fetch", "origin")
}

// Pull checks out branch and pulls it.
func (g *GitCLI) Pull(ctx context.Context, project, branch string) error {
	g.logger.Info().Str("project", project).Str("branch", branch).Msg("git pulling")
	if err := g.Checkout(ctx, project, branch); err != nil {
		return err
	}
	return g.run(ctx, g.ProjectPath(project), "pull")
}

func (g *GitCLI) Checkout(ctx context.Context, project, branch string) error {
	g.logger.Debug().Str("project", project).Str("branch", branch).Msg("git checkout")
	return g.run(ctx, g.ProjectPath(project), "checkout", branch)
}

func (g *GitCLI) OpenCommitLog(ctx context.Context, project string, w window.TimeWindow, refresh bool) (io.ReadCloser, error) {
	path := filepath.Join(g.ProjectPath(project), LogFileName(w))
	if refresh {
		if err := g.writeCommitLog(ctx, project, w, path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run again with --create-log)", ErrLogNotFound, path)
		}
		return nil, err
	}
	return f, nil
}

func (g *GitCLI) writeCommitLog(ctx context.Context, project string, w window.TimeWindow, path string) error {
	g.logger.Info().Str("project", project).Str("window", w.String()).Msg("git logging")

	args := []string{
		"-C", g.ProjectPath(project),
		"log",
		"--no-color",
		"--pretty=" + LogFormat,
		"--stat",
		"--since=" + w.SinceString(),
		"--before=" + w.BeforeString(),
		"--all",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = f
	cmd.Stderr = &stderr
	g.logger.Debug().Strs("args", args).Msg("git")

	runErr := cmd.Run()
	closeErr := f.Close()
	if runErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("git log failed: %w: %s", runErr, strings.TrimSpace(stderr.String()))
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write log file: %w", closeErr)
	}
	return os.Rename(tmp, path)
}

func (g *GitCLI) Branch(project string) string {
	return ResolveBranch(g.ProjectPath(project))
}

func (g *GitCLI) run(ctx context.Context, dir string, args ...string) error {
	full := append([]string{"-C", dir}, args...)
	g.logger.Debug().Strs("args", full).Msg("git")
	out, err := exec.CommandContext(ctx, "git", full...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
