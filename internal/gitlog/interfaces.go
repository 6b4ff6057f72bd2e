package gitlog

import (
	"context"
	"io"

	"github.com/masmgr/codestat/internal/window"
)

// Workspace manages local working copies of registry projects.
type Workspace interface {
	// ProjectPath returns the directory of the project's working copy.
	ProjectPath(project string) string
	// Exists reports whether the working copy is present.
	Exists(project string) bool
	// IsRepository reports whether an existing working copy is a git repository.
	IsRepository(project string) bool
	Clone(ctx context.Context, group, project string) error
	Fetch(ctx context.Context, project string) error
	Pull(ctx context.Context, project, branch string) error
	Checkout(ctx context.Context, project, branch string) error
	// OpenCommitLog returns the git log --stat text for w. With refresh the
	// log is regenerated, otherwise the cached copy is used.
	OpenCommitLog(ctx context.Context, project string, w window.TimeWindow, refresh bool) (io.ReadCloser, error)
	// Branch returns the checked-out branch name or UnknownBranch.
	Branch(project string) string
}

// Compile-time interface conformance check.
var _ Workspace = (*GitCLI)(nil)
