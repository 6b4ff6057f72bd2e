package gitlog

import (
	"github.com/go-git/go-git/v5"
)

// IsRepository reports whether path holds a git working copy.
func IsRepository(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// ResolveBranch returns the short name of HEAD for the working copy at path,
// or UnknownBranch when the repository cannot be opened or HEAD is detached.
func ResolveBranch(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return UnknownBranch
	}
	ref, err := repo.Head()
	if err != nil {
		return UnknownBranch
	}
	if !ref.Name().IsBranch() {
		return UnknownBranch
	}
	return ref.Name().Short()
}
