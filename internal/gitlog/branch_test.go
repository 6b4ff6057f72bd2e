package gitlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepoWithCommit(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := wt.Add("main.go"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := wt.Commit("init", &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return dir, repo
}

func TestResolveBranch(t *testing.T) {
	dir, repo := initRepoWithCommit(t)

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if got := ResolveBranch(dir); got != head.Name().Short() {
		t.Errorf("ResolveBranch = %q, expected %q", got, head.Name().Short())
	}

	wt, _ := repo.Worktree()
	err = wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("develop"),
		Create: true,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := ResolveBranch(dir); got != "develop" {
		t.Errorf("ResolveBranch after checkout = %q, expected develop", got)
	}
}

func TestResolveBranch_NotARepository(t *testing.T) {
	dir := t.TempDir()
	if got := ResolveBranch(dir); got != UnknownBranch {
		t.Errorf("ResolveBranch = %q, expected %q", got, UnknownBranch)
	}
	if IsRepository(dir) {
		t.Error("IsRepository(empty dir) = true, expected false")
	}
}

func TestIsRepository(t *testing.T) {
	dir, _ := initRepoWithCommit(t)
	if !IsRepository(dir) {
		t.Error("IsRepository = false, expected true")
	}
}
