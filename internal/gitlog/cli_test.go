package gitlog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/masmgr/codestat/internal/window"
)

var janWindow = window.TimeWindow{
	Since:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	Before: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
}

func TestLogFileName(t *testing.T) {
	expected := "git_log_stat_2024-01-01_2024-02-01.txt"
	if got := LogFileName(janWindow); got != expected {
		t.Errorf("LogFileName = %q, expected %q", got, expected)
	}
}

func TestGitCLI_IsRepository(t *testing.T) {
	repoDir, _ := initRepoWithCommit(t)
	g := NewGitCLI(filepath.Dir(repoDir), "git.example.com", zerolog.Nop())
	if !g.IsRepository(filepath.Base(repoDir)) {
		t.Error("IsRepository(clone) = false, expected true")
	}

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "billing"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	g = NewGitCLI(root, "git.example.com", zerolog.Nop())
	if g.IsRepository("billing") {
		t.Error("IsRepository(plain dir) = true, expected false")
	}
}

func TestGitCLI_RemoteURL(t *testing.T) {
	g := NewGitCLI(t.TempDir(), "git.example.com", zerolog.Nop())
	expected := "git@git.example.com:platform/billing.git"
	if got := g.RemoteURL("platform", "billing"); got != expected {
		t.Errorf("RemoteURL = %q, expected %q", got, expected)
	}
}

func TestGitCLI_OpenCommitLog_Cached(t *testing.T) {
	root := t.TempDir()
	g := NewGitCLI(root, "git.example.com", zerolog.Nop())

	if g.Exists("billing") {
		t.Fatal("Exists before creation = true, expected false")
	}
	projDir := filepath.Join(root, "billing")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if !g.Exists("billing") {
		t.Fatal("Exists = false, expected true")
	}

	_, err := g.OpenCommitLog(context.Background(), "billing", janWindow, false)
	if !errors.Is(err, ErrLogNotFound) {
		t.Fatalf("OpenCommitLog without cache error = %v, expected ErrLogNotFound", err)
	}

	content := "aaa||A <a@example.com>||2024-01-02T00:00:00Z\n"
	if err := os.WriteFile(filepath.Join(projDir, LogFileName(janWindow)), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rc, err := g.OpenCommitLog(context.Background(), "billing", janWindow, false)
	if err != nil {
		t.Fatalf("OpenCommitLog returned error: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != content {
		t.Errorf("OpenCommitLog content = %q, expected %q", data, content)
	}
}

func TestMockWorkspace_WindowSpecificLog(t *testing.T) {
	m := NewMockWorkspace(map[string]string{
		"billing":                        "generic",
		"billing@2024-01-01..2024-02-01": "january",
	})

	rc, err := m.OpenCommitLog(context.Background(), "billing", janWindow, false)
	if err != nil {
		t.Fatalf("OpenCommitLog returned error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "january" {
		t.Errorf("OpenCommitLog = %q, expected january", data)
	}

	if _, err := m.OpenCommitLog(context.Background(), "absent", janWindow, false); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("OpenCommitLog(absent) error = %v, expected ErrLogNotFound", err)
	}
}
