package gitlog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/masmgr/codestat/internal/window"
)

// MockWorkspace is a test double for GitCLI.
// Logs are keyed by "project@since..before" or by project alone; Missing projects report Exists() == false and
// fail to clone. NotRepository projects exist but are not git repositories.
type MockWorkspace struct {
	// Root is the directory ProjectPath resolves against.
	Root          string
	Logs          map[string]string
	Branches      map[string]string
	Missing       map[string]bool
	NotRepository map[string]bool
	LogErrors     map[string]error

	Cloned  []string
	Fetched []string
	Pulled  []string
	Checked []string
	Opened  []string
}

// NewMockWorkspace creates a MockWorkspace serving the given logs.
func NewMockWorkspace(logs map[string]string) *MockWorkspace {
	return &MockWorkspace{
		Logs:          logs,
		Branches:      map[string]string{},
		Missing:       map[string]bool{},
		NotRepository: map[string]bool{},
		LogErrors:     map[string]error{},
	}
}

func (m *MockWorkspace) ProjectPath(project string) string {
	if m.Root == "" {
		return filepath.Join("mock", project)
	}
	return filepath.Join(m.Root, project)
}

func (m *MockWorkspace) Exists(project string) bool {
	return !m.Missing[project]
}

func (m *MockWorkspace) IsRepository(project string) bool {
	return !m.NotRepository[project]
}

func (m *MockWorkspace) Clone(_ context.Context, group, project string) error {
	m.Cloned = append(m.Cloned, group+"/"+project)
	if m.Missing[project] {
		return fmt.Errorf("git clone failed: repository %s/%s not found", group, project)
	}
	return nil
}

func (m *MockWorkspace) Fetch(_ context.Context, project string) error {
	m.Fetched = append(m.Fetched, project)
	return nil
}

func (m *MockWorkspace) Pull(_ context.Context, project, _ string) error {
	m.Pulled = append(m.Pulled, project)
	return nil
}

func (m *MockWorkspace) Checkout(_ context.Context, project, _ string) error {
	m.Checked = append(m.Checked, project)
	return nil
}

func (m *MockWorkspace) OpenCommitLog(_ context.Context, project string, w window.TimeWindow, _ bool) (io.ReadCloser, error) {
	m.Opened = append(m.Opened, project+"@"+w.String())
	if err := m.LogErrors[project]; err != nil {
		return nil, err
	}
	text, ok := m.Logs[project+"@"+w.String()]
	if !ok {
		text, ok = m.Logs[project]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, project)
	}
	return io.NopCloser(strings.NewReader(text)), nil
}

func (m *MockWorkspace) Branch(project string) string {
	if b, ok := m.Branches[project]; ok {
		return b
	}
	return UnknownBranch
}

// Compile-time interface conformance check.
var _ Workspace = (*MockWorkspace)(nil)
