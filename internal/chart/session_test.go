package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		cmd     Command
		arg     string
		wantErr bool
	}{
		{"", CmdHelp, "", false},
		{"  projects ", CmdListProjects, "", false},
		{"project billing", CmdSelectProject, "billing", false},
		{"author alice@example.com", CmdSelectAuthor, "alice@example.com", false},
		{"METRIC commits", CmdSelectMetric, "commits", false},
		{"by-month", 0, "", true},
		{"q", CmdQuit, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, arg, err := ParseCommand(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestSession_Selection(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out)

	_, err := s.Dispatch(CmdSelectProject, "billing")
	require.NoError(t, err)
	assert.Equal(t, "billing", s.Project)

	_, err = s.Dispatch(CmdSelectProject, "unknown")
	assert.ErrorIs(t, err, ErrUnknownName)
	assert.Equal(t, "billing", s.Project)

	_, err = s.Dispatch(CmdSelectMetric, "commits")
	require.NoError(t, err)
	assert.Equal(t, MetricCommits, s.Metric)

	_, err = s.Dispatch(CmdAuthorByMonth, "")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSession_RenderWritesFile(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out)

	_, err := s.Dispatch(CmdSelectAuthor, "alice@example.com")
	require.NoError(t, err)
	_, err = s.Dispatch(CmdAuthorByMonth, "")
	require.NoError(t, err)

	path := filepath.Join(s.OutDir, "chart_author_alice_example.com_lines.html")
	assert.Equal(t, path, s.ChartPath("author_alice@example.com"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alice@example.com")
	assert.Contains(t, out.String(), "Chart written to "+path)
}

func TestSession_Run(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out)

	input := strings.Join([]string{
		"projects",
		"bogus",
		"month 2024-01",
		"by-project",
		"quit",
		"by-author",
	}, "\n")
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "Projects (2):")
	assert.Contains(t, text, "unknown command")

	_, err := os.Stat(filepath.Join(s.OutDir, "chart_by_project_lines_2024-01.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(s.OutDir, "chart_by_author_lines_2024-01.html"))
	assert.True(t, os.IsNotExist(err), "commands after quit must not run")
}

func TestSession_RunEndOfInput(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out)
	assert.NoError(t, s.Run(context.Background(), strings.NewReader("help\n")))
	assert.Contains(t, out.String(), "Commands:")
}

func TestSession_RunCancelled(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx, strings.NewReader("help\n")), context.Canceled)
}
