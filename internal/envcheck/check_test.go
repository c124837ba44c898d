package envcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/datakit/internal/config"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

func testProject() config.ProjectConfig {
	return config.ProjectConfig{
		Marker:  ".mcp.json",
		Dirs:    []string{"data", "data/raw", "outputs"},
		Tools:   []string{"git", "jupyter"},
		EnvVars: []string{"GITHUB_PAT"},
	}
}

func newTestChecker(buf *bytes.Buffer, env map[string]string, installed ...string) *Checker {
	return New(testProject(),
		WithOutput(buf),
		WithStyles(NoColorStyles()),
		WithLookPath(func(tool string) (string, error) {
			for _, t := range installed {
				if t == tool {
					return "/usr/bin/" + tool, nil
				}
			}
			return "", errors.New("not found")
		}),
		WithGetenv(func(k string) string { return env[k] }),
	)
}

func setupProject(t *testing.T, mcp string, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".mcp.json"), []byte(mcp), 0o644))
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	return root
}

func TestCheckStatusString(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
		{CheckStatus(9), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestRunAllNotProjectRoot(t *testing.T) {
	var buf bytes.Buffer
	r, err := newTestChecker(&buf, nil).RunAll(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotProjectRoot))
	require.NotNil(t, r)
	assert.Equal(t, "failed", r.Status)
	assert.Len(t, r.Results, 1)
}

func TestRunAllHealthyProject(t *testing.T) {
	root := setupProject(t, `{"mcpServers": {"kaggle": {}, "github": {"command": "gh"}}}`, "data/raw", "outputs")
	var buf bytes.Buffer
	c := newTestChecker(&buf, map[string]string{"GITHUB_PAT": "x"}, "git", "jupyter")

	r, err := c.RunAll(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "ready", r.Status)
	assert.Equal(t, []string{"github", "kaggle"}, r.MCPServers)
	assert.Empty(t, r.MissingTools)

	c.PrintReport(r)
	out := buf.String()
	assert.Contains(t, out, "Environment looks good!")
	assert.Contains(t, out, "      - github")
	assert.NotContains(t, out, "export GITHUB_PAT")
}

func TestRunAllReportsProblems(t *testing.T) {
	root := setupProject(t, `{}`, "data")
	var buf bytes.Buffer
	c := newTestChecker(&buf, nil, "git")

	r, err := c.RunAll(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "ready_with_warnings", r.Status)
	assert.Equal(t, []string{"jupyter"}, r.MissingTools)

	byName := map[string]CheckResult{}
	for _, res := range r.Results {
		byName[string(res.Category)+":"+res.Name] = res
	}
	assert.Equal(t, StatusPass, byName["directories:data/"].Status)
	assert.Equal(t, StatusFail, byName["directories:data/raw/"].Status)
	assert.Equal(t, StatusWarn, byName["mcp:.mcp.json"].Status)
	assert.Equal(t, StatusWarn, byName["environment:GITHUB_PAT"].Status)
	assert.Contains(t, r.NextSteps[0], "export GITHUB_PAT")

	c.PrintReport(r)
	assert.Contains(t, buf.String(), "install missing tools: jupyter")
}

func TestCheckMCPServersInvalidJSON(t *testing.T) {
	root := setupProject(t, `not json`)
	var buf bytes.Buffer
	res, servers := newTestChecker(&buf, nil).CheckMCPServers(root)
	assert.Equal(t, StatusFail, res.Status)
	assert.Nil(t, servers)
}

func TestPrintJSON(t *testing.T) {
	root := setupProject(t, `{"mcpServers": {"a": {}}}`)
	var buf bytes.Buffer
	c := newTestChecker(&buf, nil)
	r, err := c.RunAll(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, c.PrintJSON(r))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ready_with_warnings", decoded["status"])
	results := decoded["results"].([]interface{})
	assert.Equal(t, "PASS", results[0].(map[string]interface{})["status"])
}

func TestSummaryStatus(t *testing.T) {
	assert.Equal(t, "ready", SummaryStatus(nil))
	assert.Equal(t, "failed", SummaryStatus([]CheckResult{{Status: StatusFail, Required: true}}))
	assert.Equal(t, "ready_with_warnings", SummaryStatus([]CheckResult{{Status: StatusFail}}))
}
