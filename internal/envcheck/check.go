// Package envcheck reports whether the working directory is a usable
// datathon project: marker file, MCP servers, tools, directories and
// environment variables.
package envcheck

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/YuminosukeSato/datakit/internal/config"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name in JSON reports.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category groups results in the printed report.
type Category string

const (
	CategoryProject Category = "project"
	CategoryTools   Category = "tools"
	CategoryMCP     Category = "mcp"
	CategoryDirs    Category = "directories"
	CategoryEnv     Category = "environment"
)

// CheckResult is one line of the report.
type CheckResult struct {
	Category Category    `json:"category"`
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Required bool        `json:"required"`
}

// IsCritical reports a failed required check.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs the environment checks described by a ProjectConfig.
type Checker struct {
	project  config.ProjectConfig
	output   io.Writer
	styles   *Styles
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// Option configures a Checker.
type Option func(*Checker)

// WithOutput sets where PrintReport writes. Styling follows the writer: it is
// enabled only for a terminal.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithStyles overrides the detected styles.
func WithStyles(s Styles) Option {
	return func(c *Checker) {
		c.styles = &s
	}
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Checker) {
		c.lookPath = fn
	}
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) Option {
	return func(c *Checker) {
		c.getenv = fn
	}
}

// New creates a Checker for project.
func New(project config.ProjectConfig, opts ...Option) *Checker {
	c := &Checker{
		project:  project,
		output:   os.Stdout,
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.styles == nil {
		s := StylesFor(c.output)
		c.styles = &s
	}
	return c
}

// Report is the full result of RunAll.
type Report struct {
	Root         string        `json:"root"`
	Results      []CheckResult `json:"results"`
	MCPServers   []string      `json:"mcp_servers"`
	MissingTools []string      `json:"missing_tools"`
	Status       string        `json:"status"`
	NextSteps    []string      `json:"next_steps"`
}

// RunAll runs every check against root. When the marker file is missing it
// returns a report holding only that failure, and an error wrapping
// errors.ErrNotProjectRoot.
func (c *Checker) RunAll(ctx context.Context, root string) (*Report, error) {
	r := &Report{Root: root}

	marker := c.CheckMarker(root)
	r.Results = append(r.Results, marker)
	if marker.Status == StatusFail {
		r.Status = SummaryStatus(r.Results)
		return r, notProjectRoot(root, c.project.Marker)
	}

	for _, tool := range c.project.Tools {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := c.CheckTool(tool)
		if res.Status != StatusPass {
			r.MissingTools = append(r.MissingTools, tool)
		}
		r.Results = append(r.Results, res)
	}

	mcp, servers := c.CheckMCPServers(root)
	r.Results = append(r.Results, mcp)
	r.MCPServers = servers

	for _, dir := range c.project.Dirs {
		r.Results = append(r.Results, c.CheckDir(root, dir))
	}
	for _, name := range c.project.EnvVars {
		r.Results = append(r.Results, c.CheckEnvVar(name))
	}

	r.Status = SummaryStatus(r.Results)
	r.NextSteps = c.nextSteps(r)
	return r, nil
}

// SummaryStatus is "failed" when a required check failed, "ready_with_warnings"
// when anything else did not pass, and "ready" otherwise.
func SummaryStatus(results []CheckResult) string {
	warn := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status != StatusPass {
			warn = true
		}
	}
	if warn {
		return "ready_with_warnings"
	}
	return "ready"
}

func (c *Checker) nextSteps(r *Report) []string {
	var steps []string
	for _, res := range r.Results {
		if res.Category == CategoryEnv && res.Status != StatusPass {
			steps = append(steps, "Set "+res.Name+": export "+res.Name+"='your_token'")
		}
	}
	steps = append(steps,
		"Start Jupyter: jupyter lab --port=8888",
		"Inspect a dataset: datakit inspect data/raw/train.csv --target target",
		"Preprocess it: datakit preprocess data/raw/train.csv --target target",
	)
	return steps
}
