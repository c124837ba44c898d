package envcheck

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

func notProjectRoot(root, marker string) error {
	return errors.Wrapf(errors.ErrNotProjectRoot, "%s not found in %s, run from the project directory", marker, root)
}

// CheckMarker requires the project marker file in root.
func (c *Checker) CheckMarker(root string) CheckResult {
	res := CheckResult{Category: CategoryProject, Name: c.project.Marker, Required: true}
	if fileExists(filepath.Join(root, c.project.Marker)) {
		res.Status = StatusPass
		res.Message = "found"
		return res
	}
	res.Status = StatusFail
	res.Message = "not found, run from the project directory"
	return res
}

// CheckTool looks tool up on PATH. A missing tool fails without being required.
func (c *Checker) CheckTool(tool string) CheckResult {
	res := CheckResult{Category: CategoryTools, Name: tool}
	path, err := c.lookPath(tool)
	if err != nil {
		res.Status = StatusFail
		res.Message = "not installed"
		return res
	}
	res.Status = StatusPass
	res.Message = path
	return res
}

type mcpFile struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// CheckMCPServers lists the servers configured in the marker file, sorted by name.
func (c *Checker) CheckMCPServers(root string) (CheckResult, []string) {
	res := CheckResult{Category: CategoryMCP, Name: c.project.Marker}
	data, err := os.ReadFile(filepath.Join(root, c.project.Marker))
	if err != nil {
		res.Status = StatusFail
		res.Message = "cannot read: " + err.Error()
		return res, nil
	}
	var f mcpFile
	if err := json.Unmarshal(data, &f); err != nil {
		res.Status = StatusFail
		res.Message = "invalid JSON: " + err.Error()
		return res, nil
	}
	servers := make([]string, 0, len(f.MCPServers))
	for name := range f.MCPServers {
		servers = append(servers, name)
	}
	sort.Strings(servers)
	if len(servers) == 0 {
		res.Status = StatusWarn
		res.Message = "no MCP servers configured"
		return res, servers
	}
	res.Status = StatusPass
	res.Message = fmt.Sprintf("%d servers configured", len(servers))
	return res, servers
}

// CheckDir expects dir (relative to root) to be a directory.
func (c *Checker) CheckDir(root, dir string) CheckResult {
	res := CheckResult{Category: CategoryDirs, Name: dir + "/"}
	if dirExists(filepath.Join(root, dir)) {
		res.Status = StatusPass
		res.Message = "present"
		return res
	}
	res.Status = StatusFail
	res.Message = "missing"
	return res
}

// CheckEnvVar warns when name is unset or empty.
func (c *Checker) CheckEnvVar(name string) CheckResult {
	res := CheckResult{Category: CategoryEnv, Name: name}
	if c.getenv(name) != "" {
		res.Status = StatusPass
		res.Message = "set"
		return res
	}
	res.Status = StatusWarn
	res.Message = "not set (optional but recommended)"
	return res
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
