package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	yamlData := `
project:
  tools: [git]
preprocess:
  select_k: 5
  test_size: 0.3
output:
  dir: results
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yamlData), 0o644))
	t.Setenv("DATAKIT_PREPROCESS_SELECT_K", "8")
	t.Setenv("DATAKIT_LOGGING_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"git"}, cfg.Project.Tools, "file replaces the default list")
	assert.Equal(t, ".mcp.json", cfg.Project.Marker, "absent keys keep their defaults")
	assert.Equal(t, 8, cfg.Preprocess.SelectK, "env wins over the file")
	assert.Equal(t, 0.3, cfg.Preprocess.TestSize)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   map[string]string
		field string
	}{
		{name: "test size out of range", yaml: "preprocess:\n  test_size: 1.5\n", field: "Config.Preprocess.TestSize"},
		{name: "unknown log level", env: map[string]string{"DATAKIT_LOGGING_LEVEL": "loud"}, field: "Config.Logging.Level"},
		{name: "empty marker", yaml: "project:\n  marker: \"\"\n", field: "Config.Project.Marker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.yaml != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.yaml), 0o644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(dir)
			require.Error(t, err)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.ParamName)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("project: [unclosed"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Preprocess.SelectK = 3
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, FileName)))

	back, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
