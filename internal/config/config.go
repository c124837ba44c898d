// Package config loads datakit settings.
//
// Precedence, lowest first:
//  1. Defaults (NewConfig)
//  2. Project file (datakit.yaml in the working directory)
//  3. Environment variables (DATAKIT_*)
//
// The merged result is validated with struct tags.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// FileName is the project config file looked up by Load.
const FileName = "datakit.yaml"

// EnvPrefix prefixes every environment override, e.g. DATAKIT_OUTPUT_DIR.
const EnvPrefix = "DATAKIT"

// Config is the complete datakit configuration.
type Config struct {
	Project    ProjectConfig    `yaml:"project" envconfig:"PROJECT"`
	Preprocess PreprocessConfig `yaml:"preprocess" envconfig:"PREPROCESS"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// ProjectConfig describes what the status check expects to find.
type ProjectConfig struct {
	// Marker must exist in the working directory; it also lists MCP servers.
	Marker string `yaml:"marker" envconfig:"MARKER" validate:"required"`

	Dirs    []string `yaml:"dirs" envconfig:"DIRS" validate:"dive,required"`
	Tools   []string `yaml:"tools" envconfig:"TOOLS" validate:"dive,required"`
	EnvVars []string `yaml:"env_vars" envconfig:"ENV_VARS" validate:"dive,required"`
}

// PreprocessConfig holds the defaults of the preprocess and split commands.
type PreprocessConfig struct {
	MaxOneHotCardinality int     `yaml:"max_onehot_cardinality" envconfig:"MAX_ONEHOT_CARDINALITY" validate:"min=1"`
	SelectK              int     `yaml:"select_k" envconfig:"SELECT_K" validate:"min=1"`
	TestSize             float64 `yaml:"test_size" envconfig:"TEST_SIZE" validate:"gt=0,lt=1"`
	Seed                 int64   `yaml:"seed" envconfig:"SEED"`
	SampleSize           int     `yaml:"sample_size" envconfig:"SAMPLE_SIZE" validate:"min=0"`
}

// OutputConfig says where results and plots go.
type OutputConfig struct {
	Dir     string `yaml:"dir" envconfig:"DIR" validate:"required"`
	PlotDir string `yaml:"plot_dir" envconfig:"PLOT_DIR" validate:"required"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Level   string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Console bool   `yaml:"console" envconfig:"CONSOLE"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Marker: ".mcp.json",
			Dirs: []string{
				"data", "notebooks", "src", "models", "outputs",
				"presentation", ".claude/commands", "data/raw", "data/processed",
			},
			Tools:   []string{"go", "git", "python3", "jupyter"},
			EnvVars: []string{"GITHUB_PAT"},
		},
		Preprocess: PreprocessConfig{
			MaxOneHotCardinality: 10,
			SelectK:              20,
			TestSize:             0.2,
			Seed:                 42,
		},
		Output: OutputConfig{
			Dir:     "outputs",
			PlotDir: "outputs/plots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load builds the configuration for the project in dir. A missing config
// file is not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load config from env")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// loadYAML overlays the keys present in path onto c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

var validate = validator.New()

// Validate checks the struct tags and reports the first failing field as a ValidationError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return errors.NewValidationError(fe.Namespace(), "failed '"+reason+"' check", fe.Value())
	}
	return errors.WithStack(err)
}

// WriteYAML writes c to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}
	return nil
}
