// Package config loads and validates drydock's pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile     = ".drydock.yml"
	defaultConfigFileTOML = ".drydock.toml"
)

// Config is the top-level drydock configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Image    ImageConfig    `yaml:"image" toml:"image"`
	Stacks   []StackConfig  `yaml:"stacks" toml:"stacks"`
	Test     TestConfig     `yaml:"test" toml:"test"`
	Success  SuccessConfig  `yaml:"success" toml:"success"`
	Failure  FailureConfig  `yaml:"failure" toml:"failure"`
	Always   AlwaysConfig   `yaml:"always" toml:"always"`
	Badge    BadgeConfig    `yaml:"badge" toml:"badge"`
}

// PipelineConfig names the run.
type PipelineConfig struct {
	Name string `yaml:"name" toml:"name"`
}

// StackConfig defines one compose-managed test environment.
type StackConfig struct {
	ID      string            `yaml:"id" toml:"id"`
	File    string            `yaml:"file" toml:"file"`
	Project string            `yaml:"project" toml:"project"`
	WorkDir string            `yaml:"workdir" toml:"workdir"`
	Env     map[string]string `yaml:"env" toml:"env"`
}

// TestConfig configures the test phase.
type TestConfig struct {
	Stack   string            `yaml:"stack" toml:"stack"`
	Command Command           `yaml:"command" toml:"command"`
	WorkDir string            `yaml:"workdir" toml:"workdir"`
	Env     map[string]string `yaml:"env" toml:"env"`
}

// SuccessConfig configures the post-test actions of a passing run.
// Tag entries may use gitver templates like "{version}" or "{branch}-{sha}".
type SuccessConfig struct {
	Tags    []string    `yaml:"tags" toml:"tags"`
	Save    string      `yaml:"save" toml:"save"`
	Publish bool        `yaml:"publish" toml:"publish"`
	Guard   GuardConfig `yaml:"guard" toml:"guard"`
}

// GuardConfig configures pre-publish gates.
type GuardConfig struct {
	Secrets         bool   `yaml:"secrets" toml:"secrets"`
	Context         string `yaml:"context" toml:"context"` // build context dir to scan; defaults to "."
	Vulnerabilities bool   `yaml:"vulnerabilities" toml:"vulnerabilities"`
	FailOn          string `yaml:"fail_on" toml:"fail_on"` // minimum blocking severity; defaults to "critical"
}

// FailureConfig configures the post-test actions of a failing run.
type FailureConfig struct {
	Tags      []string `yaml:"tags" toml:"tags"`
	LogsDir   string   `yaml:"logs_dir" toml:"logs_dir"`
	LogFilter string   `yaml:"log_filter" toml:"log_filter"`
}

// AlwaysConfig configures the unconditional cleanup.
type AlwaysConfig struct {
	RemoveContainers     bool `yaml:"remove_containers" toml:"remove_containers"`
	KeepFailedContainers bool `yaml:"keep_failed_containers" toml:"keep_failed_containers"`
	CleanupImages        bool `yaml:"cleanup_images" toml:"cleanup_images"`
}

// BadgeConfig configures the status badge written after a run.
type BadgeConfig struct {
	Output   string  `yaml:"output" toml:"output"` // empty skips the badge
	Label    string  `yaml:"label" toml:"label"`
	Font     string  `yaml:"font" toml:"font"` // optional TTF/OTF path
	FontSize float64 `yaml:"font_size" toml:"font_size"`
}

// Command accepts either a single shell-less string or a list:
//
//	command: go test ./...
//	command: ["go", "test", "./..."]
type Command []string

// UnmarshalYAML implements the scalar-or-list form.
func (c *Command) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return fmt.Errorf("command: %w", err)
		}
		*c = strings.Fields(s)
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return fmt.Errorf("command: expected string or list, got %s", value.Tag)
	}
	*c = list
	return nil
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, it tries the default files. Returns sensible defaults
// if no file exists.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if _, err := os.Stat(defaultConfigFileTOML); err == nil {
				path = defaultConfigFileTOML
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Test: TestConfig{
			WorkDir: ".",
		},
		Success: SuccessConfig{
			Guard: GuardConfig{Context: "."},
		},
		Always: AlwaysConfig{
			RemoveContainers: true,
		},
		Badge: BadgeConfig{
			Label:    "pipeline",
			FontSize: 11,
		},
	}
}
