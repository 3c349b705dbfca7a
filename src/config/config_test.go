package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "drydock.yml", `
pipeline:
  name: app-ci
image:
  registry: registry.example.com
  namespace: team
  name: app
  tag: "{version}"
stacks:
  - id: integ
    file: docker-compose.test.yml
    project: app-test
test:
  stack: integ
  command: go test ./...
success:
  tags: ["{version}", latest]
  publish: true
  guard:
    secrets: true
failure:
  logs_dir: diagnostics
always:
  keep_failed_containers: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app-ci", cfg.Pipeline.Name)
	assert.Equal(t, "registry.example.com", cfg.Image.Registry)
	assert.Equal(t, "{version}", cfg.Image.Tag)

	require.Len(t, cfg.Stacks, 1)
	assert.Equal(t, "integ", cfg.Stacks[0].ID)
	assert.Equal(t, "app-test", cfg.Stacks[0].Project)

	assert.Equal(t, "integ", cfg.Test.Stack)
	assert.Equal(t, Command{"go", "test", "./..."}, cfg.Test.Command)

	assert.Equal(t, []string{"{version}", "latest"}, cfg.Success.Tags)
	assert.True(t, cfg.Success.Publish)
	assert.True(t, cfg.Success.Guard.Secrets)

	assert.Equal(t, "diagnostics", cfg.Failure.LogsDir)
	assert.True(t, cfg.Always.KeepFailedContainers)
	// Defaults survive a partial file.
	assert.True(t, cfg.Always.RemoveContainers)
	assert.Equal(t, "pipeline", cfg.Badge.Label)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "drydock.toml", `
[pipeline]
name = "app-ci"

[image]
ref = "registry.example.com/team/app:latest"

[test]
stack = "integ"
command = ["go", "test", "./..."]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "app-ci", cfg.Pipeline.Name)
	assert.Equal(t, "registry.example.com/team/app:latest", cfg.Image.Ref)
	assert.Equal(t, Command{"go", "test", "./..."}, cfg.Test.Command)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Test.WorkDir)
	assert.True(t, cfg.Always.RemoveContainers)
	assert.Equal(t, float64(11), cfg.Badge.FontSize)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "bad.yml", "pipeline: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestCommandScalarAndListForms(t *testing.T) {
	scalar := writeConfig(t, "scalar.yml", "test:\n  command: npm run test:integration\n")
	cfg, err := Load(scalar)
	require.NoError(t, err)
	assert.Equal(t, Command{"npm", "run", "test:integration"}, cfg.Test.Command)

	list := writeConfig(t, "list.yml", `test:
  command: ["pytest", "-x", "tests/integration"]
`)
	cfg, err = Load(list)
	require.NoError(t, err)
	assert.Equal(t, Command{"pytest", "-x", "tests/integration"}, cfg.Test.Command)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaults()
		c.Image.Name = "app"
		c.Stacks = []StackConfig{{ID: "integ", File: "compose.yml"}}
		c.Test.Stack = "integ"
		return c
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("repository excludes namespace and name", func(t *testing.T) {
		c := valid()
		c.Image.Repository = "team/app"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("build repository excludes build name", func(t *testing.T) {
		c := valid()
		c.Image.Build.Repository = "team/app"
		c.Image.Build.Name = "app"
		assert.Error(t, c.Validate())
	})

	t.Run("duplicate stack ids", func(t *testing.T) {
		c := valid()
		c.Stacks = append(c.Stacks, StackConfig{ID: "integ", File: "other.yml"})
		assert.Error(t, c.Validate())
	})

	t.Run("stack without compose file", func(t *testing.T) {
		c := valid()
		c.Stacks[0].File = ""
		assert.Error(t, c.Validate())
	})

	t.Run("test stack must exist", func(t *testing.T) {
		c := valid()
		c.Test.Stack = "missing"
		assert.Error(t, c.Validate())
	})

	t.Run("invalid repository path", func(t *testing.T) {
		c := valid()
		c.Image.Name = ""
		c.Image.Repository = "Team/App"
		assert.Error(t, c.Validate())
	})

	t.Run("template tags allowed", func(t *testing.T) {
		c := valid()
		c.Success.Tags = []string{"{version}", "{branch}-{sha:7}", "latest"}
		assert.NoError(t, c.Validate())
	})

	t.Run("invalid tag rejected", func(t *testing.T) {
		c := valid()
		c.Failure.Tags = []string{"has space"}
		assert.Error(t, c.Validate())
	})

	t.Run("target repository excludes image_name", func(t *testing.T) {
		c := valid()
		c.Image.Targets = []TargetConfig{{Name: "hub", Repository: "acme/app", ImageName: "app"}}
		assert.Error(t, c.Validate())
	})
}
