package stack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/compose-spec/compose-go/loader"
	"github.com/compose-spec/compose-go/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Stack describes one compose-managed test environment.
type Stack struct {
	ID          string
	File        string            // compose file path
	ProjectName string            // compose project name; defaults to the stack id
	WorkDir     string            // working directory for compose invocations
	Env         map[string]string // extra environment for compose and interpolation
}

// Compose orchestrates stacks by shelling out to `docker compose`. Up
// waits for service health (`--wait`), so readiness polling lives here
// rather than in the pipeline.
type Compose struct {
	Bin     string
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	stacks map[string]Stack
	ops    map[string]Operation
	log    zerolog.Logger
}

// NewCompose creates an orchestrator for the given stacks and registers
// their up/down operations under the deterministic names.
func NewCompose(stacks []Stack, log zerolog.Logger) *Compose {
	c := &Compose{
		Bin:    "docker",
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		stacks: make(map[string]Stack, len(stacks)),
		ops:    make(map[string]Operation, 2*len(stacks)),
		log:    log,
	}
	for _, st := range stacks {
		if st.ProjectName == "" {
			st.ProjectName = st.ID
		}
		st := st
		c.stacks[st.ID] = st
		c.ops[UpOperationName(st.ID)] = func(ctx context.Context) error { return c.up(ctx, st) }
		c.ops[DownOperationName(st.ID)] = func(ctx context.Context) error { return c.down(ctx, st) }
	}
	return c
}

// Lookup resolves a registered lifecycle operation by name.
func (c *Compose) Lookup(name string) (Operation, bool) {
	op, ok := c.ops[name]
	return op, ok
}

// CaptureLogs collects logs from every service of the environment,
// optionally restricted to services whose name contains filter. Services
// are read concurrently and the output is assembled in service order.
func (c *Compose) CaptureLogs(ctx context.Context, envName, filter string) (string, error) {
	st, ok := c.stacks[envName]
	if !ok {
		return "", fmt.Errorf("stack: unknown environment %q", envName)
	}

	services, err := c.services(st)
	if err != nil {
		return "", err
	}
	if filter != "" {
		kept := services[:0]
		for _, svc := range services {
			if strings.Contains(svc, filter) {
				kept = append(kept, svc)
			}
		}
		services = kept
	}

	outputs := make([]string, len(services))

	g, gctx := errgroup.WithContext(ctx)
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			var buf bytes.Buffer
			cmd := c.command(gctx, st, "logs", "--no-color", svc)
			cmd.Stdout = &buf
			cmd.Stderr = &buf
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("capturing logs for %s: %w", svc, err)
			}
			outputs[i] = buf.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, svc := range services {
		fmt.Fprintf(&b, "===== %s =====\n", svc)
		b.WriteString(outputs[i])
		if !strings.HasSuffix(outputs[i], "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// RemoveContainers stops and deletes the environment's containers.
func (c *Compose) RemoveContainers(ctx context.Context, envName string) error {
	st, ok := c.stacks[envName]
	if !ok {
		return fmt.Errorf("stack: unknown environment %q", envName)
	}
	if err := c.run(ctx, st, "rm", "--force", "--stop"); err != nil {
		return fmt.Errorf("removing containers for %s: %w", envName, err)
	}
	c.log.Info().Str("stack", envName).Msg("removed test containers")
	return nil
}

func (c *Compose) up(ctx context.Context, st Stack) error {
	c.log.Info().Str("stack", st.ID).Str("file", st.File).Msg("bringing environment up")
	if err := c.run(ctx, st, "up", "--detach", "--wait"); err != nil {
		return fmt.Errorf("compose up for %s: %w", st.ID, err)
	}
	return nil
}

func (c *Compose) down(ctx context.Context, st Stack) error {
	c.log.Info().Str("stack", st.ID).Msg("tearing environment down")
	if err := c.run(ctx, st, "down", "--volumes"); err != nil {
		return fmt.Errorf("compose down for %s: %w", st.ID, err)
	}
	return nil
}

// services parses the compose file and returns its service names.
func (c *Compose) services(st Stack) ([]string, error) {
	data, err := os.ReadFile(st.File)
	if err != nil {
		return nil, fmt.Errorf("reading compose file %s: %w", st.File, err)
	}

	workDir := st.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(st.File)
	}
	env := make(map[string]string, len(st.Env))
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	for k, v := range st.Env {
		env[k] = v
	}

	project, err := loader.Load(types.ConfigDetails{
		WorkingDir:  workDir,
		ConfigFiles: []types.ConfigFile{{Filename: st.File, Content: data}},
		Environment: env,
	}, func(o *loader.Options) {
		o.SetProjectName(st.ProjectName, true)
	})
	if err != nil {
		return nil, fmt.Errorf("loading compose file %s: %w", st.File, err)
	}

	names := make([]string, 0, len(project.Services))
	for _, svc := range project.Services {
		names = append(names, svc.Name)
	}
	return names, nil
}

// run executes a compose subcommand, streaming output to the configured writers.
func (c *Compose) run(ctx context.Context, st Stack, args ...string) error {
	cmd := c.command(ctx, st, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if c.Verbose {
		fmt.Fprintf(c.Stderr, "exec: %s\n", strings.Join(cmd.Args, " "))
	}
	return cmd.Run()
}

// command builds a `docker compose` invocation scoped to the stack's file
// and project name.
func (c *Compose) command(ctx context.Context, st Stack, args ...string) *exec.Cmd {
	bin := c.Bin
	if bin == "" {
		bin = "docker"
	}
	full := append([]string{"compose", "--file", st.File, "--project-name", st.ProjectName}, args...)
	cmd := exec.CommandContext(ctx, bin, full...)
	if st.WorkDir != "" {
		cmd.Dir = st.WorkDir
	}
	cmd.Env = os.Environ()
	for k, v := range st.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	return cmd
}
