package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExecRunner runs the test phase as an external command. The command's
// exit code is the only outcome signal, so the report carries no test
// counts; the capture collaborator turns a clean exit into success and
// a failed exit into a failed result.
type ExecRunner struct {
	Command []string
	Dir     string
	Env     map[string]string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run implements TestRunner.
func (r *ExecRunner) Run(ctx context.Context) (TestReport, error) {
	if len(r.Command) == 0 {
		return TestReport{}, fmt.Errorf("test runner: empty command")
	}

	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if err := cmd.Run(); err != nil {
		return TestReport{}, fmt.Errorf("test command failed: %w", err)
	}
	return TestReport{}, nil
}
