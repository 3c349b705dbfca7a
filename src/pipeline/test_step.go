package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/drydock-ci/drydock/src/stack"
)

// TestStep brackets the test run with environment lifecycle and hooks:
// validate, beforeTest, environment up, run, environment down, afterTest.
// Once the environment is up, teardown and the after-hook each run exactly
// once no matter which later step fails; a test failure must never leak
// a running environment.
type TestStep struct {
	spec   TestSpec
	stacks stack.Orchestrator
	log    zerolog.Logger
}

// NewTestStep creates the test-phase executor.
func NewTestStep(spec TestSpec, stacks stack.Orchestrator, log zerolog.Logger) *TestStep {
	return &TestStep{spec: spec, stacks: stacks, log: log}
}

// Execute runs the test phase. Errors raised before the environment
// exists (validation, beforeTest, environment up) propagate immediately
// with nothing to clean up. A runner failure is deferred: teardown and
// afterTest still run, the result is recorded, and the wrapped error
// surfaces afterwards.
func (s *TestStep) Execute(ctx context.Context, pctx Context) (Context, error) {
	if s.spec.StackID == "" {
		return pctx, configErrorf("test step: no environment stack configured")
	}
	if s.spec.Runner == nil {
		return pctx, configErrorf("test step: no test runner configured")
	}

	if s.spec.BeforeTest != nil {
		if err := s.spec.BeforeTest(ctx); err != nil {
			return pctx, fmt.Errorf("beforeTest hook: %w", err)
		}
	}

	upName := stack.UpOperationName(s.spec.StackID)
	up, ok := s.stacks.Lookup(upName)
	if !ok {
		return pctx, configErrorf("test step: operation %q not found for stack %q", upName, s.spec.StackID)
	}
	if err := up(ctx); err != nil {
		return pctx, fmt.Errorf("environment up: %w", err)
	}

	// The environment exists from here on: teardown is owed exactly once.
	var result TestResult
	var runErr error
	func() {
		defer s.tearDown(ctx)
		result, runErr = s.runAndCapture(ctx)
	}()

	var hookErr error
	if s.spec.AfterTest != nil {
		hookErr = s.spec.AfterTest(ctx, result)
	}

	pctx = pctx.WithTestResult(result)

	if runErr != nil {
		if hookErr != nil {
			s.log.Error().Err(hookErr).Msg("afterTest hook failed")
		}
		return pctx, fmt.Errorf("test execution failed: %w", runErr)
	}
	if hookErr != nil {
		return pctx, fmt.Errorf("afterTest hook: %w", hookErr)
	}
	return pctx, nil
}

// runAndCapture invokes the runner and translates its outcome through the
// capture collaborator. The error comes back alongside the result so the
// caller can re-raise it after teardown and hooks.
func (s *TestStep) runAndCapture(ctx context.Context) (TestResult, error) {
	capture := s.spec.Capture
	if capture == nil {
		capture = SummaryCapture{}
	}

	report, err := s.spec.Runner.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("test runner failed")
		return capture.FromError(err), err
	}
	return capture.FromReport(report), nil
}

// tearDown invokes the down operation for the stack. An absent operation
// means the environment is managed elsewhere and is skipped silently; a
// failing one is logged but never allowed to mask the test outcome.
func (s *TestStep) tearDown(ctx context.Context) {
	downName := stack.DownOperationName(s.spec.StackID)
	down, ok := s.stacks.Lookup(downName)
	if !ok {
		s.log.Debug().Str("operation", downName).Msg("no down operation registered, skipping teardown")
		return
	}
	if err := down(ctx); err != nil {
		s.log.Error().Err(err).Str("stack", s.spec.StackID).Msg("environment teardown failed")
	}
}
