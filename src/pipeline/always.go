package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/drydock-ci/drydock/src/engine"
	"github.com/drydock-ci/drydock/src/stack"
)

// AlwaysStep is the unconditional cleanup ending every run: removing test
// containers and cleaning up the built image. Every error is caught and
// logged; the always-step must never itself fail the pipeline, so
// Execute returns no error.
type AlwaysStep struct {
	spec   AlwaysSpec
	eng    engine.Service
	stacks stack.Orchestrator
	log    zerolog.Logger
}

// NewAlwaysStep creates the cleanup executor.
func NewAlwaysStep(spec AlwaysSpec, eng engine.Service, stacks stack.Orchestrator, log zerolog.Logger) *AlwaysStep {
	return &AlwaysStep{spec: spec, eng: eng, stacks: stacks, log: log}
}

// Execute runs both cleanup operations independently.
func (s *AlwaysStep) Execute(ctx context.Context, pctx Context) Context {
	s.removeContainers(ctx, pctx)
	s.cleanupImage(ctx, pctx)
	return pctx
}

// removeContainers deletes the test-environment containers unless the run
// failed and KeepFailedContainers asks for them to stay. A run without a
// recorded result counts as failed.
func (s *AlwaysStep) removeContainers(ctx context.Context, pctx Context) {
	if !s.spec.RemoveTestContainers {
		return
	}
	result, ok := pctx.TestResult()
	passed := ok && result.Success
	if !passed && s.spec.KeepFailedContainers {
		s.log.Info().Str("stack", s.spec.StackID).Msg("keeping containers of failed run for inspection")
		return
	}
	if err := s.stacks.RemoveContainers(ctx, s.spec.StackID); err != nil {
		s.log.Error().Err(err).Str("stack", s.spec.StackID).Msg("removing test containers failed")
	}
}

// cleanupImage removes the built image when cleanup is enabled and an
// image exists; otherwise it logs the no-op.
func (s *AlwaysStep) cleanupImage(ctx context.Context, pctx Context) {
	if !s.spec.CleanupImages {
		return
	}
	img, ok := pctx.BuiltImage()
	if !ok {
		s.log.Info().Msg("image cleanup enabled but no built image in context")
		return
	}
	if err := s.eng.RemoveImage(ctx, img.Ref); err != nil {
		s.log.Error().Err(err).Str("ref", img.Ref).Msg("image cleanup failed")
	}
}
