package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/drydock-ci/drydock/src/engine"
	"github.com/drydock-ci/drydock/src/stack"
)

// FailureStep runs the post-test actions of a failing run: best-effort
// diagnostic tags, environment log capture, afterFailure hook. Log
// capture failures are logged and suppressed so diagnostics never mask
// the original test failure.
type FailureStep struct {
	spec   FailureSpec
	eng    engine.Service
	stacks stack.Orchestrator
	log    zerolog.Logger
}

// NewFailureStep creates the failure-path executor.
func NewFailureStep(spec FailureSpec, eng engine.Service, stacks stack.Orchestrator, log zerolog.Logger) *FailureStep {
	return &FailureStep{spec: spec, eng: eng, stacks: stacks, log: log}
}

// Execute applies the configured failure actions.
func (s *FailureStep) Execute(ctx context.Context, pctx Context) (Context, error) {
	if len(s.spec.Tags) > 0 {
		if img, ok := pctx.BuiltImage(); ok {
			if err := ApplyTags(ctx, s.eng, img, s.spec.Tags); err != nil {
				return pctx, fmt.Errorf("applying failure tags: %w", err)
			}
			pctx = pctx.WithAppliedTags(s.spec.Tags)
		} else {
			// Failure-path tagging is diagnostics only: no image, no error.
			s.log.Debug().Msg("no built image in context, skipping failure tags")
		}
	}

	if s.spec.LogsDir != "" {
		s.captureLogs(ctx)
	}

	if s.spec.AfterFailure != nil {
		if err := s.spec.AfterFailure(ctx); err != nil {
			return pctx, fmt.Errorf("afterFailure hook: %w", err)
		}
	}
	return pctx, nil
}

// captureLogs writes the environment's logs into the configured
// directory, creating it if missing. All errors are logged and swallowed.
func (s *FailureStep) captureLogs(ctx context.Context) {
	if err := os.MkdirAll(s.spec.LogsDir, 0o755); err != nil {
		s.log.Error().Err(err).Str("dir", s.spec.LogsDir).Msg("creating log capture directory failed")
		return
	}

	logs, err := s.stacks.CaptureLogs(ctx, s.spec.StackID, s.spec.LogFilter)
	if err != nil {
		s.log.Error().Err(err).Str("stack", s.spec.StackID).Msg("log capture failed")
		return
	}

	path := filepath.Join(s.spec.LogsDir, s.spec.StackID+".log")
	if err := os.WriteFile(path, []byte(logs), 0o644); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("writing captured logs failed")
		return
	}
	s.log.Info().Str("path", path).Msg("captured environment logs")
}
