// Package pipeline implements the run engine for drydock: a test phase
// bracketed by environment setup and teardown, a conditional branch on
// the test outcome, and an unconditional cleanup step. Each stage
// consumes and returns an immutable Context; a single logical goroutine
// drives one run, blocking on collaborator calls in documented order.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"
)

// Pipeline sequences the stages of one run:
// Test → Conditional{Success|Failure} → Always.
type Pipeline struct {
	test        *TestStep
	conditional *Conditional
	always      *AlwaysStep
	log         zerolog.Logger
}

// New assembles a pipeline from its stage executors.
func New(test *TestStep, conditional *Conditional, always *AlwaysStep, log zerolog.Logger) *Pipeline {
	return &Pipeline{test: test, conditional: conditional, always: always, log: log}
}

// Run executes the pipeline. A test-phase error raised before any
// environment state existed propagates immediately; once a test result
// was recorded, the conditional branch and the always-step still run and
// the run surfaces exactly one error: the test failure when there was
// one, otherwise whatever the conditional branch raised.
func (p *Pipeline) Run(ctx context.Context, pctx Context) (Context, error) {
	p.log.Info().Str("pipeline", pctx.PipelineName()).Msg("pipeline run starting")

	pctx, testErr := p.test.Execute(ctx, pctx)
	if testErr != nil && !pctx.TestCompleted() {
		// Nothing was set up and nothing is owed: fail fast.
		return pctx, testErr
	}

	pctx, condErr := p.conditional.Execute(ctx, pctx)

	pctx = p.always.Execute(ctx, pctx)

	switch {
	case testErr != nil:
		if condErr != nil {
			p.log.Error().Err(condErr).Msg("conditional step failed after test failure")
		}
		return pctx, testErr
	case condErr != nil:
		return pctx, condErr
	default:
		p.log.Info().Str("pipeline", pctx.PipelineName()).Msg("pipeline run finished")
		return pctx, nil
	}
}
