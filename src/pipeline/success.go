package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/drydock-ci/drydock/src/engine"
	"github.com/drydock-ci/drydock/src/imageref"
)

// PublishGuard vets a publish before it happens. A non-nil error aborts
// the publish and propagates like any other collaborator failure.
type PublishGuard interface {
	Check(ctx context.Context) error
}

// SuccessStep runs the post-test actions of a passing run in fixed order:
// additional tags, archive save, publish, afterSuccess hook. Each action
// is gated by its own configuration; none rolls back on a later failure.
type SuccessStep struct {
	spec  SuccessSpec
	eng   engine.Service
	guard PublishGuard // optional pre-publish gate
	log   zerolog.Logger
}

// NewSuccessStep creates the success-path executor. guard may be nil.
func NewSuccessStep(spec SuccessSpec, eng engine.Service, guard PublishGuard, log zerolog.Logger) *SuccessStep {
	return &SuccessStep{spec: spec, eng: eng, guard: guard, log: log}
}

// Execute applies the configured success actions.
func (s *SuccessStep) Execute(ctx context.Context, pctx Context) (Context, error) {
	if len(s.spec.Tags) > 0 {
		img, ok := pctx.BuiltImage()
		if !ok {
			return pctx, configErrorf("success step: tags requested but no built image in context")
		}
		if err := ApplyTags(ctx, s.eng, img, s.spec.Tags); err != nil {
			return pctx, fmt.Errorf("applying success tags: %w", err)
		}
		pctx = pctx.WithAppliedTags(s.spec.Tags)
	}

	if s.spec.SavePath != "" {
		img, ok := pctx.BuiltImage()
		if !ok {
			return pctx, configErrorf("success step: save requested but no built image in context")
		}
		if err := s.eng.Save(ctx, img.Ref, s.spec.SavePath); err != nil {
			return pctx, fmt.Errorf("saving image archive: %w", err)
		}
	}

	if s.spec.Publish {
		img, ok := pctx.BuiltImage()
		if !ok {
			return pctx, configErrorf("success step: publish requested but no built image in context")
		}
		if s.guard != nil {
			if err := s.guard.Check(ctx); err != nil {
				return pctx, fmt.Errorf("publish guard: %w", err)
			}
		}
		refs := s.publishReferences()
		if err := s.eng.Publish(ctx, img.Ref, refs); err != nil {
			return pctx, fmt.Errorf("publishing image: %w", err)
		}
		s.log.Info().Strs("refs", refs).Msg("published")
	}

	if s.spec.AfterSuccess != nil {
		if err := s.spec.AfterSuccess(ctx); err != nil {
			return pctx, fmt.Errorf("afterSuccess hook: %w", err)
		}
	}
	return pctx, nil
}

// publishReferences expands the publish destinations: the plain source
// references when no targets are configured, otherwise each target's
// override composed over the source identity.
func (s *SuccessStep) publishReferences() []string {
	if len(s.spec.Targets) == 0 {
		return s.spec.Source.References()
	}
	var refs []string
	for _, target := range s.spec.Targets {
		effective := imageref.Compose(s.spec.Source, target.Override)
		refs = append(refs, effective.References()...)
	}
	return refs
}
