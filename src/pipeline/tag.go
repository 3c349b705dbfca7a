package pipeline

import (
	"context"

	"github.com/drydock-ci/drydock/src/engine"
)

// ApplyTags applies additional tags to a built image through the engine
// service. A nil or empty tag list is a no-op with zero collaborator
// calls. The image arrives already resolved, no identity resolution
// happens here, and engine errors propagate unmodified.
func ApplyTags(ctx context.Context, svc engine.Service, image engine.Image, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	return svc.Tag(ctx, image.Ref, tags)
}
