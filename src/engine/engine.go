// Package engine abstracts the container engine operations the pipeline
// delegates to. The pipeline never talks to a container runtime directly;
// it hands already-resolved references to a Service and waits for the
// call to complete.
package engine

import "context"

// Image is an opaque handle to a built image. Ref is the resolved
// canonical reference the image was built as; ID is the engine-side
// identifier when known.
type Image struct {
	ID  string
	Ref string
}

// Service is the contract with the container engine. Implementations own
// all retry and authentication concerns; errors come back unmodified.
type Service interface {
	// Tag applies each target tag to the image named by sourceRef.
	Tag(ctx context.Context, sourceRef string, targetTags []string) error

	// Save exports the image named by sourceRef to an archive at path.
	Save(ctx context.Context, sourceRef, path string) error

	// Publish retags sourceRef as each target reference and pushes it.
	Publish(ctx context.Context, sourceRef string, targetRefs []string) error

	// RemoveImage deletes the image named by ref from the engine.
	RemoveImage(ctx context.Context, ref string) error
}
