package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drydock-ci/drydock/src/engine"
)

func TestApplyTagsEmptyListIsNoOp(t *testing.T) {
	eng := &mockEngine{}
	img := engine.Image{Ref: "app:latest"}

	require.NoError(t, ApplyTags(context.Background(), eng, img, nil))
	require.NoError(t, ApplyTags(context.Background(), eng, img, []string{}))

	assert.Equal(t, 0, eng.tagCalls)
}

func TestApplyTagsDelegatesToEngine(t *testing.T) {
	eng := &mockEngine{}
	img := engine.Image{Ref: "app:latest"}

	require.NoError(t, ApplyTags(context.Background(), eng, img, []string{"v1", "stable"}))

	assert.Equal(t, 1, eng.tagCalls)
	assert.Equal(t, []string{"v1", "stable"}, eng.taggedRefs)
}

func TestApplyTagsEngineErrorUnmodified(t *testing.T) {
	engErr := errors.New("tag exists")
	eng := &mockEngine{tagErr: engErr}

	err := ApplyTags(context.Background(), eng, engine.Image{Ref: "app:latest"}, []string{"v1"})

	assert.Same(t, engErr, err)
}
