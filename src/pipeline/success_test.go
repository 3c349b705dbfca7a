package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drydock-ci/drydock/src/engine"
	"github.com/drydock-ci/drydock/src/imageref"
)

func contextWithImage() Context {
	return NewContext("ci").
		WithBuiltImage(engine.Image{Ref: "registry.example.com/team/app:latest"}).
		WithTestResult(TestResult{Success: true, Total: 3, Passed: 3})
}

func TestSuccessStepAppliesTagsAndRecordsThem(t *testing.T) {
	eng := &mockEngine{}
	spec := SuccessSpec{Tags: []string{"v1.2.3", "stable"}}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	pctx, err := step.Execute(context.Background(), contextWithImage())
	require.NoError(t, err)

	assert.Equal(t, 1, eng.tagCalls)
	assert.Equal(t, []string{"v1.2.3", "stable"}, eng.taggedRefs)
	assert.Equal(t, []string{"v1.2.3", "stable"}, pctx.AppliedTags())
}

func TestSuccessStepTagsWithoutImageIsConfigError(t *testing.T) {
	eng := &mockEngine{}
	spec := SuccessSpec{Tags: []string{"v1.2.3"}}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	noImage := NewContext("ci").WithTestResult(TestResult{Success: true})
	_, err := step.Execute(context.Background(), noImage)

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 0, eng.tagCalls)
}

func TestSuccessStepSavesArchive(t *testing.T) {
	eng := &mockEngine{}
	spec := SuccessSpec{SavePath: "dist/app.tar"}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	_, err := step.Execute(context.Background(), contextWithImage())
	require.NoError(t, err)

	assert.Equal(t, 1, eng.saveCalls)
	assert.Equal(t, "dist/app.tar", eng.savedPath)
}

func TestSuccessStepPublishesSourceReferencesWithoutTargets(t *testing.T) {
	eng := &mockEngine{}
	spec := SuccessSpec{
		Publish: true,
		Source: imageref.Properties{
			Registry:  "registry.example.com",
			Namespace: "team",
			Name:      "app",
			Tags:      []string{"v1.2.3", "latest"},
		},
	}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	_, err := step.Execute(context.Background(), contextWithImage())
	require.NoError(t, err)

	assert.Equal(t, 1, eng.publishCalls)
	assert.Equal(t, []string{
		"registry.example.com/team/app:v1.2.3",
		"registry.example.com/team/app:latest",
	}, eng.publishedRefs)
}

func TestSuccessStepPublishesComposedTargets(t *testing.T) {
	eng := &mockEngine{}
	spec := SuccessSpec{
		Publish: true,
		Source: imageref.Properties{
			Registry:  "registry.example.com",
			Namespace: "team",
			Name:      "app",
			Tags:      []string{"v1.2.3"},
		},
		Targets: []PublishTarget{
			{Name: "mirror", Override: imageref.Override{Registry: "mirror.example.org"}},
			{Name: "hub", Override: imageref.Override{
				Registry:  "docker.io",
				Namespace: "acme",
				Tags:      []string{"v1.2.3", "latest"},
			}},
		},
	}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	_, err := step.Execute(context.Background(), contextWithImage())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"mirror.example.org/team/app:v1.2.3", // empty override fields inherit
		"docker.io/acme/app:v1.2.3",
		"docker.io/acme/app:latest",
	}, eng.publishedRefs)
}

func TestSuccessStepGuardBlocksPublish(t *testing.T) {
	eng := &mockEngine{}
	guard := &mockGuard{err: errors.New("credentials found in context")}
	spec := SuccessSpec{
		Publish: true,
		Source:  imageref.Properties{Name: "app", Tags: []string{"latest"}},
	}

	step := NewSuccessStep(spec, eng, guard, testLogger())
	_, err := step.Execute(context.Background(), contextWithImage())

	require.Error(t, err)
	assert.ErrorIs(t, err, guard.err)
	assert.Equal(t, 1, guard.calls)
	assert.Equal(t, 0, eng.publishCalls)
}

func TestSuccessStepActionOrderAndShortCircuit(t *testing.T) {
	eng := &mockEngine{saveErr: errors.New("disk full")}
	var afterCalls int
	spec := SuccessSpec{
		Tags:         []string{"v1"},
		SavePath:     "dist/app.tar",
		Publish:      true,
		Source:       imageref.Properties{Name: "app", Tags: []string{"v1"}},
		AfterSuccess: func(context.Context) error { afterCalls++; return nil },
	}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	pctx, err := step.Execute(context.Background(), contextWithImage())

	require.Error(t, err)
	assert.ErrorIs(t, err, eng.saveErr)

	// Tagging happened before the save failed; nothing after it ran.
	assert.Equal(t, 1, eng.tagCalls)
	assert.Equal(t, 0, eng.publishCalls)
	assert.Equal(t, 0, afterCalls)
	assert.Equal(t, []string{"v1"}, pctx.AppliedTags())
}

func TestSuccessStepAllActionsDisabledIsNoOp(t *testing.T) {
	eng := &mockEngine{}
	step := NewSuccessStep(SuccessSpec{}, eng, nil, testLogger())

	_, err := step.Execute(context.Background(), NewContext("ci"))
	require.NoError(t, err)

	assert.Equal(t, 0, eng.tagCalls)
	assert.Equal(t, 0, eng.saveCalls)
	assert.Equal(t, 0, eng.publishCalls)
}

func TestSuccessStepAfterHookErrorPropagates(t *testing.T) {
	eng := &mockEngine{}
	hookErr := errors.New("notification failed")
	spec := SuccessSpec{
		AfterSuccess: func(context.Context) error { return hookErr },
	}

	step := NewSuccessStep(spec, eng, nil, testLogger())
	_, err := step.Execute(context.Background(), contextWithImage())

	assert.ErrorIs(t, err, hookErr)
}
