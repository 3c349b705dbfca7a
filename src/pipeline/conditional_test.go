package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// branchProbe builds a conditional whose branches mark which one ran.
// The success branch tags, the failure branch captures logs, so the
// engine and orchestrator call counters identify the branch taken.
func branchProbe(t *testing.T) (*Conditional, *mockEngine, *mockOrchestrator) {
	t.Helper()
	eng := &mockEngine{}
	orch := newMockOrchestrator()

	success := NewSuccessStep(SuccessSpec{Tags: []string{"ok"}}, eng, nil, testLogger())
	failure := NewFailureStep(FailureSpec{StackID: "integ", LogsDir: t.TempDir()}, eng, orch, testLogger())
	return NewConditional(success, failure), eng, orch
}

func TestConditionalRoutesSuccess(t *testing.T) {
	cond, eng, orch := branchProbe(t)

	pctx := contextWithImage() // carries a passing result
	_, err := cond.Execute(context.Background(), pctx)
	require.NoError(t, err)

	assert.Equal(t, 1, eng.tagCalls)
	assert.Equal(t, 0, orch.captureCalls)
}

func TestConditionalRoutesFailure(t *testing.T) {
	cond, eng, orch := branchProbe(t)

	_, err := cond.Execute(context.Background(), failedContext())
	require.NoError(t, err)

	assert.Equal(t, 0, eng.tagCalls)
	assert.Equal(t, 1, orch.captureCalls)
}

func TestConditionalNoResultRunsNeitherBranch(t *testing.T) {
	cond, eng, orch := branchProbe(t)

	pctx := NewContext("ci")
	out, err := cond.Execute(context.Background(), pctx)
	require.NoError(t, err)

	assert.Equal(t, 0, eng.tagCalls)
	assert.Equal(t, 0, orch.captureCalls)
	assert.Equal(t, pctx, out)
}
