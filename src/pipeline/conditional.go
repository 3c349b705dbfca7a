package pipeline

import "context"

// Conditional routes the run to exactly one of the success or failure
// executors based on the recorded test result. A missing result leaves
// the context unchanged; with a result present exactly one branch runs,
// never both.
type Conditional struct {
	success *SuccessStep
	failure *FailureStep
}

// NewConditional creates the branching executor.
func NewConditional(success *SuccessStep, failure *FailureStep) *Conditional {
	return &Conditional{success: success, failure: failure}
}

// Execute branches on the test result.
func (c *Conditional) Execute(ctx context.Context, pctx Context) (Context, error) {
	result, ok := pctx.TestResult()
	if !ok {
		return pctx, nil
	}
	if result.Success {
		return c.success.Execute(ctx, pctx)
	}
	return c.failure.Execute(ctx, pctx)
}
