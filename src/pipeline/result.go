package pipeline

import "context"

// TestResult is the recorded outcome of a test phase. Counts are
// non-negative; Cause carries the failure when the runner errored.
type TestResult struct {
	Success bool
	Total   int
	Passed  int
	Failed  int
	Skipped int
	Cause   error
}

// TestReport is the runner-native summary of a completed test run.
type TestReport struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// TestRunner is an opaque invocable test unit. Run blocks until the run
// completes; a non-nil error means the run failed in a runner-specific way.
type TestRunner interface {
	Run(ctx context.Context) (TestReport, error)
}

// RunnerFunc adapts a plain function to the TestRunner interface.
type RunnerFunc func(ctx context.Context) (TestReport, error)

// Run implements TestRunner.
func (f RunnerFunc) Run(ctx context.Context) (TestReport, error) { return f(ctx) }

// ResultCapture translates runner-specific completion signals into a
// TestResult: FromReport for a normal completion, FromError when the
// runner failed.
type ResultCapture interface {
	FromReport(report TestReport) TestResult
	FromError(err error) TestResult
}

// SummaryCapture is the default capture: a completed run succeeds unless
// it reported failed tests, and a runner error becomes a failed result
// with the error as cause.
type SummaryCapture struct{}

// FromReport implements ResultCapture.
func (SummaryCapture) FromReport(report TestReport) TestResult {
	return TestResult{
		Success: report.Failed == 0,
		Total:   report.Total,
		Passed:  report.Passed,
		Failed:  report.Failed,
		Skipped: report.Skipped,
	}
}

// FromError implements ResultCapture.
func (SummaryCapture) FromError(err error) TestResult {
	return TestResult{Success: false, Cause: err}
}
