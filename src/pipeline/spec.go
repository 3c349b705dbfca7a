package pipeline

import (
	"context"

	"github.com/drydock-ci/drydock/src/imageref"
)

// Hook is a user-supplied callback invoked at a fixed pipeline point for
// side effects only. Hooks carry no captured pipeline state; everything
// they need arrives as a parameter.
type Hook func(ctx context.Context) error

// ResultHook is a hook receiving the captured test result.
type ResultHook func(ctx context.Context, result TestResult) error

// TestSpec is the immutable configuration of the test phase, snapshotted
// before the run starts.
type TestSpec struct {
	StackID    string
	Runner     TestRunner
	Capture    ResultCapture // nil selects SummaryCapture
	BeforeTest Hook
	AfterTest  ResultHook
}

// PublishTarget names one publish destination as an override on the
// resolved source identity.
type PublishTarget struct {
	Name     string
	Override imageref.Override
}

// SuccessSpec configures the post-test actions of a passing run. Each
// action is independently gated: empty Tags skips tagging, empty SavePath
// skips archiving, Publish false skips publishing.
type SuccessSpec struct {
	Tags     []string
	SavePath string
	Publish  bool
	Source   imageref.Properties // resolved identity publish targets compose over
	Targets  []PublishTarget     // empty publishes the source references as-is

	AfterSuccess Hook
}

// FailureSpec configures the post-test actions of a failing run.
// Failure-path tagging is best-effort diagnostics and log capture never
// propagates errors.
type FailureSpec struct {
	Tags      []string
	StackID   string // environment to capture logs from
	LogsDir   string // created if missing; empty skips capture
	LogFilter string

	AfterFailure Hook
}

// AlwaysSpec configures the unconditional cleanup that ends every run.
// KeepFailedContainers only matters on a failing run; it never preserves
// containers after success.
type AlwaysSpec struct {
	StackID              string
	RemoveTestContainers bool
	KeepFailedContainers bool
	CleanupImages        bool
}
