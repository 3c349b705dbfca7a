package pipeline

import "github.com/drydock-ci/drydock/src/engine"

// Context is the immutable run state threaded through every pipeline
// step. Every transition returns a new value; nothing mutates a receiver,
// so contexts are never aliased between steps or runs.
type Context struct {
	pipelineName  string
	builtImage    *engine.Image
	appliedTags   []string
	testResult    *TestResult
	testCompleted bool
	metadata      map[string]string
}

// NewContext creates the initial context for a named pipeline run.
func NewContext(pipelineName string) Context {
	return Context{pipelineName: pipelineName}
}

// PipelineName returns the name of the run.
func (c Context) PipelineName() string { return c.pipelineName }

// BuiltImage returns the built image handle, if one was recorded.
func (c Context) BuiltImage() (engine.Image, bool) {
	if c.builtImage == nil {
		return engine.Image{}, false
	}
	return *c.builtImage, true
}

// AppliedTags returns the tags applied so far, in insertion order.
// Duplicates are preserved.
func (c Context) AppliedTags() []string {
	return append([]string(nil), c.appliedTags...)
}

// TestResult returns the recorded test result, if the test phase completed.
func (c Context) TestResult() (TestResult, bool) {
	if c.testResult == nil {
		return TestResult{}, false
	}
	return *c.testResult, true
}

// TestCompleted reports whether a test result has been recorded.
func (c Context) TestCompleted() bool { return c.testCompleted }

// Metadata returns the value stored under key.
func (c Context) Metadata(key string) (string, bool) {
	v, ok := c.metadata[key]
	return v, ok
}

// WithBuiltImage returns a new context carrying the built image handle.
func (c Context) WithBuiltImage(img engine.Image) Context {
	c.builtImage = &img
	return c
}

// WithAppliedTag returns a new context with the tag appended.
func (c Context) WithAppliedTag(tag string) Context {
	return c.WithAppliedTags([]string{tag})
}

// WithAppliedTags returns a new context with the tags appended in order.
func (c Context) WithAppliedTags(tags []string) Context {
	combined := make([]string, 0, len(c.appliedTags)+len(tags))
	combined = append(combined, c.appliedTags...)
	combined = append(combined, tags...)
	c.appliedTags = combined
	return c
}

// WithTestResult returns a new context with the test result recorded and
// the test phase marked complete. A result is recorded at most once per
// run; the first one wins.
func (c Context) WithTestResult(result TestResult) Context {
	if c.testCompleted {
		return c
	}
	c.testResult = &result
	c.testCompleted = true
	return c
}

// WithMetadata returns a new context with key set to value, replacing any
// previous value for key.
func (c Context) WithMetadata(key, value string) Context {
	m := make(map[string]string, len(c.metadata)+1)
	for k, v := range c.metadata {
		m[k] = v
	}
	m[key] = value
	c.metadata = m
	return c
}
