package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/drydock-ci/drydock/src/stack"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// mockEngine implements engine.Service for testing.
type mockEngine struct {
	mu sync.Mutex

	tagErr     error
	saveErr    error
	publishErr error
	removeErr  error

	tagCalls     int
	saveCalls    int
	publishCalls int
	removeCalls  int

	taggedRefs    []string
	savedPath     string
	publishedRefs []string
	removedRefs   []string
}

func (m *mockEngine) Tag(_ context.Context, _ string, targetTags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagCalls++
	m.taggedRefs = append(m.taggedRefs, targetTags...)
	return m.tagErr
}

func (m *mockEngine) Save(_ context.Context, _, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	m.savedPath = path
	return m.saveErr
}

func (m *mockEngine) Publish(_ context.Context, _ string, targetRefs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCalls++
	m.publishedRefs = append(m.publishedRefs, targetRefs...)
	return m.publishErr
}

func (m *mockEngine) RemoveImage(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	m.removedRefs = append(m.removedRefs, ref)
	return m.removeErr
}

// mockOrchestrator implements stack.Orchestrator for testing. Operations
// are registered by name; lookups of unregistered names report absence.
type mockOrchestrator struct {
	mu sync.Mutex

	ops map[string]stack.Operation

	capturedLogs string
	captureErr   error
	removeErr    error

	captureCalls int
	removeCalls  int
	removedEnvs  []string
}

func newMockOrchestrator() *mockOrchestrator {
	return &mockOrchestrator{ops: make(map[string]stack.Operation)}
}

func (m *mockOrchestrator) register(name string, op stack.Operation) {
	m.ops[name] = op
}

// countOp registers an operation that increments counter and returns err.
func (m *mockOrchestrator) countOp(name string, counter *int, err error) {
	m.register(name, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		*counter++
		return err
	})
}

func (m *mockOrchestrator) Lookup(name string) (stack.Operation, bool) {
	op, ok := m.ops[name]
	return op, ok
}

func (m *mockOrchestrator) CaptureLogs(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captureCalls++
	return m.capturedLogs, m.captureErr
}

func (m *mockOrchestrator) RemoveContainers(_ context.Context, envName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	m.removedEnvs = append(m.removedEnvs, envName)
	return m.removeErr
}

// mockGuard implements PublishGuard for testing.
type mockGuard struct {
	err   error
	calls int
}

func (g *mockGuard) Check(context.Context) error {
	g.calls++
	return g.err
}
