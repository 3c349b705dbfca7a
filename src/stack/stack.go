// Package stack abstracts the test-environment orchestration the pipeline
// depends on. Environments are addressed by stack id; their lifecycle
// operations are looked up by deterministic name ("up"/"down" plus the
// capitalized stack id), so alternative orchestrators can plug in without
// the pipeline knowing how environments are actually managed.
package stack

import (
	"context"
	"unicode"
	"unicode/utf8"
)

// Operation is a single blocking lifecycle action against an environment.
type Operation func(ctx context.Context) error

// Orchestrator is the contract with the environment orchestration service.
type Orchestrator interface {
	// Lookup resolves a lifecycle operation by its deterministic name.
	Lookup(name string) (Operation, bool)

	// CaptureLogs collects service logs for an environment, optionally
	// filtered to services whose name contains filter.
	CaptureLogs(ctx context.Context, envName, filter string) (string, error)

	// RemoveContainers deletes the environment's containers.
	RemoveContainers(ctx context.Context, envName string) error
}

// UpOperationName returns the deterministic name of the up operation for
// a stack id, e.g. "integration" → "upIntegration".
func UpOperationName(stackID string) string {
	return "up" + capitalize(stackID)
}

// DownOperationName returns the deterministic name of the down operation
// for a stack id, e.g. "integration" → "downIntegration".
func DownOperationName(stackID string) string {
	return "down" + capitalize(stackID)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
