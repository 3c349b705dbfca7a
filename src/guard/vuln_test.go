package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrivyReport(t *testing.T) {
	report := []byte(`{
		"Results": [
			{
				"Vulnerabilities": [
					{"Severity": "CRITICAL"},
					{"Severity": "HIGH"},
					{"Severity": "HIGH"},
					{"Severity": "MEDIUM"},
					{"Severity": "LOW"},
					{"Severity": "UNKNOWN"}
				]
			},
			{
				"Vulnerabilities": [
					{"Severity": "critical"}
				]
			},
			{}
		]
	}`)

	counts, err := parseTrivyReport(report)
	require.NoError(t, err)
	assert.Equal(t, VulnCounts{Critical: 2, High: 2, Medium: 1, Low: 1}, counts)
}

func TestParseTrivyReportEmptyResults(t *testing.T) {
	counts, err := parseTrivyReport([]byte(`{"Results": []}`))
	require.NoError(t, err)
	assert.Equal(t, VulnCounts{}, counts)
}

func TestParseTrivyReportMalformed(t *testing.T) {
	_, err := parseTrivyReport([]byte("not json"))
	assert.Error(t, err)
}

type stubChecker struct {
	err   error
	calls int
}

func (s *stubChecker) Check(context.Context) error {
	s.calls++
	return s.err
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	first := &stubChecker{}
	second := &stubChecker{err: errors.New("blocked")}
	third := &stubChecker{}

	err := Chain{first, second, third}.Check(context.Background())

	assert.ErrorIs(t, err, second.err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
}

func TestChainEmptyPasses(t *testing.T) {
	assert.NoError(t, Chain{}.Check(context.Background()))
}
