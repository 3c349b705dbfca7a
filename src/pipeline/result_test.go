package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCaptureFromReport(t *testing.T) {
	tests := []struct {
		name        string
		report      TestReport
		wantSuccess bool
	}{
		{name: "all passed", report: TestReport{Total: 3, Passed: 3}, wantSuccess: true},
		{name: "skips allowed", report: TestReport{Total: 3, Passed: 2, Skipped: 1}, wantSuccess: true},
		{name: "empty run passes", report: TestReport{}, wantSuccess: true},
		{name: "one failure fails", report: TestReport{Total: 3, Passed: 2, Failed: 1}, wantSuccess: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SummaryCapture{}.FromReport(tt.report)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.report.Total, result.Total)
			assert.Equal(t, tt.report.Failed, result.Failed)
			assert.NoError(t, result.Cause)
		})
	}
}

func TestSummaryCaptureFromError(t *testing.T) {
	cause := errors.New("runner crashed")
	result := SummaryCapture{}.FromError(cause)

	assert.False(t, result.Success)
	assert.Same(t, cause, result.Cause)
	assert.Zero(t, result.Total)
}
