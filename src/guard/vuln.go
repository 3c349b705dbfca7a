package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// VulnScan checks the image for known vulnerabilities with trivy before a
// publish. Check returns an error when the scan reports a severity at or
// above the configured gate.
type VulnScan struct {
	ImageRef string
	FailOn   string // minimum blocking severity; defaults to "critical"
	Bin      string // trivy binary; defaults to "trivy"

	log zerolog.Logger
}

// NewVulnScan creates a guard over the given image reference.
func NewVulnScan(imageRef, failOn string, log zerolog.Logger) *VulnScan {
	return &VulnScan{ImageRef: imageRef, FailOn: failOn, log: log}
}

// severityRank orders trivy severities for gate comparison.
var severityRank = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

// VulnCounts summarizes a scan by severity.
type VulnCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// Check implements the pipeline's publish guard contract.
func (v *VulnScan) Check(ctx context.Context) error {
	counts, err := v.Scan(ctx)
	if err != nil {
		return err
	}

	gate, ok := severityRank[strings.ToLower(v.FailOn)]
	if !ok {
		gate = severityRank["critical"]
	}

	blocking := 0
	if gate <= severityRank["critical"] {
		blocking += counts.Critical
	}
	if gate <= severityRank["high"] {
		blocking += counts.High
	}
	if gate <= severityRank["medium"] {
		blocking += counts.Medium
	}
	if gate <= severityRank["low"] {
		blocking += counts.Low
	}

	v.log.Info().
		Int("critical", counts.Critical).
		Int("high", counts.High).
		Int("medium", counts.Medium).
		Int("low", counts.Low).
		Msg("vulnerability scan finished")

	if blocking > 0 {
		return fmt.Errorf("vulnerability scan: %d finding(s) at severity %s or above in %s",
			blocking, strings.ToLower(firstNonEmpty(v.FailOn, "critical")), v.ImageRef)
	}
	return nil
}

// Scan runs a trivy image scan and returns the severity counts.
func (v *VulnScan) Scan(ctx context.Context) (VulnCounts, error) {
	bin := v.Bin
	if bin == "" {
		bin = "trivy"
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "image", "--format", "json", "--quiet", v.ImageRef)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return VulnCounts{}, fmt.Errorf("trivy scan of %s: %w", v.ImageRef, err)
	}

	return parseTrivyReport(out.Bytes())
}

// parseTrivyReport counts vulnerabilities per severity in trivy's JSON output.
func parseTrivyReport(data []byte) (VulnCounts, error) {
	var report struct {
		Results []struct {
			Vulnerabilities []struct {
				Severity string `json:"Severity"`
			} `json:"Vulnerabilities"`
		} `json:"Results"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return VulnCounts{}, fmt.Errorf("parsing trivy report: %w", err)
	}

	var counts VulnCounts
	for _, result := range report.Results {
		for _, vuln := range result.Vulnerabilities {
			switch strings.ToUpper(vuln.Severity) {
			case "CRITICAL":
				counts.Critical++
			case "HIGH":
				counts.High++
			case "MEDIUM":
				counts.Medium++
			case "LOW":
				counts.Low++
			}
		}
	}
	return counts, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
