package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drydock-ci/drydock/src/badge"
)

var (
	badgeStatus string
	badgeOutput string
)

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Generate a pipeline status badge",
	Long: `Generate a shields.io-style SVG badge for a pipeline status and
write it to the configured output path or stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svg, err := renderBadge(badgeStatus)
		if err != nil {
			return err
		}
		out := badgeOutput
		if out == "" {
			out = cfg.Badge.Output
		}
		if out == "" {
			fmt.Fprint(os.Stdout, svg)
			return nil
		}
		return os.WriteFile(out, []byte(svg), 0o644)
	},
}

func init() {
	badgeCmd.Flags().StringVar(&badgeStatus, "status", "passing", "badge status (passing, failing)")
	badgeCmd.Flags().StringVar(&badgeOutput, "output", "", "output path (defaults to config, then stdout)")

	rootCmd.AddCommand(badgeCmd)
}

func renderBadge(status string) (string, error) {
	size := cfg.Badge.FontSize
	if size <= 0 {
		size = 11
	}

	metrics := badge.ApproxMetrics(size)
	if cfg.Badge.Font != "" {
		loaded, err := badge.LoadFontFile(cfg.Badge.Font, size)
		if err != nil {
			return "", fmt.Errorf("loading badge font: %w", err)
		}
		metrics = loaded
	}

	label := cfg.Badge.Label
	if label == "" {
		label = "pipeline"
	}

	b := badge.Badge{
		Label: label,
		Value: status,
		Color: badge.StatusColor(status),
	}
	return badge.New(metrics).Generate(b), nil
}

// writeBadge renders the run outcome badge to the configured path.
func writeBadge(passed bool) error {
	status := "failing"
	if passed {
		status = "passing"
	}
	svg, err := renderBadge(status)
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.Badge.Output, []byte(svg), 0o644)
}
