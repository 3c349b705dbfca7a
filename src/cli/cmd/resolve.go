package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drydock-ci/drydock/src/gitver"
	"github.com/drydock-ci/drydock/src/imageref"
	"github.com/drydock-ci/drydock/src/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the effective image reference",
	Long: `Resolve the image under test from configuration and print the
effective properties, including per-target publish references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := os.Getwd()
		if err != nil {
			return err
		}

		log := newLogger()
		vinfo, err := gitver.DetectVersion(rootDir)
		if err != nil {
			log.Debug().Err(err).Msg("version detection failed")
		}

		props, err := imageref.Resolve(cfg.Image.Source(), cfg.Image.BuildDefaults(), log)
		if err != nil {
			return err
		}
		props.Tags = gitver.ResolveTags(props.Tags, vinfo)

		w := os.Stdout
		sec := output.NewSection(w, "Image", 0, output.UseColor())
		sec.Row("registry    %s", orDash(props.Registry))
		sec.Row("namespace   %s", orDash(props.Namespace))
		sec.Row("name        %s", orDash(props.Name))
		sec.Row("repository  %s", orDash(props.Repository))
		sec.Row("tags        %s", orDash(strings.Join(props.Tags, ", ")))
		sec.Separator()
		sec.Row("reference   %s", gitver.ResolveTemplate(props.Reference(), vinfo))
		sec.Close()

		if len(cfg.Image.Targets) > 0 {
			tsec := output.NewSection(w, "Publish targets", 0, output.UseColor())
			for _, t := range publishTargets(vinfo) {
				effective := imageref.Compose(props, t.Override)
				for _, ref := range effective.References() {
					tsec.Row("%-12s %s", t.Name, ref)
				}
			}
			tsec.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
