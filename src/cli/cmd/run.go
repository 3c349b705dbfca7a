package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/drydock-ci/drydock/src/engine"
	"github.com/drydock-ci/drydock/src/gitver"
	"github.com/drydock-ci/drydock/src/guard"
	"github.com/drydock-ci/drydock/src/imageref"
	"github.com/drydock-ci/drydock/src/output"
	"github.com/drydock-ci/drydock/src/pipeline"
	"github.com/drydock-ci/drydock/src/stack"
)

var (
	runImage   string
	runNoBadge bool
	runDryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the test pipeline",
	Long: `Run the full pipeline: bring the test environment up, run the tests,
tear the environment down, then tag/save/publish on success or capture
diagnostics on failure. Cleanup always runs last.

The image under test must already be built; its reference is resolved
from the image configuration or overridden with --image.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&runImage, "image", "", "override the built image reference")
	runCmd.Flags().BoolVar(&runNoBadge, "no-badge", false, "skip writing the status badge")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "show the resolved plan without executing")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	ctx := context.Background()
	log := newLogger()
	w := os.Stdout
	start := time.Now()

	// Version info feeds tag templates; a missing repo just disables them.
	vinfo, err := gitver.DetectVersion(rootDir)
	if err != nil {
		log.Warn().Err(err).Msg("version detection failed, tag templates disabled")
	}

	props, err := imageref.Resolve(cfg.Image.Source(), cfg.Image.BuildDefaults(), log)
	if err != nil {
		return err
	}
	props.Tags = gitver.ResolveTags(props.Tags, vinfo)

	imageRef := runImage
	if imageRef == "" {
		imageRef = gitver.ResolveTemplate(props.Reference(), vinfo)
	}

	output.CIHeader(w)
	output.ContextBlock(w, []output.KV{
		{Key: "pipeline", Value: pipelineName()},
		{Key: "image", Value: imageRef},
		{Key: "stack", Value: cfg.Test.Stack},
		{Key: "version", Value: vinfo.String()},
	})

	if runDryRun {
		printPlan(w, imageRef, props, vinfo)
		return nil
	}

	eng := engine.NewDocker(verbose, log)
	stacks := stack.NewCompose(composeStacks(), log)
	p := assemblePipeline(rootDir, imageRef, props, vinfo, eng, stacks, log)

	pctx := pipeline.NewContext(pipelineName()).
		WithBuiltImage(engine.Image{Ref: imageRef})

	output.SectionStart(w, "drydock_run", "Pipeline")
	pctx, runErr := p.Run(ctx, pctx)
	output.SectionEnd(w, "drydock_run")

	status, detail := runOutcome(pctx, runErr)
	output.PhaseResult(w, "pipeline", status, detail, time.Since(start))

	if !runNoBadge && cfg.Badge.Output != "" {
		if err := writeBadge(status == "success"); err != nil {
			log.Warn().Err(err).Msg("writing status badge failed")
		}
	}

	return runErr
}

// assemblePipeline wires the step executors from configuration.
func assemblePipeline(rootDir, imageRef string, props imageref.Properties, vinfo *gitver.VersionInfo,
	eng engine.Service, stacks stack.Orchestrator, log zerolog.Logger) *pipeline.Pipeline {

	testSpec := pipeline.TestSpec{
		StackID: cfg.Test.Stack,
		Runner: &pipeline.ExecRunner{
			Command: cfg.Test.Command,
			Dir:     filepath.Join(rootDir, cfg.Test.WorkDir),
			Env:     testEnv(imageRef),
		},
	}

	var guards guard.Chain
	if cfg.Success.Guard.Secrets {
		contextDir := cfg.Success.Guard.Context
		if contextDir == "" {
			contextDir = "."
		}
		guards = append(guards, guard.NewSecretScan(filepath.Join(rootDir, contextDir), log))
	}
	if cfg.Success.Guard.Vulnerabilities {
		guards = append(guards, guard.NewVulnScan(imageRef, cfg.Success.Guard.FailOn, log))
	}
	var publishGuard pipeline.PublishGuard
	if len(guards) > 0 {
		publishGuard = guards
	}

	successSpec := pipeline.SuccessSpec{
		Tags:     gitver.ResolveTags(cfg.Success.Tags, vinfo),
		SavePath: cfg.Success.Save,
		Publish:  cfg.Success.Publish,
		Source:   props,
		Targets:  publishTargets(vinfo),
	}

	failureSpec := pipeline.FailureSpec{
		Tags:      gitver.ResolveTags(cfg.Failure.Tags, vinfo),
		StackID:   cfg.Test.Stack,
		LogsDir:   cfg.Failure.LogsDir,
		LogFilter: cfg.Failure.LogFilter,
	}

	alwaysSpec := pipeline.AlwaysSpec{
		StackID:              cfg.Test.Stack,
		RemoveTestContainers: cfg.Always.RemoveContainers,
		KeepFailedContainers: cfg.Always.KeepFailedContainers,
		CleanupImages:        cfg.Always.CleanupImages,
	}

	test := pipeline.NewTestStep(testSpec, stacks, log)
	success := pipeline.NewSuccessStep(successSpec, eng, publishGuard, log)
	failure := pipeline.NewFailureStep(failureSpec, eng, stacks, log)
	conditional := pipeline.NewConditional(success, failure)
	always := pipeline.NewAlwaysStep(alwaysSpec, eng, stacks, log)

	return pipeline.New(test, conditional, always, log)
}

// composeStacks maps stack configuration to the orchestrator's input.
func composeStacks() []stack.Stack {
	stacks := make([]stack.Stack, 0, len(cfg.Stacks))
	for _, st := range cfg.Stacks {
		stacks = append(stacks, stack.Stack{
			ID:          st.ID,
			File:        st.File,
			ProjectName: st.Project,
			WorkDir:     st.WorkDir,
			Env:         st.Env,
		})
	}
	return stacks
}

// publishTargets maps target configuration to publish destinations with
// tag templates resolved.
func publishTargets(vinfo *gitver.VersionInfo) []pipeline.PublishTarget {
	targets := make([]pipeline.PublishTarget, 0, len(cfg.Image.Targets))
	for _, t := range cfg.Image.Targets {
		override := t.Override()
		override.Tags = gitver.ResolveTags(override.Tags, vinfo)
		targets = append(targets, pipeline.PublishTarget{Name: t.Name, Override: override})
	}
	return targets
}

// testEnv exposes the image under test to the test command.
func testEnv(imageRef string) map[string]string {
	env := make(map[string]string, len(cfg.Test.Env)+1)
	for k, v := range cfg.Test.Env {
		env[k] = v
	}
	env["DRYDOCK_IMAGE"] = imageRef
	return env
}

// runOutcome derives the phase summary from the final context and error.
func runOutcome(pctx pipeline.Context, runErr error) (status, detail string) {
	if result, ok := pctx.TestResult(); ok && !result.Success {
		detail = "tests failed"
		if result.Total > 0 {
			detail = fmt.Sprintf("%d/%d tests failed", result.Failed, result.Total)
		}
		return "failed", detail
	}
	if runErr != nil {
		return "failed", runErr.Error()
	}
	return "success", "tests passed"
}

// pipelineName falls back to the resolved image name when unset.
func pipelineName() string {
	if cfg.Pipeline.Name != "" {
		return cfg.Pipeline.Name
	}
	if cfg.Image.Name != "" {
		return cfg.Image.Name
	}
	return "drydock"
}

// printPlan shows what a run would do without executing anything.
func printPlan(w *os.File, imageRef string, props imageref.Properties, vinfo *gitver.VersionInfo) {
	sec := output.NewSection(w, "Plan", 0, output.UseColor())
	sec.Row("image      %s", imageRef)
	sec.Row("stack      %s", cfg.Test.Stack)
	sec.Row("command    %v", []string(cfg.Test.Command))
	if tags := gitver.ResolveTags(cfg.Success.Tags, vinfo); len(tags) > 0 {
		sec.Row("tags       %v", tags)
	}
	if cfg.Success.Save != "" {
		sec.Row("save       %s", cfg.Success.Save)
	}
	if cfg.Success.Publish {
		for _, t := range publishTargets(vinfo) {
			effective := imageref.Compose(props, t.Override)
			sec.Row("publish    %s", effective.Reference())
		}
		if len(cfg.Image.Targets) == 0 {
			sec.Row("publish    %s", props.Reference())
		}
	}
	sec.Close()
}
