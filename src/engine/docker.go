package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Docker implements Service by shelling out to the docker CLI.
type Docker struct {
	Bin     string
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	log zerolog.Logger
}

// NewDocker creates a Docker service with default output writers.
func NewDocker(verbose bool, log zerolog.Logger) *Docker {
	return &Docker{
		Bin:     "docker",
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		log:     log,
	}
}

// Tag applies each target tag to the image named by sourceRef.
func (d *Docker) Tag(ctx context.Context, sourceRef string, targetTags []string) error {
	for _, tag := range targetTags {
		target := Retag(sourceRef, tag)
		if err := d.run(ctx, "tag", sourceRef, target); err != nil {
			return fmt.Errorf("tagging %s as %s: %w", sourceRef, target, err)
		}
		d.log.Info().Str("source", sourceRef).Str("target", target).Msg("tagged image")
	}
	return nil
}

// Save exports the image to a tar archive at path.
func (d *Docker) Save(ctx context.Context, sourceRef, path string) error {
	if err := d.run(ctx, "save", "--output", path, sourceRef); err != nil {
		return fmt.Errorf("saving %s to %s: %w", sourceRef, path, err)
	}
	d.log.Info().Str("image", sourceRef).Str("path", path).Msg("saved image archive")
	return nil
}

// Publish retags sourceRef as each target reference and pushes it.
func (d *Docker) Publish(ctx context.Context, sourceRef string, targetRefs []string) error {
	for _, ref := range targetRefs {
		if ref != sourceRef {
			if err := d.run(ctx, "tag", sourceRef, ref); err != nil {
				return fmt.Errorf("tagging %s as %s: %w", sourceRef, ref, err)
			}
		}
		if err := d.run(ctx, "push", ref); err != nil {
			return fmt.Errorf("pushing %s: %w", ref, err)
		}
		d.log.Info().Str("ref", ref).Msg("published image")
	}
	return nil
}

// RemoveImage deletes the image from the local engine.
func (d *Docker) RemoveImage(ctx context.Context, ref string) error {
	if err := d.run(ctx, "rmi", ref); err != nil {
		return fmt.Errorf("removing image %s: %w", ref, err)
	}
	d.log.Info().Str("ref", ref).Msg("removed image")
	return nil
}

// run executes a docker subcommand, streaming output to the configured writers.
func (d *Docker) run(ctx context.Context, args ...string) error {
	bin := d.Bin
	if bin == "" {
		bin = "docker"
	}
	if d.Verbose {
		fmt.Fprintf(d.Stderr, "exec: %s %s\n", bin, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	return cmd.Run()
}

// Retag swaps the tag portion of a reference. The ":" only delimits a tag
// when it appears after the last "/"; otherwise it belongs to a registry
// port and the tag is appended.
func Retag(ref, tag string) string {
	colon := strings.LastIndexByte(ref, ':')
	slash := strings.LastIndexByte(ref, '/')
	if colon > slash {
		return ref[:colon+1] + tag
	}
	return ref + ":" + tag
}
