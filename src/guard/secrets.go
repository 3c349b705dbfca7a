// Package guard vets an image publish before it happens: a secret scan
// over the build context and a vulnerability scan over the image itself.
// An image built from a context with live credentials, or carrying known
// critical vulnerabilities, must never reach a registry.
package guard

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zricethezav/gitleaks/v8/detect"
	"golang.org/x/sync/semaphore"
)

// Finding is one detected secret.
type Finding struct {
	File        string
	Line        int
	RuleID      string
	Description string
}

// SecretScan checks a build context directory for leaked secrets using
// the default gitleaks ruleset. Check returns an error when any finding
// exists, which aborts the publish.
type SecretScan struct {
	RootDir string
	log     zerolog.Logger

	once     sync.Once
	detector *detect.Detector
	initErr  error
}

// NewSecretScan creates a guard over the given build context directory.
func NewSecretScan(rootDir string, log zerolog.Logger) *SecretScan {
	return &SecretScan{RootDir: rootDir, log: log}
}

// Check implements the pipeline's publish guard contract.
func (s *SecretScan) Check(ctx context.Context) error {
	findings, err := s.Scan(ctx)
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		return nil
	}
	for _, f := range findings {
		s.log.Error().
			Str("file", f.File).
			Int("line", f.Line).
			Str("rule", f.RuleID).
			Msg(f.Description)
	}
	return fmt.Errorf("secret scan: %d finding(s) in build context %s", len(findings), s.RootDir)
}

// Scan walks the build context and runs secret detection on every
// regular file, bounded to a CPU-scaled number of concurrent scans.
func (s *SecretScan) Scan(ctx context.Context) ([]Finding, error) {
	s.once.Do(func() {
		s.detector, s.initErr = detect.NewDetectorDefaultConfig()
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("initializing secret detector: %w", s.initErr)
	}

	files, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		findings []Finding
		wg       sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(runtime.NumCPU() * 2))

	for _, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			data, err := os.ReadFile(path)
			if err != nil {
				return // unreadable files are not publish blockers
			}

			rel, relErr := filepath.Rel(s.RootDir, path)
			if relErr != nil {
				rel = path
			}

			for _, hit := range s.detector.DetectBytes(data) {
				mu.Lock()
				findings = append(findings, Finding{
					File:        rel,
					Line:        hit.StartLine + 1, // gitleaks is 0-indexed
					RuleID:      hit.RuleID,
					Description: hit.Description,
				})
				mu.Unlock()
			}
		}(path)
	}
	wg.Wait()

	return findings, nil
}

// collectFiles lists regular files under the build context, skipping VCS
// metadata and anything that is plainly not source or configuration.
func (s *SecretScan) collectFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isBinaryExt(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking build context %s: %w", s.RootDir, err)
	}
	return files, nil
}

var binaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".gz": true, ".zip": true, ".tar": true, ".xz": true, ".zst": true,
	".so": true, ".a": true, ".o": true, ".exe": true, ".bin": true,
	".pdf": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
}

func isBinaryExt(path string) bool {
	return binaryExts[strings.ToLower(filepath.Ext(path))]
}
