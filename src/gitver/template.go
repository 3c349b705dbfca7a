package gitver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ResolveTemplate expands template variables in a single string against
// version info and environment. Works on any part of an image reference:
// registry URL, path, tag, or a fully composed reference.
//
// Supported templates:
//
//	Simple variables:
//	  {version}          → "1.2.3" or "1.2.3-alpha.1" (full version)
//	  {base}             → "1.2.3" (semver base, no prerelease)
//	  {major}            → "1"
//	  {minor}            → "2"
//	  {patch}            → "3"
//	  {prerelease}       → "alpha.1" or "" (empty for stable)
//	  {branch}           → "main" (sanitized for tag use)
//
//	Width-controlled variables, {sha:N} truncates to N:
//	  {sha}              → "abc1234" (default 7)
//	  {sha:4}            → "abc1"
//
//	Environment variables:
//	  {env:VAR_NAME}     → value of the environment variable
//
//	Literals pass through as-is:
//	  "latest"           → "latest"
func ResolveTemplate(tmpl string, v *VersionInfo) string {
	if v == nil {
		return tmpl
	}

	s := tmpl
	s = strings.ReplaceAll(s, "{version}", v.Version)
	s = strings.ReplaceAll(s, "{base}", v.Base)
	s = strings.ReplaceAll(s, "{major}", v.Major)
	s = strings.ReplaceAll(s, "{minor}", v.Minor)
	s = strings.ReplaceAll(s, "{patch}", v.Patch)
	s = strings.ReplaceAll(s, "{prerelease}", v.Prerelease)
	s = strings.ReplaceAll(s, "{branch}", sanitizeTag(v.Branch))
	s = resolveSHA(s, v.SHA)
	s = resolveEnv(s)
	return s
}

// ResolveTags expands a list of tag templates, dropping entries that
// resolve to empty (e.g. "{prerelease}" on a stable version).
func ResolveTags(templates []string, v *VersionInfo) []string {
	tags := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		tag := ResolveTemplate(tmpl, v)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// resolveSHA handles {sha} and {sha:N}.
func resolveSHA(s, sha string) string {
	s = strings.ReplaceAll(s, "{sha}", sha)
	for {
		start := strings.Index(s, "{sha:")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			return s
		}
		end += start
		width, err := strconv.Atoi(s[start+5 : end])
		if err != nil || width <= 0 || width > len(sha) {
			width = len(sha)
		}
		s = s[:start] + sha[:width] + s[end+1:]
	}
}

// resolveEnv handles {env:VAR_NAME}.
func resolveEnv(s string) string {
	for {
		start := strings.Index(s, "{env:")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			return s
		}
		end += start
		name := s[start+5 : end]
		s = s[:start] + os.Getenv(name) + s[end+1:]
	}
}

// sanitizeTag replaces characters not allowed in image tags.
func sanitizeTag(s string) string {
	r := strings.NewReplacer(
		"/", "-",
		" ", "-",
	)
	return r.Replace(s)
}

// String returns a human-readable one-line summary of the version info.
func (v *VersionInfo) String() string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%s (%s, %s)", v.Version, v.SHA, v.Branch)
}
