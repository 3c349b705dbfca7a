// Package gitver provides git-based version detection and tag template
// resolution. The pipeline uses it to turn tag templates like
// "{version}" or "{branch}-{sha}" into concrete image tags.
package gitver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// VersionInfo holds resolved version metadata from git.
type VersionInfo struct {
	Version      string // full version: "1.2.3", "1.2.3-alpha.1", "0.0.0-dev+abc1234"
	Base         string // semver base without prerelease: "1.2.3"
	Major        string
	Minor        string
	Patch        string
	Prerelease   string // "alpha.1", "rc.1", or "" for stable
	SHA          string // short HEAD hash
	Branch       string
	IsRelease    bool // true if HEAD is exactly at a version tag
	IsPrerelease bool // true if the tag has a prerelease suffix
}

// DetectVersion resolves version info from the repository at rootDir:
// the highest semver tag provides the base version, an exact tag at HEAD
// marks a release, anything else gets a dev suffix.
func DetectVersion(rootDir string) (*VersionInfo, error) {
	repo, err := git.PlainOpen(rootDir)
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	v := &VersionInfo{SHA: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		v.Branch = head.Name().Short()
	}

	highest, atHead := highestVersionTag(repo, head.Hash())
	if highest == nil {
		// No version tags yet, report a dev version.
		v.Version = fmt.Sprintf("0.0.0-dev+%s", v.SHA)
		v.Base = "0.0.0"
		v.Major, v.Minor, v.Patch = "0", "0", "0"
		return v, nil
	}

	v.Major = strconv.FormatUint(highest.Major(), 10)
	v.Minor = strconv.FormatUint(highest.Minor(), 10)
	v.Patch = strconv.FormatUint(highest.Patch(), 10)
	v.Base = fmt.Sprintf("%s.%s.%s", v.Major, v.Minor, v.Patch)
	v.IsRelease = atHead

	if pre := highest.Prerelease(); pre != "" {
		v.Prerelease = pre
		v.IsPrerelease = true
		v.Version = v.Base + "-" + pre
	} else {
		v.Version = v.Base
	}

	if !v.IsRelease {
		v.Version = fmt.Sprintf("%s-dev+%s", v.Version, v.SHA)
	}

	return v, nil
}

// highestVersionTag walks all tags, parses the semver ones, and returns
// the highest along with whether it points at head. Annotated tags are
// peeled to their target commit.
func highestVersionTag(repo *git.Repository, head plumbing.Hash) (*semver.Version, bool) {
	tags, err := repo.Tags()
	if err != nil {
		return nil, false
	}

	var highest *semver.Version
	var highestAtHead bool

	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		name := strings.TrimPrefix(ref.Name().Short(), "v")
		version, err := semver.NewVersion(name)
		if err != nil {
			return nil // not a version tag
		}

		target := ref.Hash()
		if tagObj, err := repo.TagObject(ref.Hash()); err == nil {
			target = tagObj.Target
		}

		if highest == nil || version.GreaterThan(highest) {
			highest = version
			highestAtHead = target == head
		}
		return nil
	})

	return highest, highestAtHead
}
