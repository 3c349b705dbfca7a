package config

import (
	"fmt"
	"regexp"
)

// Validation regexes based on the OCI Distribution Spec.
var (
	// OCI repository path: lowercase, digits, separators (-, _, ., /).
	ociPathRe = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)

	// OCI tag: alphanumeric, -, _, ., max 128 chars. Must start with alphanumeric.
	// Template placeholders ({version}, {sha:7}, ...) are allowed before expansion.
	ociTagRe = regexp.MustCompile(`^[a-zA-Z0-9{][a-zA-Z0-9._:{}-]{0,127}$`)
)

// Validate checks the configuration for structural errors before a run
// starts. Naming-scheme exclusivity lives here, not in the resolver.
func (c *Config) Validate() error {
	if err := c.Image.validate(); err != nil {
		return err
	}

	stackIDs := make(map[string]bool, len(c.Stacks))
	for _, st := range c.Stacks {
		if st.ID == "" {
			return fmt.Errorf("config: stack with empty id")
		}
		if stackIDs[st.ID] {
			return fmt.Errorf("config: duplicate stack id %q", st.ID)
		}
		if st.File == "" {
			return fmt.Errorf("config: stack %q has no compose file", st.ID)
		}
		stackIDs[st.ID] = true
	}

	if c.Test.Stack != "" && !stackIDs[c.Test.Stack] {
		return fmt.Errorf("config: test stack %q is not defined", c.Test.Stack)
	}

	for _, tag := range append(append([]string{}, c.Success.Tags...), c.Failure.Tags...) {
		if !ociTagRe.MatchString(tag) {
			return fmt.Errorf("config: invalid tag %q", tag)
		}
	}

	return nil
}

// validate enforces that repository and namespace+name never mix within
// a naming layer.
func (c ImageConfig) validate() error {
	if c.Repository != "" && (c.Namespace != "" || c.Name != "") {
		return fmt.Errorf("config: image repository is mutually exclusive with namespace/name")
	}
	if c.Build.Repository != "" && (c.Build.Namespace != "" || c.Build.Name != "") {
		return fmt.Errorf("config: image build repository is mutually exclusive with namespace/name")
	}
	if c.Repository != "" && !ociPathRe.MatchString(c.Repository) {
		return fmt.Errorf("config: invalid image repository %q", c.Repository)
	}
	for _, t := range c.Targets {
		if t.Repository != "" && (t.Namespace != "" || t.ImageName != "") {
			return fmt.Errorf("config: target %q repository is mutually exclusive with namespace/image_name", t.Name)
		}
	}
	return nil
}
