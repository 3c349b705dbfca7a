package config

import "github.com/drydock-ci/drydock/src/imageref"

// ImageConfig names the image under test. Three layers can name it, in
// priority order: a direct reference string, decomposed components, or
// build-mode defaults. Repository and namespace+name are mutually
// exclusive naming schemes within each layer.
type ImageConfig struct {
	Ref        string `yaml:"ref" toml:"ref"`
	Registry   string `yaml:"registry" toml:"registry"`
	Namespace  string `yaml:"namespace" toml:"namespace"`
	Name       string `yaml:"name" toml:"name"`
	Repository string `yaml:"repository" toml:"repository"`
	Tag        string `yaml:"tag" toml:"tag"`

	Build   BuildImageConfig `yaml:"build" toml:"build"`
	Targets []TargetConfig   `yaml:"targets" toml:"targets"`
}

// BuildImageConfig is the build-mode naming used when no reference-mode
// configuration is present.
type BuildImageConfig struct {
	Registry   string   `yaml:"registry" toml:"registry"`
	Namespace  string   `yaml:"namespace" toml:"namespace"`
	Name       string   `yaml:"name" toml:"name"`
	Repository string   `yaml:"repository" toml:"repository"`
	Tags       []string `yaml:"tags" toml:"tags"`
}

// TargetConfig is a per-target override on the resolved image identity,
// used as a publish destination. Empty fields inherit from the source;
// an empty tag list inherits the source tags while a non-empty list
// replaces them.
type TargetConfig struct {
	Name       string   `yaml:"name" toml:"name"`
	Registry   string   `yaml:"registry" toml:"registry"`
	Namespace  string   `yaml:"namespace" toml:"namespace"`
	ImageName  string   `yaml:"image_name" toml:"image_name"`
	Repository string   `yaml:"repository" toml:"repository"`
	Tags       []string `yaml:"tags" toml:"tags"`
}

// Source maps the reference-mode fields to the resolver's input.
func (c ImageConfig) Source() imageref.Source {
	return imageref.Source{
		Ref:        c.Ref,
		Registry:   c.Registry,
		Namespace:  c.Namespace,
		Name:       c.Name,
		Repository: c.Repository,
		Tag:        c.Tag,
	}
}

// BuildDefaults maps the build-mode fields to the resolver's input.
func (c ImageConfig) BuildDefaults() imageref.BuildDefaults {
	return imageref.BuildDefaults{
		Registry:   c.Build.Registry,
		Namespace:  c.Build.Namespace,
		Name:       c.Build.Name,
		Repository: c.Build.Repository,
		Tags:       c.Build.Tags,
	}
}

// Override maps a target to the resolver's override input.
func (t TargetConfig) Override() imageref.Override {
	return imageref.Override{
		Registry:   t.Registry,
		Namespace:  t.Namespace,
		Name:       t.ImageName,
		Repository: t.Repository,
		Tags:       t.Tags,
	}
}
