package imageref

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNoReference signals that no configuration layer can name the image:
// no direct reference, no decomposed components, and no build defaults.
var ErrNoReference = errors.New("imageref: no reference, components, or build defaults to name the image")

// Source holds the reference-mode configuration for an image: either a
// direct reference string, or decomposed components. Unset fields are
// empty strings.
type Source struct {
	Ref        string
	Registry   string
	Namespace  string
	Name       string
	Repository string
	Tag        string
}

// BuildDefaults holds the build-mode naming used when no reference-mode
// configuration is present.
type BuildDefaults struct {
	Registry   string
	Namespace  string
	Name       string
	Repository string
	Tags       []string
}

// Override is a per-target adjustment over a resolved source identity.
// Every field is optional; identity fields replace the source value only
// when non-empty. Tags follow a different rule: an empty list inherits
// the source tags, a non-empty list replaces them entirely.
type Override struct {
	Registry   string
	Namespace  string
	Name       string
	Repository string
	Tags       []string
}

// Resolve determines the effective image properties, trying in order:
//
//  1. the direct reference string,
//  2. decomposed components assembled into a reference and re-parsed,
//  3. build defaults used as-is.
//
// A decomposed reference that cannot be assembled into something parseable
// falls through to build defaults with a warning rather than failing.
func Resolve(src Source, build BuildDefaults, log zerolog.Logger) (Properties, error) {
	if src.Ref != "" {
		return Parse(src.Ref)
	}

	if src.Repository != "" || src.Name != "" {
		assembled := src.assemble()
		p, err := Parse(assembled)
		if err == nil {
			return p, nil
		}
		log.Warn().
			Str("assembled", assembled).
			Err(err).
			Msg("decomposed image reference unusable, falling back to build defaults")
	}

	if build.Repository == "" && build.Name == "" {
		return Properties{}, ErrNoReference
	}
	return Properties{
		Registry:   build.Registry,
		Namespace:  build.Namespace,
		Name:       build.Name,
		Repository: build.Repository,
		Tags:       build.Tags,
	}, nil
}

// assemble joins the decomposed components into a reference string:
// registry/repository:tag when a repository is set, otherwise
// registry/namespace/name:tag. Empty components are skipped and the tag
// defaults to "latest".
func (s Source) assemble() string {
	var parts []string
	if s.Registry != "" {
		parts = append(parts, s.Registry)
	}
	if s.Repository != "" {
		parts = append(parts, s.Repository)
	} else {
		if s.Namespace != "" {
			parts = append(parts, s.Namespace)
		}
		if s.Name != "" {
			parts = append(parts, s.Name)
		}
	}
	ref := strings.Join(parts, "/")
	if ref == "" {
		return ""
	}
	tag := s.Tag
	if tag == "" {
		tag = DefaultTag
	}
	return ref + ":" + tag
}

// Compose layers a per-target override onto a resolved source identity.
// Identity fields take the override when non-empty, otherwise the source
// value. An empty override tag list inherits the source tags; a non-empty
// list replaces them.
func Compose(src Properties, o Override) Properties {
	out := Properties{
		Registry:   firstNonEmpty(o.Registry, src.Registry),
		Namespace:  firstNonEmpty(o.Namespace, src.Namespace),
		Name:       firstNonEmpty(o.Name, src.Name),
		Repository: firstNonEmpty(o.Repository, src.Repository),
	}
	if len(o.Tags) > 0 {
		out.Tags = append([]string(nil), o.Tags...)
	} else {
		out.Tags = append([]string(nil), src.Tags...)
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
