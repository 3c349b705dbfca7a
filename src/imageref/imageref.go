// Package imageref resolves the effective identity of a container image
// from layered configuration. An image can be named three ways (a direct
// reference string, decomposed reference components, or build defaults)
// and this package picks the first layer that can produce a usable name.
package imageref

import (
	"fmt"
	"strings"
)

// DefaultTag is applied when a reference carries no explicit tag.
const DefaultTag = "latest"

// Properties is the fully resolved naming of an image: where it lives,
// how its path decomposes, and which tags apply. Repository is an
// alternative to the Namespace+Name scheme; the two are mutually
// exclusive, enforced by config validation rather than here.
type Properties struct {
	Registry   string
	Namespace  string
	Name       string
	Repository string
	Tags       []string
}

// Parse decomposes a reference of the form [registry/][namespace/]name[:tag].
// The first path segment counts as a registry host only when it contains
// a "." or ":"; otherwise it is a namespace. A missing tag defaults to
// "latest".
func Parse(ref string) (Properties, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Properties{}, fmt.Errorf("imageref: empty reference")
	}

	path, tag := splitTag(ref)
	if path == "" {
		return Properties{}, fmt.Errorf("imageref: reference %q has no name", ref)
	}

	var p Properties
	segments := strings.Split(path, "/")

	if len(segments) > 1 && isRegistryHost(segments[0]) {
		p.Registry = segments[0]
		segments = segments[1:]
	}

	switch {
	case len(segments) == 1:
		p.Name = segments[0]
	default:
		p.Namespace = strings.Join(segments[:len(segments)-1], "/")
		p.Name = segments[len(segments)-1]
	}

	if p.Name == "" {
		return Properties{}, fmt.Errorf("imageref: reference %q has no name", ref)
	}

	if tag == "" {
		tag = DefaultTag
	}
	p.Tags = []string{tag}

	return p, nil
}

// Reference rebuilds a canonical reference string from the properties,
// using the first tag (or "latest" when none is set). The result of
// parsing it again is equivalent to the original properties.
func (p Properties) Reference() string {
	var b strings.Builder
	if p.Registry != "" {
		b.WriteString(p.Registry)
		b.WriteByte('/')
	}
	if p.Repository != "" {
		b.WriteString(p.Repository)
	} else {
		if p.Namespace != "" {
			b.WriteString(p.Namespace)
			b.WriteByte('/')
		}
		b.WriteString(p.Name)
	}
	b.WriteByte(':')
	if len(p.Tags) > 0 && p.Tags[0] != "" {
		b.WriteString(p.Tags[0])
	} else {
		b.WriteString(DefaultTag)
	}
	return b.String()
}

// References returns one rebuilt reference per tag, preserving tag order.
func (p Properties) References() []string {
	if len(p.Tags) == 0 {
		return []string{p.Reference()}
	}
	refs := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		q := p
		q.Tags = []string{tag}
		refs = append(refs, q.Reference())
	}
	return refs
}

// splitTag separates the tag from the path. A ":" only delimits a tag
// when it appears after the last "/"; otherwise it belongs to a
// registry host port.
func splitTag(ref string) (path, tag string) {
	colon := strings.LastIndexByte(ref, ':')
	slash := strings.LastIndexByte(ref, '/')
	if colon > slash {
		return ref[:colon], ref[colon+1:]
	}
	return ref, ""
}

// isRegistryHost reports whether a leading path segment names a registry.
func isRegistryHost(segment string) bool {
	return strings.ContainsAny(segment, ".:")
}
