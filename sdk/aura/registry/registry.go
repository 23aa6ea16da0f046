// Copyright 2022, Pulumi Corporation.  All rights reserved.

// Package registry holds the static tag and attribute metadata that drives
// completion. A Registry is built once, at startup, and is never mutated
// afterwards, so it can be shared between requests without locking.
package registry

import (
	"github.com/blang/semver"

	"github.com/pulumi/aura-lsp/sdk/util"
)

// Attribute describes one attribute that can be set on a tag.
type Attribute struct {
	Name string
	// The declared data type, e.g. String, Boolean or Component[]. It is only
	// used to label placeholders.
	Type     string
	Required bool
}

// Tag is a component tag and its attributes in declaration order.
type Tag struct {
	// The namespaced identifier, e.g. aura:iteration.
	Name       string
	Attributes []Attribute
}

// Required returns the required attributes among attrs, in order.
func Required(attrs []Attribute) []Attribute {
	return util.Filter(attrs, func(a Attribute) bool { return a.Required })
}

// Registry maps tag names to their attribute metadata.
type Registry struct {
	tags    []*Tag
	byName  map[string]*Tag
	version semver.Version
}

// CurrentVersion is the registry schema version written by this package.
var CurrentVersion = semver.Version{Major: 1}

// New builds a registry from tags, in the order given. A tag that repeats an
// earlier name is dropped, as is any attribute that repeats an earlier
// attribute of the same tag.
func New(tags ...Tag) *Registry {
	r := &Registry{
		byName:  make(map[string]*Tag, len(tags)),
		version: CurrentVersion,
	}
	for _, tag := range tags {
		if _, ok := r.byName[tag.Name]; ok || tag.Name == "" {
			continue
		}
		t := &Tag{Name: tag.Name, Attributes: make([]Attribute, 0, len(tag.Attributes))}
		seen := make(map[string]bool, len(tag.Attributes))
		for _, attr := range tag.Attributes {
			if seen[attr.Name] {
				continue
			}
			seen[attr.Name] = true
			t.Attributes = append(t.Attributes, attr)
		}
		r.tags = append(r.tags, t)
		r.byName[t.Name] = t
	}
	return r
}

// Empty returns a registry that knows no tags.
func Empty() *Registry {
	return New()
}

// Lookup returns the attributes of the named tag. Unknown tags have no
// attributes.
func (r *Registry) Lookup(name string) []Attribute {
	if t, ok := r.byName[name]; ok {
		return t.Attributes
	}
	return nil
}

// Tag retrieves the named tag.
func (r *Registry) Tag(name string) (*Tag, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tags returns every tag in declaration order. The tags must not be modified.
func (r *Registry) Tags() []*Tag {
	return r.tags
}

// Len is the number of known tags.
func (r *Registry) Len() int {
	return len(r.tags)
}

// Version is the schema version the registry was loaded from.
func (r *Registry) Version() semver.Version {
	return r.version
}
