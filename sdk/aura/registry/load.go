// Copyright 2022, Pulumi Corporation.  All rights reserved.

package registry

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/goccy/go-yaml"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"go.uber.org/zap"
)

// The registry shipped with the language server: the aura, force,
// forceChatter, lightning, ltng and ui namespaces.
//
//go:embed aura.yaml
var defaultRegistry []byte

type loadOptions struct {
	logger *zap.SugaredLogger
}

// LoadOption configures how a registry is loaded.
type LoadOption func(*loadOptions)

// WithLogger reports skipped entries to logger.
func WithLogger(logger *zap.SugaredLogger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

func newLoadOptions(opts []LoadOption) loadOptions {
	o := loadOptions{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Default parses the embedded registry.
func Default(opts ...LoadOption) *Registry {
	r, err := Parse(defaultRegistry, opts...)
	contract.AssertNoErrorf(err, "the embedded registry must parse")
	return r
}

// Load reads a registry file from disk.
func Load(path string, opts ...LoadOption) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read registry: %w", err)
	}
	r, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// LoadOrEmpty loads the registry at path, or the embedded registry when path
// is empty. A registry that cannot be loaded is reported and replaced by an
// empty one: the server then never offers tag or attribute completions, but
// keeps running.
func LoadOrEmpty(path string, opts ...LoadOption) *Registry {
	if path == "" {
		return Default(opts...)
	}
	r, err := Load(path, opts...)
	if err != nil {
		newLoadOptions(opts).logger.Errorf("Using an empty registry: %v", err)
		return Empty()
	}
	return r
}

// Parse decodes a registry document:
//
//	version: 1.0.0
//	tags:
//	  "aura:if":
//	    isTrue: {type: Boolean, required: true}
//	    else: Component[]
//
// Document order is preserved for both tags and attributes. Malformed tag or
// attribute entries are logged and skipped; only an undecodable document or an
// unsupported version is an error.
func Parse(data []byte, opts ...LoadOption) (*Registry, error) {
	o := newLoadOptions(opts)
	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("could not parse registry: %w", err)
	}

	version := CurrentVersion
	var tags []Tag
	for _, item := range doc {
		switch item.Key {
		case "version":
			v, err := semver.ParseTolerant(fmt.Sprint(item.Value))
			if err != nil {
				return nil, fmt.Errorf("invalid registry version %v: %w", item.Value, err)
			}
			if v.Major != CurrentVersion.Major {
				return nil, fmt.Errorf("unsupported registry version %s: expected %d.x", v, CurrentVersion.Major)
			}
			version = v
		case "tags":
			body, ok := asMap(item.Value)
			if !ok {
				return nil, fmt.Errorf("'tags' must be a mapping, found %T", item.Value)
			}
			tags = o.parseTags(body)
		default:
			o.logger.Warnf("Ignoring unknown registry key %v", item.Key)
		}
	}

	r := New(tags...)
	r.version = version
	return r, nil
}

func (o loadOptions) parseTags(body yaml.MapSlice) []Tag {
	tags := make([]Tag, 0, len(body))
	seen := map[string]bool{}
	for _, item := range body {
		name, ok := item.Key.(string)
		if !ok || name == "" {
			o.logger.Warnf("Skipping tag with invalid name %v", item.Key)
			continue
		}
		if seen[name] {
			o.logger.Warnf("Skipping duplicate tag %s", name)
			continue
		}
		attrs, ok := asMap(item.Value)
		if !ok {
			o.logger.Warnf("Skipping tag %s: attributes must be a mapping, found %T", name, item.Value)
			continue
		}
		seen[name] = true
		tags = append(tags, Tag{Name: name, Attributes: o.parseAttributes(name, attrs)})
	}
	return tags
}

func (o loadOptions) parseAttributes(tag string, body yaml.MapSlice) []Attribute {
	attrs := make([]Attribute, 0, len(body))
	seen := map[string]bool{}
	for _, item := range body {
		name, ok := item.Key.(string)
		if !ok || name == "" {
			o.logger.Warnf("Skipping attribute of %s with invalid name %v", tag, item.Key)
			continue
		}
		if seen[name] {
			o.logger.Warnf("Skipping duplicate attribute %s.%s", tag, name)
			continue
		}
		attr, err := parseAttribute(name, item.Value)
		if err != nil {
			o.logger.Warnf("Skipping attribute %s.%s: %v", tag, name, err)
			continue
		}
		seen[name] = true
		attrs = append(attrs, attr)
	}
	return attrs
}

func parseAttribute(name string, value interface{}) (Attribute, error) {
	attr := Attribute{Name: name}
	switch value := value.(type) {
	case string:
		attr.Type = value
	case yaml.MapSlice:
		for _, item := range value {
			switch item.Key {
			case "type":
				typ, ok := item.Value.(string)
				if !ok {
					return attr, fmt.Errorf("type must be a string, found %T", item.Value)
				}
				attr.Type = typ
			case "required":
				required, ok := item.Value.(bool)
				if !ok {
					return attr, fmt.Errorf("required must be a boolean, found %T", item.Value)
				}
				attr.Required = required
			default:
				return attr, fmt.Errorf("unknown key %v", item.Key)
			}
		}
	default:
		return attr, fmt.Errorf("expected a type name or a mapping, found %T", value)
	}
	if attr.Type == "" {
		return attr, fmt.Errorf("missing type")
	}
	return attr, nil
}

// asMap accepts a mapping or an empty value.
func asMap(v interface{}) (yaml.MapSlice, bool) {
	switch v := v.(type) {
	case nil:
		return nil, true
	case yaml.MapSlice:
		return v, true
	}
	return nil, false
}
