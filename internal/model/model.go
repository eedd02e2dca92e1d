// Package model maps user preferences and inferred task categories to
// concrete upstream generation models, and defines the fallback ordering
// used when a model fails under load.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownModel indicates an explicit preference that matches no
// configured profile.
var ErrUnknownModel = errors.New("model: unknown model key")

// Profile identifies one upstream generation model and its display metadata.
// Profiles are static configuration; they are never mutated at runtime.
type Profile struct {
	// Key is the short identifier users select with /model.
	Key string `yaml:"key"`

	// UpstreamName is the concrete model identifier sent to the
	// generation API.
	UpstreamName string `yaml:"upstream_name"`

	// DisplayLabel and Description are user-facing.
	DisplayLabel string `yaml:"display_label"`
	Description  string `yaml:"description"`
}

// Category is a coarse classification of the current input, used only
// when the user's preference is automatic.
type Category string

// Task categories for automatic selection.
const (
	CategoryGeneral Category = "general"
	CategoryCode    Category = "code"
	CategoryVision  Category = "vision"
)

// Catalog holds the configured profiles plus the selection policy.
type Catalog struct {
	profiles map[string]Profile

	defaultKey string
	codeKey    string
	visionKey  string

	fallback []Profile
}

// CatalogConfig wires profiles to the roles the automatic selector uses.
type CatalogConfig struct {
	// Profiles lists every selectable model.
	Profiles []Profile

	// DefaultKey is used for general input; VisionKey for image-bearing
	// input; CodeKey for code/math-like input.
	DefaultKey string
	CodeKey    string
	VisionKey  string

	// FallbackOrder lists profile keys in "most likely to succeed under
	// load first" order, used by the retry controller independent of the
	// user's selection.
	FallbackOrder []string
}

// NewCatalog builds a catalog from configuration. Every role key and every
// fallback entry must reference a configured profile.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	if len(cfg.Profiles) == 0 {
		return nil, errors.New("model: no profiles configured")
	}

	profiles := make(map[string]Profile, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if p.Key == "" || p.UpstreamName == "" {
			return nil, fmt.Errorf("model: profile needs key and upstream_name, got %+v", p)
		}
		if _, dup := profiles[p.Key]; dup {
			return nil, fmt.Errorf("model: duplicate profile key %q", p.Key)
		}
		profiles[p.Key] = p
	}

	c := &Catalog{
		profiles:   profiles,
		defaultKey: cfg.DefaultKey,
		codeKey:    cfg.CodeKey,
		visionKey:  cfg.VisionKey,
	}

	for _, key := range []string{cfg.DefaultKey, cfg.CodeKey, cfg.VisionKey} {
		if _, ok := profiles[key]; !ok {
			return nil, fmt.Errorf("model: role references unknown profile %q", key)
		}
	}

	for _, key := range cfg.FallbackOrder {
		p, ok := profiles[key]
		if !ok {
			return nil, fmt.Errorf("model: fallback order references unknown profile %q", key)
		}
		c.fallback = append(c.fallback, p)
	}
	if len(c.fallback) == 0 {
		c.fallback = []Profile{profiles[cfg.DefaultKey]}
	}

	return c, nil
}

// Lookup returns the profile for an explicit key.
func (c *Catalog) Lookup(key string) (Profile, error) {
	p, ok := c.profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownModel, key, strings.Join(c.Keys(), ", "))
	}
	return p, nil
}

// Select resolves a preference and an inferred category to a profile.
// An explicit preference wins regardless of category; automatic mode maps
// the category through the configured role keys.
func (c *Catalog) Select(explicit string, category Category) (Profile, error) {
	if explicit != "" {
		return c.Lookup(explicit)
	}

	switch category {
	case CategoryVision:
		return c.profiles[c.visionKey], nil
	case CategoryCode:
		return c.profiles[c.codeKey], nil
	default:
		return c.profiles[c.defaultKey], nil
	}
}

// Fallback returns the fixed retry ordering.
func (c *Catalog) Fallback() []Profile {
	out := make([]Profile, len(c.fallback))
	copy(out, c.fallback)
	return out
}

// Keys returns all profile keys, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.profiles))
	for k := range c.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Profiles returns all profiles, ordered by key.
func (c *Catalog) Profiles() []Profile {
	out := make([]Profile, 0, len(c.profiles))
	for _, k := range c.Keys() {
		out = append(out, c.profiles[k])
	}
	return out
}
