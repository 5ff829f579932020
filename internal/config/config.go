// Package config defines the arbitration engine's immutable configuration:
// per-domain weights and the thresholds that gate activation, conflict
// surfacing, and plan shape.
//
// Configuration is a value, not a service. Callers load or construct a
// Config once and pass it by value into every resolve call; the engine
// never mutates it, so a single Config may be shared across concurrent
// calls freely.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/attunehq/arbiter/internal/model"
)

// Config holds every tunable of the arbitration engine.
type Config struct {
	// DomainWeights scale raw activation into base priority:
	// base = activation * weight / 100.
	DomainWeights map[model.Domain]int `yaml:"domain_weights" json:"domain_weights"`

	// ActivationThreshold is the minimum post-adjustment score for a domain
	// to count as active (plan inclusion, conflict detection).
	ActivationThreshold int `yaml:"activation_threshold" json:"activation_threshold"`

	// ResolutionThreshold is the minimum conflict severity that gets
	// surfaced and resolved.
	ResolutionThreshold int `yaml:"resolution_threshold" json:"resolution_threshold"`

	// MaxSecondaryDomains caps the supporting-domain list in the plan.
	MaxSecondaryDomains int `yaml:"max_secondary_domains" json:"max_secondary_domains"`

	// StabilityWindowSeconds tells callers how long a plan can be assumed
	// stable before re-resolving.
	StabilityWindowSeconds int `yaml:"stability_window_seconds" json:"stability_window_seconds"`
}

// Default returns the built-in configuration.
//
// Health outweighs everything; commerce is weighted lowest so that even a
// capped-out commerce activation cannot outrank a moderately active
// wellbeing signal without an explicit user override.
func Default() Config {
	return Config{
		DomainWeights: map[model.Domain]int{
			model.DomainHealth:      100,
			model.DomainLearning:    85,
			model.DomainSocial:      80,
			model.DomainExploration: 70,
			model.DomainCommerce:    60,
		},
		ActivationThreshold:    20,
		ResolutionThreshold:    50,
		MaxSecondaryDomains:    2,
		StabilityWindowSeconds: 300,
	}
}

// Weight returns the configured weight for domain d, or 0 for an unknown
// domain. A zero weight zeroes the base score; adjustments still apply.
func (c Config) Weight(d model.Domain) int {
	return c.DomainWeights[d]
}

// Load reads a YAML config file and merges it over the defaults
// field-by-field: any field absent from the file keeps its default.
// The merged result is validated before being returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse merges YAML config bytes over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	// fileConfig mirrors Config with pointers so absent fields are
	// distinguishable from explicit zeroes.
	var file struct {
		DomainWeights          map[model.Domain]int `yaml:"domain_weights"`
		ActivationThreshold    *int                 `yaml:"activation_threshold"`
		ResolutionThreshold    *int                 `yaml:"resolution_threshold"`
		MaxSecondaryDomains    *int                 `yaml:"max_secondary_domains"`
		StabilityWindowSeconds *int                 `yaml:"stability_window_seconds"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	for d, w := range file.DomainWeights {
		if !d.Valid() {
			return Config{}, fmt.Errorf("parse config: unknown domain %q", d)
		}
		cfg.DomainWeights[d] = w
	}
	if file.ActivationThreshold != nil {
		cfg.ActivationThreshold = *file.ActivationThreshold
	}
	if file.ResolutionThreshold != nil {
		cfg.ResolutionThreshold = *file.ResolutionThreshold
	}
	if file.MaxSecondaryDomains != nil {
		cfg.MaxSecondaryDomains = *file.MaxSecondaryDomains
	}
	if file.StabilityWindowSeconds != nil {
		cfg.StabilityWindowSeconds = *file.StabilityWindowSeconds
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
