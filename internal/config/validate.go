package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/attunehq/arbiter/internal/model"
)

//go:embed schema.cue
var schemaSource string

// Validate checks the config against the embedded CUE schema plus the
// constraints CUE cannot express (threshold ordering, full weight coverage).
func (c Config) Validate() error {
	for _, d := range model.AllDomains {
		if _, ok := c.DomainWeights[d]; !ok {
			return fmt.Errorf("config: missing weight for domain %q", d)
		}
	}

	if err := c.validateSchema(); err != nil {
		return err
	}

	if c.ActivationThreshold > c.ResolutionThreshold {
		return fmt.Errorf("config: activation_threshold (%d) must not exceed resolution_threshold (%d)",
			c.ActivationThreshold, c.ResolutionThreshold)
	}
	return nil
}

// validateSchema unifies the config value with the #Config definition and
// checks the result is concrete and consistent.
func (c Config) validateSchema() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config: compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("config: lookup #Config: %w", err)
	}

	weights := make(map[string]any, len(c.DomainWeights))
	for d, w := range c.DomainWeights {
		weights[string(d)] = w
	}
	value := ctx.Encode(map[string]any{
		"domain_weights":           weights,
		"activation_threshold":     c.ActivationThreshold,
		"resolution_threshold":     c.ResolutionThreshold,
		"max_secondary_domains":    c.MaxSecondaryDomains,
		"stability_window_seconds": c.StabilityWindowSeconds,
	})
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: encode value: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
