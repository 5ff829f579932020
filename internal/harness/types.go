package harness

import (
	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
)

// Scenario defines one conformance scenario: a resolve request plus the
// expectations the resulting plan must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Input is the resolve request under test.
	Input engine.Request `yaml:"input"`

	// Config optionally overrides engine configuration, in the same YAML
	// shape the config loader accepts. Absent fields keep their defaults.
	Config map[string]any `yaml:"config,omitempty"`

	// Expect lists the assertions evaluated against the response.
	Expect Expect `yaml:"expect"`
}

// Expect is the assertion set for a scenario. Empty fields assert nothing.
// List fields are subset matches except Secondary, which must match exactly
// (order included) when present.
type Expect struct {
	OK                *bool                `yaml:"ok,omitempty"`
	Primary           model.Domain         `yaml:"primary,omitempty"`
	Secondary         []model.Domain       `yaml:"secondary,omitempty"`
	SuppressedInclude []model.Domain       `yaml:"suppressed_include,omitempty"`
	DeferredInclude   []model.Domain       `yaml:"deferred_include,omitempty"`
	TagsInclude       []model.PriorityTag  `yaml:"tags_include,omitempty"`
	ConflictTypes     []model.ConflictType `yaml:"conflict_types,omitempty"`
	Strategies        []model.Strategy     `yaml:"strategies,omitempty"`
}

// Result is the outcome of running one scenario.
type Result struct {
	Scenario *Scenario
	Response *engine.Response
	Failures []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}
