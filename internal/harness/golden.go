package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
)

// Snapshot is the deterministic portion of a response, captured for golden
// comparison. Wall-clock metadata (computed_at, duration) is excluded; the
// input hash is kept because it is itself deterministic.
type Snapshot struct {
	ScenarioName     string                                     `json:"scenario_name"`
	InputHash        string                                     `json:"input_hash"`
	Plan             *model.ResolvedActionPlan                  `json:"resolved_plan"`
	DomainPriorities map[model.Domain]model.DomainPriorityScore `json:"domain_priorities"`
	DomainSignals    []model.DomainSignal                       `json:"domain_signals"`
	Conflicts        []model.DomainConflict                     `json:"conflicts_detected,omitempty"`
}

// NewSnapshot builds the golden snapshot for a successful response.
func NewSnapshot(name string, resp *engine.Response) *Snapshot {
	return &Snapshot{
		ScenarioName:     name,
		InputHash:        resp.Metadata.InputHash,
		Plan:             resp.Plan,
		DomainPriorities: resp.DomainPriorities,
		DomainSignals:    resp.DomainSignals,
		Conflicts:        resp.ConflictsDetected,
	}
}

// RunWithGolden executes a scenario, asserts its expectations, and compares
// the response snapshot against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %q: %v", scenario.Name, err)
	}
	for _, failure := range result.Failures {
		t.Errorf("scenario %q: %s", scenario.Name, failure)
	}
	if !result.Response.OK {
		t.Fatalf("scenario %q: resolution failed: %s", scenario.Name, result.Response.Message)
	}

	data, err := json.MarshalIndent(NewSnapshot(scenario.Name, result.Response), "", "  ")
	if err != nil {
		t.Fatalf("scenario %q: marshal snapshot: %v", scenario.Name, err)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, scenario.Name, data)
}
