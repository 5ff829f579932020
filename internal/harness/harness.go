// Package harness provides a conformance testing framework for the
// arbitration engine.
//
// A scenario pairs a resolve request with declarative expectations about
// the resulting plan. The harness runs the real engine with a fixed clock
// and no collaborators, evaluates the expectations, and can additionally
// compare a canonical snapshot of the response against a golden file.
//
// Every scenario runs against a fresh engine, so scenarios are independent
// and may run in any order or in parallel.
package harness

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
)

// fixedNow pins the engine clock so response metadata is reproducible.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Run executes one scenario against a fresh engine and evaluates its
// expectations.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	eng := engine.New(cfg, engine.WithClock(func() time.Time { return fixedNow }))
	resp := eng.Resolve(context.Background(), scenario.Input)

	result := &Result{Scenario: scenario, Response: resp}
	result.Failures = evaluate(scenario.Expect, resp)
	return result, nil
}

// scenarioConfig merges the scenario's inline config block over defaults.
func scenarioConfig(scenario *Scenario) (config.Config, error) {
	if len(scenario.Config) == 0 {
		return config.Default(), nil
	}
	raw, err := yaml.Marshal(scenario.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("marshal config block: %w", err)
	}
	return config.Parse(raw)
}

// evaluate checks every populated expectation and collects failures.
func evaluate(expect Expect, resp *engine.Response) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if expect.OK != nil && resp.OK != *expect.OK {
		fail("ok: want %v, got %v (%s)", *expect.OK, resp.OK, resp.Message)
	}
	if !resp.OK {
		return failures
	}
	plan := resp.Plan

	if expect.Primary != "" && plan.PrimaryDomain != expect.Primary {
		fail("primary: want %s, got %s", expect.Primary, plan.PrimaryDomain)
	}
	if expect.Secondary != nil && !slices.Equal(plan.SecondaryDomains, expect.Secondary) {
		fail("secondary: want %v, got %v", expect.Secondary, plan.SecondaryDomains)
	}

	for _, d := range expect.SuppressedInclude {
		if !slices.ContainsFunc(plan.SuppressedDomains, func(s model.SuppressedDomain) bool { return s.Domain == d }) {
			fail("suppressed: missing %s in %v", d, plan.SuppressedDomains)
		}
	}
	for _, d := range expect.DeferredInclude {
		if !slices.ContainsFunc(plan.DeferredDomains, func(dd model.DeferredDomain) bool { return dd.Domain == d }) {
			fail("deferred: missing %s in %v", d, plan.DeferredDomains)
		}
	}
	for _, tag := range expect.TagsInclude {
		if !slices.Contains(plan.PriorityTags, tag) {
			fail("tags: missing %s in %v", tag, plan.PriorityTags)
		}
	}
	for _, ct := range expect.ConflictTypes {
		if !slices.ContainsFunc(resp.ConflictsDetected, func(c model.DomainConflict) bool { return c.Type == ct }) {
			fail("conflicts: missing type %s", ct)
		}
	}
	for _, st := range expect.Strategies {
		if !slices.ContainsFunc(plan.ResolvedConflicts, func(r model.ConflictResolution) bool { return r.Strategy == st }) {
			fail("strategies: missing %s", st)
		}
	}
	return failures
}
