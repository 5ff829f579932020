package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
)

// TestScenarios runs every scenario under testdata/scenarios and asserts
// all expectations hold.
func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(scenario)
			require.NoError(t, err)
			for _, failure := range result.Failures {
				t.Errorf("%s", failure)
			}
		})
	}
}

func TestLoadScenarioDir_SortedByFileName(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.IsNonDecreasing(t, names)
}

func TestGoldenSnapshots(t *testing.T) {
	for _, name := range []string{"baseline_exploration", "rest_vs_social"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)
			RunWithGolden(t, scenario)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read scenario")
}

func TestLoadScenario_NameRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  user_id: u-1\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "name is required")
}

func TestLoadScenario_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestScenarioConfig_MergesOverDefaults(t *testing.T) {
	scenario := &Scenario{
		Name:   "tuned",
		Config: map[string]any{"activation_threshold": 40},
	}

	cfg, err := scenarioConfig(scenario)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.ActivationThreshold)
	assert.Equal(t, config.Default().ResolutionThreshold, cfg.ResolutionThreshold)
	assert.Equal(t, config.Default().DomainWeights, cfg.DomainWeights)
}

func TestScenarioConfig_Empty(t *testing.T) {
	cfg, err := scenarioConfig(&Scenario{Name: "plain"})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestScenarioConfig_Invalid(t *testing.T) {
	scenario := &Scenario{
		Name:   "broken",
		Config: map[string]any{"max_secondary_domains": 9},
	}
	_, err := scenarioConfig(scenario)
	require.Error(t, err)
}

// A deliberately wrong expectation must surface as a failure, not an error.
func TestRun_ReportsExpectationFailures(t *testing.T) {
	scenario := &Scenario{
		Name: "wrong_primary",
		Expect: Expect{
			Primary:   model.DomainCommerce,
			Secondary: []model.Domain{model.DomainHealth},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0], "primary")
	assert.Contains(t, result.Failures[1], "secondary")
}
