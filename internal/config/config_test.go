package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/arbiter/internal/model"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Weight(model.DomainHealth))
	assert.Equal(t, 60, cfg.Weight(model.DomainCommerce))
	assert.Equal(t, 20, cfg.ActivationThreshold)
	assert.Equal(t, 50, cfg.ResolutionThreshold)
	assert.Equal(t, 2, cfg.MaxSecondaryDomains)
	assert.Equal(t, 300, cfg.StabilityWindowSeconds)
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
domain_weights:
  commerce_monetization: 40
activation_threshold: 30
`))
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Weight(model.DomainCommerce), "file value wins")
	assert.Equal(t, 100, cfg.Weight(model.DomainHealth), "absent weight keeps default")
	assert.Equal(t, 30, cfg.ActivationThreshold)
	assert.Equal(t, 50, cfg.ResolutionThreshold, "absent threshold keeps default")
}

func TestParse_ExplicitZeroDistinctFromAbsent(t *testing.T) {
	cfg, err := Parse([]byte("max_secondary_domains: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxSecondaryDomains)
}

func TestParse_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"unknown domain", "domain_weights:\n  finance: 50\n"},
		{"weight above range", "domain_weights:\n  health_wellbeing: 150\n"},
		{"negative weight", "domain_weights:\n  health_wellbeing: -1\n"},
		{"activation above resolution", "activation_threshold: 80\nresolution_threshold: 40\n"},
		{"max secondary above cap", "max_secondary_domains: 9\n"},
		{"zero stability window", "stability_window_seconds: 0\n"},
		{"malformed yaml", "domain_weights: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestValidate_MissingWeight(t *testing.T) {
	cfg := Default()
	delete(cfg.DomainWeights, model.DomainSocial)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "social_relationships")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbiter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolution_threshold: 65\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 65, cfg.ResolutionThreshold)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
