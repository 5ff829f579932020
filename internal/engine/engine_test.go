package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
	"github.com/attunehq/arbiter/internal/testutil"
)

func TestResolve_RestVsSocial(t *testing.T) {
	e := newTestEngine()
	resp := mustResolve(e, resolveCtx(restVsSocialContext()))

	require.True(t, resp.OK)
	require.NotNil(t, resp.Plan)

	assert.Equal(t, 63, resp.DomainPriorities[model.DomainHealth].Score)
	assert.Equal(t, 20, resp.DomainPriorities[model.DomainSocial].Score)
	assert.Equal(t, 0, resp.DomainPriorities[model.DomainExploration].Score)

	require.Len(t, resp.ConflictsDetected, 1)
	conflict := resp.ConflictsDetected[0]
	assert.Equal(t, model.ConflictRestVsSocial, conflict.Type)
	assert.Equal(t, 70, conflict.Severity, "urgent obligation escalates the base 50")

	require.Len(t, resp.Plan.ResolvedConflicts, 1)
	res := resp.Plan.ResolvedConflicts[0]
	assert.Equal(t, model.StrategyReframeSuggestion, res.Strategy)
	assert.Equal(t, model.DomainSocial, res.Winner)

	assert.Equal(t, model.DomainHealth, resp.Plan.PrimaryDomain)
	assert.Equal(t, []model.Domain{model.DomainSocial}, resp.Plan.SecondaryDomains)
	assert.Equal(t, []model.PriorityTag{model.TagCommerceSuppressed, model.TagRestMode}, resp.Plan.PriorityTags)
	assert.Equal(t, model.DepthLight, resp.Plan.Constraints.SuggestedDepth)
	assert.Equal(t, model.PacingGentle, resp.Plan.Constraints.SuggestedPacing)
	assert.Equal(t,
		"health_wellbeing leads, supported by social_relationships; 1 conflict resolved.",
		resp.Plan.Rationale)
}

func TestResolve_HardBoundarySuppressesCommerce(t *testing.T) {
	e := newTestEngine()
	req := resolveCtx(hardBoundaryContext())
	req.CurrentIntent = "buy shoes"
	resp := mustResolve(e, req)

	require.True(t, resp.OK)

	assert.Equal(t, 45, resp.DomainPriorities[model.DomainCommerce].Score)
	assert.Equal(t, 41, resp.DomainPriorities[model.DomainSocial].Score)
	assert.Equal(t, 20, resp.DomainPriorities[model.DomainHealth].Score)
	assert.Equal(t, 12, resp.DomainPriorities[model.DomainExploration].Score)

	// The hard boundary fires for both active non-commerce pairings.
	require.Len(t, resp.ConflictsDetected, 2)
	for _, c := range resp.ConflictsDetected {
		assert.Equal(t, model.ConflictBoundariesVsOptimization, c.Type)
		assert.Equal(t, 90, c.Severity)
	}

	// Commerce outscored everything, yet it is suppressed, not primary.
	assert.Equal(t, model.DomainSocial, resp.Plan.PrimaryDomain)
	assert.Equal(t, []model.Domain{model.DomainHealth}, resp.Plan.SecondaryDomains)
	require.Len(t, resp.Plan.SuppressedDomains, 1)
	assert.Equal(t, model.DomainCommerce, resp.Plan.SuppressedDomains[0].Domain)
	assert.Equal(t, "user boundaries precede optimization", resp.Plan.SuppressedDomains[0].Reason)

	assert.Contains(t, resp.Plan.PriorityTags, model.TagCommerceSuppressed)
	assert.False(t, resp.Plan.Constraints.AllowCommerce)
}

func TestResolve_CriticalHealthBeatsCommerceOverride(t *testing.T) {
	e := newTestEngine()
	override := model.DomainCommerce
	req := resolveCtx(criticalHealthContext())
	req.CurrentIntent = "buy"
	req.PriorityOverride = &override
	resp := mustResolve(e, req)

	require.True(t, resp.OK)

	// The override lifts commerce to 83, the safety override lifts health
	// to a clamped 100.
	assert.Equal(t, 100, resp.DomainPriorities[model.DomainHealth].Score)
	assert.Equal(t, 83, resp.DomainPriorities[model.DomainCommerce].Score)

	require.Len(t, resp.ConflictsDetected, 1)
	assert.Equal(t, model.ConflictHealthVsMonetization, resp.ConflictsDetected[0].Type)
	assert.Equal(t, 70, resp.ConflictsDetected[0].Severity)

	// A suppressed domain cannot be primary, override or not.
	assert.Equal(t, model.DomainHealth, resp.Plan.PrimaryDomain)
	require.Len(t, resp.Plan.SuppressedDomains, 1)
	assert.Equal(t, model.DomainCommerce, resp.Plan.SuppressedDomains[0].Domain)
	assert.Contains(t, resp.Plan.PriorityTags, model.TagSafetyCritical)
	assert.False(t, resp.Plan.Constraints.AllowCommerce)
}

func TestResolve_DegradedHealthSuppressesActiveCommerce(t *testing.T) {
	e := newTestEngine()
	resp := mustResolve(e, resolveCtx(&model.FusionContext{
		HealthCapacity: &model.HealthCapacity{
			EnergyLevel:  25,
			Availability: model.AvailabilityHigh,
			Confidence:   90,
		},
		Financial: &model.FinancialContext{
			CommerceIntent:       model.IntentExplicit,
			MonetizationEligible: true,
			BudgetSensitivity:    model.BudgetMedium,
			Confidence:           90,
		},
	}))

	require.True(t, resp.OK)

	// The low-energy risk flag on the health signal, next to a commerce
	// activation above 30, escalates the conflict past the urgency tier.
	require.Len(t, resp.ConflictsDetected, 1)
	conflict := resp.ConflictsDetected[0]
	assert.Equal(t, model.ConflictHealthVsMonetization, conflict.Type)
	assert.Equal(t, 80, conflict.Severity)
	assert.Equal(t, []string{"commerce_activation_over_30", model.RiskLowEnergy}, conflict.Evidence)

	require.Len(t, resp.Plan.ResolvedConflicts, 1)
	assert.Equal(t, model.StrategySuppressEntirely, resp.Plan.ResolvedConflicts[0].Strategy)
	assert.Equal(t, model.DomainHealth, resp.Plan.ResolvedConflicts[0].Winner)

	assert.Equal(t, model.DomainHealth, resp.Plan.PrimaryDomain)
	require.Len(t, resp.Plan.SuppressedDomains, 1)
	assert.Equal(t, model.DomainCommerce, resp.Plan.SuppressedDomains[0].Domain)
	assert.False(t, resp.Plan.Constraints.AllowCommerce)
}

func TestResolve_EmptyContextFallsBackToExploration(t *testing.T) {
	e := newTestEngine()
	resp := mustResolve(e, Request{UserID: "u1", TenantID: "t1"})

	require.True(t, resp.OK)
	assert.Equal(t, 33, resp.DomainPriorities[model.DomainExploration].Score)
	assert.Equal(t, model.DomainExploration, resp.Plan.PrimaryDomain)
	assert.Empty(t, resp.Plan.SecondaryDomains)
	assert.Empty(t, resp.ConflictsDetected)
	assert.Equal(t, []model.PriorityTag{model.TagCommerceSuppressed, model.TagExplorationOnly}, resp.Plan.PriorityTags)
	assert.Equal(t, "exploration_discovery leads; no conflicts detected.", resp.Plan.Rationale)
}

func TestResolve_NothingActiveStillYieldsAPlan(t *testing.T) {
	// Raise the activation threshold past the default exploration score:
	// the plan still names a primary.
	cfg, err := config.Parse([]byte("activation_threshold: 40\n"))
	require.NoError(t, err)
	e := New(cfg, WithClock(func() time.Time { return testNow }))

	resp := mustResolve(e, Request{UserID: "u1", TenantID: "t1"})

	require.True(t, resp.OK)
	assert.Equal(t, model.DomainExploration, resp.Plan.PrimaryDomain)
	assert.Empty(t, resp.Plan.SecondaryDomains)
	assert.Empty(t, resp.ConflictsDetected)
}

func TestResolve_CommerceOptOutIsAbsolute(t *testing.T) {
	e := newTestEngine()
	override := model.DomainCommerce
	resp := mustResolve(e, Request{
		UserID: "u1", TenantID: "t1",
		CurrentIntent:    "buy",
		PriorityOverride: &override,
		Context: &model.FusionContext{
			Financial: &model.FinancialContext{
				CommerceIntent:         model.IntentExplicit,
				MonetizationEligible:   true,
				RecentPurchaseActivity: true,
				BudgetSensitivity:      model.BudgetLow,
				Confidence:             95,
			},
			Boundaries: &model.BoundariesConsent{CommerceOptedOut: true},
		},
	})

	require.True(t, resp.OK)

	var commerceSig model.DomainSignal
	for _, s := range resp.DomainSignals {
		if s.Domain == model.DomainCommerce {
			commerceSig = s
		}
	}
	assert.Equal(t, 0, commerceSig.ActivationScore)
	assert.Equal(t, 100, commerceSig.Confidence)
	assert.True(t, commerceSig.HasRiskFlag(model.RiskCommerceOptedOut))

	// Even the user override cannot resurrect an opted-out commerce: the
	// score stays suppressed and the plan excludes the domain entirely.
	commerce := resp.DomainPriorities[model.DomainCommerce]
	assert.True(t, commerce.Suppressed)
	assert.Equal(t, "commerce_opted_out", commerce.SuppressionReason)
	assert.Equal(t, 0, commerce.Score)

	assert.Equal(t, model.DomainExploration, resp.Plan.PrimaryDomain)
	require.Len(t, resp.Plan.SuppressedDomains, 1)
	assert.Equal(t, model.DomainCommerce, resp.Plan.SuppressedDomains[0].Domain)
	assert.False(t, resp.Plan.Constraints.AllowCommerce)
}

func TestResolve_ConsentDenialSuppresses(t *testing.T) {
	e := newTestEngine()
	resp := mustResolve(e, resolveCtx(&model.FusionContext{
		Social: &model.SocialContext{
			PendingObligations: []model.Obligation{
				{Description: "wedding", Urgency: model.UrgencyHigh},
			},
			ConnectionState: model.ConnectionSeeking,
			Confidence:      90,
		},
		Boundaries: &model.BoundariesConsent{
			DomainConsent: map[model.Domain]bool{model.DomainSocial: false},
		},
	}))

	require.True(t, resp.OK)

	social := resp.DomainPriorities[model.DomainSocial]
	assert.True(t, social.Suppressed)
	assert.Equal(t, "consent_denied", social.SuppressionReason)
	assert.Equal(t, 0, social.Score)

	require.Len(t, resp.Plan.SuppressedDomains, 1)
	assert.Equal(t, model.DomainSocial, resp.Plan.SuppressedDomains[0].Domain)
	assert.Equal(t, model.DomainExploration, resp.Plan.PrimaryDomain)
}

func TestResolve_Deterministic(t *testing.T) {
	e := newTestEngine()
	req := resolveCtx(hardBoundaryContext())
	req.CurrentIntent = "buy shoes"

	a := mustResolve(e, req)
	b := mustResolve(e, req)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb), "identical inputs must serialize identically")
}

func TestResolve_Metadata(t *testing.T) {
	clock := testutil.NewFixedClock(testNow, 5*time.Millisecond)
	e := New(config.Default(), WithClock(clock.Now))
	override := model.DomainHealth
	req := Request{UserID: "u-1", TenantID: "t-1", CurrentIntent: "rest", PriorityOverride: &override}
	resp := mustResolve(e, req)

	require.NotNil(t, resp.Metadata)
	assert.Equal(t, testNow, resp.Metadata.ComputedAt)
	assert.Equal(t, model.MustInputHash("u-1", "t-1", "rest", &override), resp.Metadata.InputHash)
	assert.Equal(t, []string{
		"signal_computation",
		"priority_scoring",
		"conflict_detection",
		"conflict_resolution",
		"plan_generation",
	}, resp.Metadata.RulesApplied)
	assert.Equal(t, int64(5), resp.Metadata.DurationMS)
	assert.Equal(t, config.Default().StabilityWindowSeconds, resp.StabilityWindowSeconds)
}

func TestResolve_EmitsTraceEvent(t *testing.T) {
	emitter := &captureEmitter{}
	e := newTestEngine(WithEmitter(emitter))
	resp := mustResolve(e, resolveCtx(restVsSocialContext()))

	require.True(t, resp.OK)
	require.Len(t, emitter.events, 1)
	ev := emitter.events[0]
	assert.Equal(t, "arbitration.resolved", ev.eventType)
	assert.Equal(t, "ok", ev.status)
	assert.Equal(t, resp.Metadata.InputHash, ev.payload["input_hash"])
	assert.Equal(t, string(model.DomainHealth), ev.payload["primary_domain"])
	assert.Equal(t, 1, ev.payload["conflict_count"])
}

func TestResolve_AuditRowAfterPlan(t *testing.T) {
	sink := &captureSink{ok: true}
	e := newTestEngine(WithAuditSink(sink))
	resp := mustResolve(e, resolveCtx(hardBoundaryContext()))

	require.True(t, resp.OK)
	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, resp.Metadata.InputHash, entry.InputHash)
	assert.Equal(t, "u-test", entry.UserID)
	assert.Equal(t, "t-test", entry.TenantID)
	assert.Equal(t, model.DomainSocial, entry.PrimaryDomain)
	assert.Equal(t, []model.Domain{model.DomainCommerce}, entry.Suppressed)
	assert.Equal(t, 2, entry.ConflictCount)

	var stored Response
	require.NoError(t, json.Unmarshal(entry.Response, &stored))
	assert.Equal(t, resp.Plan.PrimaryDomain, stored.Plan.PrimaryDomain)
}

func TestResolve_AuditRejectionDoesNotFailResolve(t *testing.T) {
	sink := &captureSink{ok: false}
	e := newTestEngine(WithAuditSink(sink))
	resp := mustResolve(e, resolveCtx(restVsSocialContext()))
	assert.True(t, resp.OK)
}

func TestResolve_EmitterPanicDoesNotFailResolve(t *testing.T) {
	e := newTestEngine(WithEmitter(panicEmitter{}))
	resp := mustResolve(e, resolveCtx(restVsSocialContext()))

	require.True(t, resp.OK)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, model.DomainHealth, resp.Plan.PrimaryDomain)
}

func TestResolve_ConcurrentUse(t *testing.T) {
	e := newTestEngine()
	req := resolveCtx(criticalHealthContext())

	done := make(chan *Response, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- e.Resolve(context.Background(), req)
		}()
	}
	for i := 0; i < 8; i++ {
		resp := <-done
		require.True(t, resp.OK)
		assert.Equal(t, model.DomainHealth, resp.Plan.PrimaryDomain)
	}
}

func TestFastTags(t *testing.T) {
	e := newTestEngine()
	tags, err := e.FastTags(context.Background(), resolveCtx(restVsSocialContext()))
	require.NoError(t, err)
	assert.Equal(t, []model.PriorityTag{model.TagCommerceSuppressed, model.TagRestMode}, tags)
}

func TestResolutionError(t *testing.T) {
	inner := &ResolutionError{Code: CodeResolutionFailed, Message: "signal computation", Err: context.Canceled}
	assert.Contains(t, inner.Error(), "RESOLUTION_FAILED")
	assert.Contains(t, inner.Error(), "signal computation")
	assert.ErrorIs(t, inner, context.Canceled)
	assert.True(t, IsResolutionError(inner))
	assert.False(t, IsResolutionError(context.Canceled))
}
