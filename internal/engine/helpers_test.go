package engine

import (
	"context"
	"time"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
)

// testNow is the fixed wall clock used across engine tests.
var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(config.Default(), opts...)
}

func resolveCtx(ctx *model.FusionContext) Request {
	return Request{UserID: "u-test", TenantID: "t-test", Context: ctx}
}

// restVsSocialContext: exhausted user, low availability, one urgent social
// obligation. Health scores 63, social 20, everything else below threshold.
func restVsSocialContext() *model.FusionContext {
	return &model.FusionContext{
		HealthCapacity: &model.HealthCapacity{
			EnergyLevel:  20,
			Availability: model.AvailabilityLow,
			Confidence:   90,
		},
		Social: &model.SocialContext{
			PendingObligations: []model.Obligation{
				{Description: "family dinner", Urgency: model.UrgencyHigh},
			},
			ConnectionState: model.ConnectionContent,
			Confidence:      90,
		},
	}
}

// hardBoundaryContext: explicit commerce intent against a hard boundary.
// Commerce scores 45, social 41, health 20, exploration 12.
func hardBoundaryContext() *model.FusionContext {
	return &model.FusionContext{
		HealthCapacity: &model.HealthCapacity{
			EnergyLevel:  38,
			Availability: model.AvailabilityHigh,
			Confidence:   90,
		},
		Social: &model.SocialContext{
			PendingObligations: []model.Obligation{
				{Description: "reply to group chat", Urgency: model.UrgencyMedium},
			},
			ConnectionState: model.ConnectionSeeking,
			Confidence:      90,
		},
		Financial: &model.FinancialContext{
			CommerceIntent:       model.IntentExplicit,
			MonetizationEligible: true,
			BudgetSensitivity:    model.BudgetMedium,
			Confidence:           90,
		},
		Boundaries: &model.BoundariesConsent{
			ActiveBoundaries: []model.Boundary{
				{Description: "no purchases this month", Enforcement: model.EnforcementHard},
			},
		},
	}
}

// criticalHealthContext: a critical safety flag alongside explicit commerce
// intent. Health scores 100, commerce 83 when the user overrides to commerce.
func criticalHealthContext() *model.FusionContext {
	return &model.FusionContext{
		HealthCapacity: &model.HealthCapacity{
			EnergyLevel:  45,
			Availability: model.AvailabilityHigh,
			SafetyFlags: []model.SafetyFlag{
				{Name: "chest_pain", Severity: model.SeverityCritical},
			},
			Confidence: 90,
		},
		Financial: &model.FinancialContext{
			CommerceIntent:       model.IntentExplicit,
			MonetizationEligible: true,
			BudgetSensitivity:    model.BudgetMedium,
			Confidence:           90,
		},
	}
}

func mustResolve(e *Engine, req Request) *Response {
	return e.Resolve(context.Background(), req)
}

// captureEmitter records every emitted event for assertions.
type captureEmitter struct {
	events []capturedEvent
}

type capturedEvent struct {
	eventType string
	status    string
	message   string
	payload   map[string]any
}

func (c *captureEmitter) Emit(eventType, status, message string, payload map[string]any) {
	c.events = append(c.events, capturedEvent{eventType, status, message, payload})
}

// panicEmitter always panics; used to prove emission cannot break a resolve.
type panicEmitter struct{}

func (panicEmitter) Emit(string, string, string, map[string]any) {
	panic("emitter exploded")
}

// captureSink records audit entries and reports a configurable verdict.
type captureSink struct {
	entries []AuditEntry
	ok      bool
}

func (c *captureSink) Store(entry AuditEntry) bool {
	c.entries = append(c.entries, entry)
	return c.ok
}
