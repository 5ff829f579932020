package engine

import (
	"context"

	"github.com/attunehq/arbiter/internal/model"
)

// Decision is the result of a single-domain point check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Point-check denial reasons.
const (
	ReasonConsentDenied       = "consent_denied"
	ReasonCommerceOptedOut    = "commerce_opted_out"
	ReasonDoNotDisturb        = "do_not_disturb"
	ReasonMinimalAvailability = "minimal_availability"
)

// IsDomainActionAllowed re-evaluates the absolute gates for a single domain
// without running the full pipeline: consent, commerce opt-out, do not
// disturb, and minimal availability. Health is exempt from the availability
// and do-not-disturb gates; rest never needs permission.
func (e *Engine) IsDomainActionAllowed(domain model.Domain, req Request) Decision {
	ctx := req.Context.Normalized()
	b := ctx.Boundaries

	if !b.ConsentFor(domain) {
		return Decision{Allowed: false, Reason: ReasonConsentDenied}
	}
	if domain == model.DomainCommerce && b.CommerceOptedOut {
		return Decision{Allowed: false, Reason: ReasonCommerceOptedOut}
	}
	if domain != model.DomainHealth {
		if b.DoNotDisturb {
			return Decision{Allowed: false, Reason: ReasonDoNotDisturb}
		}
		if ctx.HealthCapacity.Availability == model.AvailabilityMinimal {
			return Decision{Allowed: false, Reason: ReasonMinimalAvailability}
		}
	}
	return Decision{Allowed: true}
}

// FastTags is the lightweight entry point: it computes signals and scores
// and derives the priority tags, skipping conflict detection, resolution,
// and plan assembly.
func (e *Engine) FastTags(ctx context.Context, req Request) ([]model.PriorityTag, error) {
	normalized := req.Context.Normalized()
	signals, err := computeSignals(ctx, signalInput{ctx: normalized, intent: req.CurrentIntent})
	if err != nil {
		return nil, &ResolutionError{Code: CodeResolutionFailed, Message: "signal computation", Err: err}
	}

	scores := scoreSignals(signals, scoreEnv{
		cfg:          e.cfg,
		availability: normalized.HealthCapacity.Availability,
		override:     req.PriorityOverride,
	})

	signalsByDomain := make(map[model.Domain]model.DomainSignal, len(signals))
	for _, s := range signals {
		signalsByDomain[s.Domain] = s
	}
	env := conflictEnv{ctx: normalized, signals: signalsByDomain, scores: scores}
	return deriveTags(env, nil), nil
}
