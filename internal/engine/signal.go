package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/attunehq/arbiter/internal/model"
)

// signalInput is the normalized stage-1 input: a fusion context with every
// sub-record present plus the caller's declared intent.
type signalInput struct {
	ctx    *model.FusionContext
	intent string
}

// signalFunc maps the context to one domain's activation signal.
// Each function is pure and independent of the other four.
type signalFunc func(in signalInput) model.DomainSignal

// signalFuncs lists the per-domain rule functions in model.AllDomains order.
var signalFuncs = map[model.Domain]signalFunc{
	model.DomainCommerce:    commerceSignal,
	model.DomainExploration: explorationSignal,
	model.DomainHealth:      healthSignal,
	model.DomainLearning:    learningSignal,
	model.DomainSocial:      socialSignal,
}

// computeSignals evaluates all five domain rule functions concurrently.
// Results land in fixed slots indexed by model.AllDomains, so the output
// order is identical regardless of goroutine scheduling.
func computeSignals(ctx context.Context, in signalInput) ([]model.DomainSignal, error) {
	signals := make([]model.DomainSignal, len(model.AllDomains))

	g, _ := errgroup.WithContext(ctx)
	for i, d := range model.AllDomains {
		fn := signalFuncs[d]
		g.Go(func() error {
			signals[i] = fn(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return signals, nil
}

// applyConsent enforces the cross-cutting consent rule shared by every
// domain signal function: a denied consent forces activation to zero and
// marks the signal, no matter what the domain rules accumulated.
func applyConsent(sig model.DomainSignal, b *model.BoundariesConsent) model.DomainSignal {
	if b.ConsentFor(sig.Domain) {
		return sig
	}
	sig.ActivationScore = 0
	sig.Urgency = model.UrgencyNone
	sig.RiskFlags = model.SortedSet(append(sig.RiskFlags, model.RiskConsentDenied))
	return sig
}

// healthSignal scores the health_wellbeing domain's claim to attention.
func healthSignal(in signalInput) model.DomainSignal {
	hc := in.ctx.HealthCapacity
	score := 0
	urgency := model.UrgencyNone
	var flags, sources []string

	if weight := severityWeight(hc.SafetyFlags); weight > 0 {
		score += weight * 25
		sources = append(sources, model.SourceSafetyFlags)
		if hc.MaxSeverity() == model.SeverityCritical {
			urgency = model.UrgencyCritical
		}
	}

	switch {
	case hc.EnergyLevel < 30:
		score += 40
		flags = append(flags, model.RiskLowEnergy)
		sources = append(sources, model.SourceLowEnergy)
	case hc.EnergyLevel < 50:
		score += 20
		sources = append(sources, model.SourceLowEnergy)
	}

	switch hc.Availability {
	case model.AvailabilityMinimal:
		score += 30
		sources = append(sources, model.SourceAvailability)
	case model.AvailabilityLow:
		score += 15
		sources = append(sources, model.SourceAvailability)
	}

	if n := len(hc.ActiveConcerns); n > 0 {
		add := 10 * n
		if add > 30 {
			add = 30
		}
		score += add
		sources = append(sources, model.SourceActiveConcerns)
	}

	if hc.StressLevel != nil && *hc.StressLevel > 70 {
		score += 20
		sources = append(sources, model.SourceStress)
	}

	if in.ctx.Situational.TimeOfDay == model.TimeLateNight && hc.EnergyLevel < 50 {
		score += 25
		sources = append(sources, model.SourceLateNight)
	}

	if urgency != model.UrgencyCritical {
		switch {
		case hc.EnergyLevel < 30 && hc.Availability == model.AvailabilityMinimal:
			urgency = model.UrgencyHigh
		case hc.EnergyLevel < 30 || hc.Availability == model.AvailabilityMinimal:
			urgency = model.UrgencyMedium
		}
	}

	sig := model.DomainSignal{
		Domain:          model.DomainHealth,
		ActivationScore: model.ClampScore(score),
		Confidence:      hc.Confidence,
		Urgency:         urgency,
		RiskFlags:       model.SortedSet(flags),
		Sources:         model.SortedSet(sources),
	}
	return applyConsent(sig, in.ctx.Boundaries)
}

// severityWeight sums the severity scores of all active safety flags.
func severityWeight(flags []model.SafetyFlag) int {
	total := 0
	for _, f := range flags {
		total += f.Severity.Score()
	}
	return total
}

// socialSignal scores the social_relationships domain.
func socialSignal(in signalInput) model.DomainSignal {
	soc := in.ctx.Social
	score := 0
	urgency := model.UrgencyNone
	var flags, sources []string

	for _, o := range soc.PendingObligations {
		switch {
		case o.Urgency.AtLeast(model.UrgencyHigh):
			score += 25
		case o.Urgency == model.UrgencyMedium:
			score += 10
		}
		urgency = model.MaxUrgency(urgency, o.Urgency)
	}
	if len(soc.PendingObligations) > 0 {
		sources = append(sources, model.SourceObligations)
	}

	switch soc.ConnectionState {
	case model.ConnectionSeeking:
		score += 30
		sources = append(sources, model.SourceConnection)
	case model.ConnectionIsolated:
		score += 20
		flags = append(flags, model.RiskIsolation)
		sources = append(sources, model.SourceConnection)
	}

	if soc.CommunityScore > 70 && in.ctx.Situational.TimeOfDay == model.TimeEvening {
		score += 15
		sources = append(sources, model.SourceCommunity)
	}

	if in.ctx.Situational.DayType == model.DayWeekend {
		score += 10
		sources = append(sources, model.SourceWeekend)
	}

	sig := model.DomainSignal{
		Domain:          model.DomainSocial,
		ActivationScore: model.ClampScore(score),
		Confidence:      soc.Confidence,
		Urgency:         urgency,
		RiskFlags:       model.SortedSet(flags),
		Sources:         model.SortedSet(sources),
	}
	return applyConsent(sig, in.ctx.Boundaries)
}

// learningSignal scores the learning_growth domain.
func learningSignal(in signalInput) model.DomainSignal {
	learn := in.ctx.Learning
	score := 0
	urgency := model.UrgencyNone
	var flags, sources []string

	switch learn.SessionState {
	case model.SessionDeepFocus:
		score += 50
		urgency = model.UrgencyMedium
		sources = append(sources, model.SourceSession)
	case model.SessionActive:
		score += 30
		sources = append(sources, model.SourceSession)
	}

	high, other := 0, 0
	for _, g := range in.ctx.Goals.ActiveGoals {
		if g.Domain != model.DomainLearning {
			continue
		}
		if g.Priority == model.GoalPriorityHigh {
			high++
		} else {
			other++
		}
	}
	if high+other > 0 {
		score += 20*high + 10*other
		sources = append(sources, model.SourceGoals)
	}

	if learn.AbsorptionCapacity > 70 {
		score += 15
		sources = append(sources, model.SourceAbsorption)
	}

	if in.ctx.Situational.TimeOfDay == model.TimeMorning {
		score += 10
		sources = append(sources, model.SourceMorning)
	}

	if learn.AbsorptionCapacity < 30 {
		score -= 30
		flags = append(flags, model.RiskLowAbsorption)
	}
	if learn.SessionState == model.SessionFatigued {
		score -= 40
		flags = append(flags, model.RiskLearningFatigue)
	}

	sig := model.DomainSignal{
		Domain:          model.DomainLearning,
		ActivationScore: model.ClampScore(score),
		Confidence:      learn.Confidence,
		Urgency:         urgency,
		RiskFlags:       model.SortedSet(flags),
		Sources:         model.SortedSet(sources),
	}
	return applyConsent(sig, in.ctx.Boundaries)
}

// commerceActivationCap bounds commerce activation: commerce can never reach
// full activation from signals alone.
const commerceActivationCap = 60

// commerceSignal scores the commerce_monetization domain.
//
// HARD RULE: commerce opt-out is checked before any other commerce logic.
// An opted-out user yields zero activation at full confidence no matter
// what the financial signals say.
func commerceSignal(in signalInput) model.DomainSignal {
	b := in.ctx.Boundaries
	if b.CommerceOptedOut {
		sig := model.DomainSignal{
			Domain:          model.DomainCommerce,
			ActivationScore: 0,
			Confidence:      100,
			Urgency:         model.UrgencyNone,
			RiskFlags:       []string{model.RiskCommerceOptedOut},
		}
		return applyConsent(sig, b)
	}

	fin := in.ctx.Financial
	score := 0
	urgency := model.UrgencyNone
	var flags, sources []string

	switch fin.CommerceIntent {
	case model.IntentExplicit:
		score += 60
		urgency = model.UrgencyMedium
		sources = append(sources, model.SourceExplicitIntent)
	case model.IntentImplicit:
		score += 20
		sources = append(sources, model.SourceImplicitIntent)
	}

	if fin.MonetizationEligible {
		score += 10
		sources = append(sources, model.SourceMonetization)
	}
	if fin.RecentPurchaseActivity {
		score += 15
		sources = append(sources, model.SourceRecentPurchases)
	}
	if fin.BudgetSensitivity == model.BudgetHigh {
		score -= 20
		flags = append(flags, model.RiskBudgetSensitive)
	}

	if score < 0 {
		score = 0
	}
	if score > commerceActivationCap {
		score = commerceActivationCap
	}

	sig := model.DomainSignal{
		Domain:          model.DomainCommerce,
		ActivationScore: score,
		Confidence:      fin.Confidence,
		Urgency:         urgency,
		RiskFlags:       model.SortedSet(flags),
		Sources:         model.SortedSet(sources),
	}
	return applyConsent(sig, b)
}

// explorationConfidence is fixed: exploration is inherently uncertain.
const explorationConfidence = 50

// explorationSignal scores the exploration_discovery domain.
func explorationSignal(in signalInput) model.DomainSignal {
	hc := in.ctx.HealthCapacity
	score := 30
	var flags, sources []string
	sources = append(sources, model.SourceBaseline)

	if in.ctx.Learning.SessionState == model.SessionBrowsing {
		score += 20
		sources = append(sources, model.SourceSession)
	}

	if in.intent == "" || in.intent == "exploration" {
		score += 15
		sources = append(sources, model.SourceOpenIntent)
	}

	if hc.Availability == model.AvailabilityHigh {
		score += 10
		sources = append(sources, model.SourceAvailability)
	}

	if in.ctx.Situational.DayType == model.DayWeekend && in.ctx.Situational.TimeOfDay == model.TimeAfternoon {
		score += 10
		sources = append(sources, model.SourceWeekend)
	}

	if hc.EnergyLevel < 40 {
		score -= 20
		flags = append(flags, model.RiskLowEnergy)
	}

	if score < 0 {
		score = 0
	}
	if in.ctx.Boundaries.DoNotDisturb {
		score = 0
		flags = append(flags, model.RiskDoNotDisturb)
	}

	sig := model.DomainSignal{
		Domain:          model.DomainExploration,
		ActivationScore: model.ClampScore(score),
		Confidence:      explorationConfidence,
		Urgency:         model.UrgencyNone,
		RiskFlags:       model.SortedSet(flags),
		Sources:         model.SortedSet(sources),
	}
	return applyConsent(sig, in.ctx.Boundaries)
}
