package engine

import (
	"fmt"
	"math"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
)

// scoreEnv carries the cross-domain facts the scoring rules read.
type scoreEnv struct {
	cfg          config.Config
	availability model.AvailabilityTier
	override     *model.Domain
}

// ruleOutcome is one scoring rule's verdict for one signal.
// A suppressing outcome short-circuits the fold: no later rule runs.
type ruleOutcome struct {
	applied        bool
	delta          float64
	reason         string
	suppress       bool
	suppressReason string
}

// scoringRule is a pure adjustment function with a stable rule ID.
type scoringRule struct {
	id   string
	eval func(sig model.DomainSignal, env scoreEnv, running float64) ruleOutcome
}

// scoringRules is the fixed, load-bearing adjustment order. Later rules act
// on the output of earlier ones; reordering changes behavior.
//
// The consent override sits second, before every other domain-specific
// business rule for the same domain, and is absolute: nothing after it can
// resurrect a suppressed score.
var scoringRules = []scoringRule{
	{
		id: "health_safety_override",
		eval: func(sig model.DomainSignal, _ scoreEnv, _ float64) ruleOutcome {
			if sig.Domain == model.DomainHealth && sig.Urgency == model.UrgencyCritical {
				return ruleOutcome{applied: true, delta: 50, reason: "critical health urgency"}
			}
			return ruleOutcome{}
		},
	},
	{
		id: "consent_override",
		eval: func(sig model.DomainSignal, _ scoreEnv, _ float64) ruleOutcome {
			if sig.HasRiskFlag(model.RiskConsentDenied) {
				return ruleOutcome{suppress: true, suppressReason: "consent_denied"}
			}
			// Commerce opt-out is the same class of absolute: the user
			// said no, and not even an explicit override resurrects it.
			if sig.HasRiskFlag(model.RiskCommerceOptedOut) {
				return ruleOutcome{suppress: true, suppressReason: "commerce_opted_out"}
			}
			return ruleOutcome{}
		},
	},
	{
		id: "monetization_floor",
		eval: func(sig model.DomainSignal, _ scoreEnv, running float64) ruleOutcome {
			if sig.Domain == model.DomainCommerce && !sig.HasSource(model.SourceExplicitIntent) {
				return ruleOutcome{applied: true, delta: flooredDelta(running, -30), reason: "no explicit commerce intent"}
			}
			return ruleOutcome{}
		},
	},
	{
		id: "low_availability_suppression",
		eval: func(sig model.DomainSignal, env scoreEnv, running float64) ruleOutcome {
			if sig.Domain != model.DomainHealth && env.availability.Constrained() {
				return ruleOutcome{applied: true, delta: flooredDelta(running, -20), reason: "low overall availability"}
			}
			return ruleOutcome{}
		},
	},
	{
		id: "user_override",
		eval: func(sig model.DomainSignal, env scoreEnv, _ float64) ruleOutcome {
			if env.override != nil && *env.override == sig.Domain {
				return ruleOutcome{applied: true, delta: 40, reason: "user priority override"}
			}
			return ruleOutcome{}
		},
	},
	{
		id: "urgency_bonus",
		eval: func(sig model.DomainSignal, _ scoreEnv, _ float64) ruleOutcome {
			bonus := urgencyBonus[sig.Urgency]
			if bonus == 0 {
				return ruleOutcome{}
			}
			return ruleOutcome{applied: true, delta: bonus, reason: fmt.Sprintf("urgency %s", sig.Urgency)}
		},
	},
	{
		id: "confidence_discount",
		eval: func(sig model.DomainSignal, _ scoreEnv, running float64) ruleOutcome {
			delta := running * (1 - float64(sig.Confidence)/100) * -0.3
			if math.Abs(delta) <= 1 {
				return ruleOutcome{}
			}
			return ruleOutcome{applied: true, delta: delta, reason: "low confidence discount"}
		},
	},
}

var urgencyBonus = map[model.UrgencyTier]float64{
	model.UrgencyNone:     0,
	model.UrgencyLow:      5,
	model.UrgencyMedium:   10,
	model.UrgencyHigh:     20,
	model.UrgencyCritical: 30,
}

// flooredDelta limits a negative nominal delta so the running score never
// drops below zero mid-fold. The recorded delta is the effective one, so
// score always equals base plus the sum of recorded deltas.
func flooredDelta(running, nominal float64) float64 {
	if running+nominal < 0 {
		return -running
	}
	return nominal
}

// scoreSignals converts every signal into a priority score.
func scoreSignals(signals []model.DomainSignal, env scoreEnv) map[model.Domain]model.DomainPriorityScore {
	scores := make(map[model.Domain]model.DomainPriorityScore, len(signals))
	for _, sig := range signals {
		scores[sig.Domain] = scoreSignal(sig, env)
	}
	return scores
}

// scoreSignal folds the ordered scoring rules over one signal's base score.
func scoreSignal(sig model.DomainSignal, env scoreEnv) model.DomainPriorityScore {
	base := float64(sig.ActivationScore) * float64(env.cfg.Weight(sig.Domain)) / 100
	running := base
	var adjustments []model.Adjustment

	for _, rule := range scoringRules {
		out := rule.eval(sig, env, running)
		if out.suppress {
			return model.DomainPriorityScore{
				Domain:            sig.Domain,
				Score:             0,
				BaseScore:         base,
				Adjustments:       adjustments,
				Suppressed:        true,
				SuppressionReason: out.suppressReason,
			}
		}
		if !out.applied || out.delta == 0 {
			continue
		}
		running += out.delta
		adjustments = append(adjustments, model.Adjustment{
			RuleID: rule.id,
			Reason: out.reason,
			Delta:  out.delta,
		})
	}

	return model.DomainPriorityScore{
		Domain:      sig.Domain,
		Score:       model.ClampScore(int(math.Round(running))),
		BaseScore:   base,
		Adjustments: adjustments,
	}
}
