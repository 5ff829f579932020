package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/attunehq/arbiter/internal/config"
	"github.com/attunehq/arbiter/internal/model"
)

// explorationOnlyFloor is the literal threshold in the exploration_only tag
// predicate. It is independent of the configurable activation threshold.
const explorationOnlyFloor = 30

// commerceSuppressedCeiling is the score below which commerce counts as
// suppressed for tagging purposes.
const commerceSuppressedCeiling = 10

// buildPlan assembles the final action plan from the scored domains and the
// conflict resolutions.
func buildPlan(
	env conflictEnv,
	resolutions []model.ConflictResolution,
	cfg config.Config,
	override *model.Domain,
) *model.ResolvedActionPlan {
	ranked := rankActive(env.scores, cfg.ActivationThreshold)

	suppressedBy := make(map[model.Domain]string)
	deferredBy := make(map[model.Domain]model.DeferredDomain)
	for _, res := range resolutions {
		switch res.Strategy {
		case model.StrategySuppressEntirely:
			suppressedBy[res.Deferred] = res.Rationale
		case model.StrategyDeferLowerPriority:
			dd := model.DeferredDomain{Domain: res.Deferred, Reason: res.Rationale}
			if res.Conflict.Type == model.ConflictLearningVsAvailability {
				dd.SuggestedDelayMinutes = learningDeferDelayMinutes
			}
			deferredBy[res.Deferred] = dd
		case model.StrategySplitAcrossTime:
			deferredBy[res.TimeSplit.LaterDomain] = model.DeferredDomain{
				Domain:                res.TimeSplit.LaterDomain,
				Reason:                res.Rationale,
				SuggestedDelayMinutes: res.TimeSplit.DelayMinutes,
			}
		}
	}

	// Eligible order: ranked minus anything a resolution pushed out.
	eligible := make([]model.Domain, 0, len(ranked))
	for _, d := range ranked {
		if _, out := suppressedBy[d]; out {
			continue
		}
		if _, out := deferredBy[d]; out {
			continue
		}
		eligible = append(eligible, d)
	}

	primary := pickPrimary(eligible, env.scores, suppressedBy, override)

	var secondary []model.Domain
	for _, d := range eligible {
		if d == primary {
			continue
		}
		if len(secondary) >= cfg.MaxSecondaryDomains {
			break
		}
		secondary = append(secondary, d)
	}

	plan := &model.ResolvedActionPlan{
		PrimaryDomain:     primary,
		SecondaryDomains:  secondary,
		DeferredDomains:   collectDeferred(deferredBy),
		SuppressedDomains: collectSuppressed(env.scores, suppressedBy),
		PriorityTags:      deriveTags(env, suppressedBy),
		ResolvedConflicts: resolutions,
		Constraints:       deriveConstraints(env, suppressedBy),
	}
	plan.Rationale = rationale(plan)
	return plan
}

// rankActive returns the active, non-suppressed domains sorted by score
// descending, ties broken by lexical domain name ascending. The sort is the
// reproducibility anchor: identical inputs rank identically, always.
func rankActive(scores map[model.Domain]model.DomainPriorityScore, threshold int) []model.Domain {
	var ranked []model.Domain
	for _, d := range model.AllDomains {
		if isActive(scores[d], threshold) {
			ranked = append(ranked, d)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i]].Score, scores[ranked[j]].Score
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// pickPrimary selects the leading domain: the user override when present
// and not suppressed, else the top-ranked domain, else exploration as the
// universal fallback.
func pickPrimary(
	eligible []model.Domain,
	scores map[model.Domain]model.DomainPriorityScore,
	suppressedBy map[model.Domain]string,
	override *model.Domain,
) model.Domain {
	if override != nil {
		d := *override
		_, resolutionSuppressed := suppressedBy[d]
		if !scores[d].Suppressed && !resolutionSuppressed {
			return d
		}
	}
	if len(eligible) > 0 {
		return eligible[0]
	}
	return model.DomainExploration
}

func collectDeferred(deferredBy map[model.Domain]model.DeferredDomain) []model.DeferredDomain {
	if len(deferredBy) == 0 {
		return nil
	}
	out := make([]model.DeferredDomain, 0, len(deferredBy))
	for _, d := range model.AllDomains {
		if dd, ok := deferredBy[d]; ok {
			out = append(out, dd)
		}
	}
	return out
}

// collectSuppressed merges scoring-level suppressions (consent) with
// resolution-level suppressions, in lexical domain order.
func collectSuppressed(
	scores map[model.Domain]model.DomainPriorityScore,
	suppressedBy map[model.Domain]string,
) []model.SuppressedDomain {
	var out []model.SuppressedDomain
	for _, d := range model.AllDomains {
		if s := scores[d]; s.Suppressed {
			out = append(out, model.SuppressedDomain{Domain: d, Reason: s.SuppressionReason})
			continue
		}
		if reason, ok := suppressedBy[d]; ok {
			out = append(out, model.SuppressedDomain{Domain: d, Reason: reason})
		}
	}
	return out
}

// deriveTags applies the fixed tag predicates to the scored snapshot.
func deriveTags(env conflictEnv, suppressedBy map[model.Domain]string) []model.PriorityTag {
	var tags []model.PriorityTag

	commerce := env.scores[model.DomainCommerce]
	_, commerceOut := suppressedBy[model.DomainCommerce]
	if commerce.Score < commerceSuppressedCeiling || commerce.Suppressed || commerceOut {
		tags = append(tags, model.TagCommerceSuppressed)
	}

	hc := env.ctx.HealthCapacity
	if hc.EnergyLevel < 30 || hc.Availability == model.AvailabilityMinimal {
		tags = append(tags, model.TagRestMode)
	}

	if explorationOnly(env.scores) {
		tags = append(tags, model.TagExplorationOnly)
	}

	if hc.MaxSeverity() == model.SeverityCritical {
		tags = append(tags, model.TagSafetyCritical)
	}

	if env.ctx.Boundaries.DoNotDisturb {
		tags = append(tags, model.TagDoNotDisturb)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// explorationOnly reports whether exploration is the only domain above the
// exploration-only floor.
func explorationOnly(scores map[model.Domain]model.DomainPriorityScore) bool {
	if scores[model.DomainExploration].Score <= explorationOnlyFloor {
		return false
	}
	for _, d := range model.AllDomains {
		if d == model.DomainExploration {
			continue
		}
		if scores[d].Score > explorationOnlyFloor {
			return false
		}
	}
	return true
}

// deriveConstraints computes the behavioral limits attached to the plan.
// At most one high-effort domain is a hard rule, not a tunable.
func deriveConstraints(env conflictEnv, suppressedBy map[model.Domain]string) model.Constraints {
	ctx := env.ctx
	hc := ctx.HealthCapacity
	b := ctx.Boundaries

	commerce := env.scores[model.DomainCommerce]
	_, commerceOut := suppressedBy[model.DomainCommerce]
	allowCommerce := b.ConsentFor(model.DomainCommerce) &&
		!b.CommerceOptedOut &&
		!b.DoNotDisturb &&
		!commerce.Suppressed &&
		!commerceOut

	allowProactive := !b.DoNotDisturb && hc.Availability != model.AvailabilityMinimal

	depth := model.DepthModerate
	switch {
	case hc.EnergyLevel < 30 || hc.Availability == model.AvailabilityMinimal || ctx.Learning.AbsorptionCapacity < 30:
		depth = model.DepthLight
	case hc.EnergyLevel > 70 && ctx.Learning.AbsorptionCapacity > 70:
		depth = model.DepthDeep
	}

	pacing := model.PacingSteady
	switch depth {
	case model.DepthLight:
		pacing = model.PacingGentle
	case model.DepthDeep:
		pacing = model.PacingBrisk
	}

	return model.Constraints{
		MaxHighEffortDomains: 1,
		AllowCommerce:        allowCommerce,
		AllowProactive:       allowProactive,
		SuggestedDepth:       depth,
		SuggestedPacing:      pacing,
	}
}

// rationale renders the short templated audit sentence. Never freeform.
func rationale(plan *model.ResolvedActionPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s leads", plan.PrimaryDomain)
	if len(plan.SecondaryDomains) > 0 {
		names := make([]string, len(plan.SecondaryDomains))
		for i, d := range plan.SecondaryDomains {
			names[i] = string(d)
		}
		fmt.Fprintf(&sb, ", supported by %s", strings.Join(names, ", "))
	}
	switch n := len(plan.ResolvedConflicts); n {
	case 0:
		sb.WriteString("; no conflicts detected")
	case 1:
		sb.WriteString("; 1 conflict resolved")
	default:
		fmt.Fprintf(&sb, "; %d conflicts resolved", n)
	}
	sb.WriteString(".")
	return sb.String()
}
