package engine

import (
	"github.com/attunehq/arbiter/internal/model"
)

// conflictEnv carries everything a conflict predicate may inspect.
type conflictEnv struct {
	ctx     *model.FusionContext // normalized
	signals map[model.Domain]model.DomainSignal
	scores  map[model.Domain]model.DomainPriorityScore
}

// conflictRule enumerates the domain pairs one conflict type concerns and
// the predicate that grades its severity from contextual evidence.
// A zero severity means the conflict does not apply.
type conflictRule struct {
	conflictType model.ConflictType
	pairs        [][2]model.Domain
	severity     func(env conflictEnv) (severity int, description string, evidence []string)
}

// conflictTable is the fixed conflict-type registry, evaluated in order.
// New conflict types are additive: append a rule, no control flow changes.
var conflictTable = []conflictRule{
	{
		conflictType: model.ConflictHealthVsMonetization,
		pairs:        [][2]model.Domain{{model.DomainHealth, model.DomainCommerce}},
		severity:     healthVsMonetizationSeverity,
	},
	{
		conflictType: model.ConflictRestVsSocial,
		pairs:        [][2]model.Domain{{model.DomainHealth, model.DomainSocial}},
		severity:     restVsSocialSeverity,
	},
	{
		conflictType: model.ConflictBoundariesVsOptimization,
		pairs: [][2]model.Domain{
			{model.DomainHealth, model.DomainCommerce},
			{model.DomainSocial, model.DomainCommerce},
		},
		severity: boundariesVsOptimizationSeverity,
	},
	{
		conflictType: model.ConflictLearningVsAvailability,
		pairs:        [][2]model.Domain{{model.DomainHealth, model.DomainLearning}},
		severity:     learningVsAvailabilitySeverity,
	},
	{
		conflictType: model.ConflictGoalsVsDesire,
		pairs:        [][2]model.Domain{{model.DomainLearning, model.DomainExploration}},
		severity:     goalsVsDesireSeverity,
	},
	{
		conflictType: model.ConflictCapacityVsDemand,
		pairs:        [][2]model.Domain{{model.DomainSocial, model.DomainLearning}},
		severity:     capacityVsDemandSeverity,
	},
}

// detectConflicts walks the conflict table and surfaces every conflict whose
// domains are both active and whose severity meets the resolution threshold.
func detectConflicts(env conflictEnv, activationThreshold, resolutionThreshold int) []model.DomainConflict {
	var conflicts []model.DomainConflict
	for _, rule := range conflictTable {
		for _, pair := range rule.pairs {
			if !isActive(env.scores[pair[0]], activationThreshold) ||
				!isActive(env.scores[pair[1]], activationThreshold) {
				continue
			}
			severity, description, evidence := rule.severity(env)
			if severity < resolutionThreshold {
				continue
			}
			conflicts = append(conflicts, model.DomainConflict{
				Domains:     pair,
				Type:        rule.conflictType,
				Severity:    severity,
				Description: description,
				Evidence:    model.SortedSet(evidence),
			})
		}
	}
	return conflicts
}

// isActive reports whether a scored domain takes part in conflict detection.
func isActive(score model.DomainPriorityScore, threshold int) bool {
	return !score.Suppressed && score.Score >= threshold
}

func healthVsMonetizationSeverity(env conflictEnv) (int, string, []string) {
	healthSig := env.signals[model.DomainHealth]
	commerceSig := env.signals[model.DomainCommerce]

	if len(healthSig.RiskFlags) > 0 && commerceSig.ActivationScore > 30 {
		return 80, "commerce pressure while health capacity is degraded",
			append([]string{"commerce_activation_over_30"}, healthSig.RiskFlags...)
	}
	if healthSig.Urgency.AtLeast(model.UrgencyHigh) {
		return 70, "commerce pressure against an urgent health signal",
			[]string{"health_urgency_" + string(healthSig.Urgency)}
	}
	return 0, "", nil
}

func restVsSocialSeverity(env conflictEnv) (int, string, []string) {
	hc := env.ctx.HealthCapacity
	restNeeded := hc.EnergyLevel < 30 || hc.Availability.Constrained()
	if !restNeeded {
		return 0, "", nil
	}

	severity := 50
	evidence := []string{"rest_pressure"}
	if env.ctx.Social.HasUrgentObligation() {
		severity += 20
		evidence = append(evidence, "urgent_obligation")
	}
	return severity, "social obligations compete with a need for rest", evidence
}

func boundariesVsOptimizationSeverity(env conflictEnv) (int, string, []string) {
	b := env.ctx.Boundaries
	if b.HasHardBoundary() {
		return 90, "hard-enforced boundary against optimization pressure", []string{"hard_boundary"}
	}
	if len(b.ActiveBoundaries) > 0 {
		return 50, "soft boundary against optimization pressure", []string{"soft_boundary"}
	}
	return 0, "", nil
}

func learningVsAvailabilitySeverity(env conflictEnv) (int, string, []string) {
	hc := env.ctx.HealthCapacity
	switch {
	case hc.Availability == model.AvailabilityMinimal:
		return 75, "learning demand under minimal availability", []string{"minimal_availability"}
	case hc.Availability == model.AvailabilityLow && env.ctx.Learning.AbsorptionCapacity < 50:
		return 60, "learning demand under low availability and absorption", []string{"low_availability", "low_absorption"}
	}
	return 0, "", nil
}

func goalsVsDesireSeverity(env conflictEnv) (int, string, []string) {
	hasHighGoal := false
	for _, g := range env.ctx.Goals.ActiveGoals {
		if g.Domain == model.DomainExploration {
			// Exploration is goal-aligned, no tension.
			return 0, "", nil
		}
		if g.Priority == model.GoalPriorityHigh {
			hasHighGoal = true
		}
	}
	if !hasHighGoal {
		return 0, "", nil
	}
	return 55, "open-ended exploration competes with high-priority goals", []string{"high_priority_goals"}
}

func capacityVsDemandSeverity(env conflictEnv) (int, string, []string) {
	if env.ctx.HealthCapacity.EnergyLevel < 40 {
		return 65, "two demanding domains active on low energy", []string{"energy_below_40"}
	}
	return 0, "", nil
}
