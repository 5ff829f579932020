package engine

import (
	"fmt"

	"github.com/attunehq/arbiter/internal/model"
)

// Suggested delays, in minutes, attached to time-based resolutions.
const (
	socialSplitDelayMinutes   = 120
	learningDeferDelayMinutes = 60
)

// resolverFunc maps one detected conflict to its resolution.
type resolverFunc func(c model.DomainConflict, env conflictEnv) model.ConflictResolution

// strategyTable maps each conflict type to its fixed resolution policy.
// The mapping encodes the non-negotiable hierarchy: health and safety win
// over monetization, hard boundaries win over optimization. Strategy choice
// is by type, never by severity comparison alone.
var strategyTable = map[model.ConflictType]resolverFunc{
	model.ConflictHealthVsMonetization:     resolveSuppressCommerce,
	model.ConflictBoundariesVsOptimization: resolveSuppressCommerce,
	model.ConflictRestVsSocial:             resolveRestVsSocial,
	model.ConflictLearningVsAvailability:   resolveLearningVsAvailability,
	model.ConflictGoalsVsDesire:            resolveGoalsVsDesire,
}

// resolveConflicts picks a resolution per conflict, preserving detection
// order. Unknown conflict types fall back to higher-score-wins.
func resolveConflicts(conflicts []model.DomainConflict, env conflictEnv) []model.ConflictResolution {
	if len(conflicts) == 0 {
		return nil
	}
	resolutions := make([]model.ConflictResolution, 0, len(conflicts))
	for _, c := range conflicts {
		resolve, ok := strategyTable[c.Type]
		if !ok {
			resolve = resolveByScore
		}
		resolutions = append(resolutions, resolve(c, env))
	}
	return resolutions
}

// resolveSuppressCommerce handles the two absolute hierarchies: the
// non-commerce domain wins and commerce is suppressed outright.
func resolveSuppressCommerce(c model.DomainConflict, _ conflictEnv) model.ConflictResolution {
	winner, loser := c.Domains[0], c.Domains[1]
	if winner == model.DomainCommerce {
		winner, loser = loser, winner
	}
	rationale := "health and safety precede monetization"
	if c.Type == model.ConflictBoundariesVsOptimization {
		rationale = "user boundaries precede optimization"
	}
	return model.ConflictResolution{
		Conflict:  c,
		Strategy:  model.StrategySuppressEntirely,
		Winner:    winner,
		Deferred:  loser,
		Rationale: rationale,
	}
}

// resolveRestVsSocial reframes when an obligation is truly urgent, otherwise
// splits the timeline: rest now, social later.
func resolveRestVsSocial(c model.DomainConflict, env conflictEnv) model.ConflictResolution {
	if env.ctx.Social.HasUrgentObligation() {
		return model.ConflictResolution{
			Conflict:    c,
			Strategy:    model.StrategyReframeSuggestion,
			Winner:      model.DomainSocial,
			ReframeHint: "honor the urgent obligation, but keep it brief and low-effort",
			Rationale:   "an urgent obligation outranks rest for the moment",
		}
	}
	return model.ConflictResolution{
		Conflict: c,
		Strategy: model.StrategySplitAcrossTime,
		TimeSplit: &model.TimeSplit{
			NowDomain:    model.DomainHealth,
			LaterDomain:  model.DomainSocial,
			DelayMinutes: socialSplitDelayMinutes,
		},
		Rationale: "rest now, social later",
	}
}

// resolveLearningVsAvailability defers learning under minimal availability,
// reframes toward lighter content otherwise.
func resolveLearningVsAvailability(c model.DomainConflict, env conflictEnv) model.ConflictResolution {
	if env.ctx.HealthCapacity.Availability == model.AvailabilityMinimal {
		return model.ConflictResolution{
			Conflict:  c,
			Strategy:  model.StrategyDeferLowerPriority,
			Winner:    model.DomainHealth,
			Deferred:  model.DomainLearning,
			Rationale: "learning deferred until availability recovers",
		}
	}
	return model.ConflictResolution{
		Conflict:    c,
		Strategy:    model.StrategyReframeSuggestion,
		Winner:      model.DomainLearning,
		ReframeHint: "suggest lighter-weight content",
		Rationale:   "learning continues at reduced depth",
	}
}

// resolveGoalsVsDesire merges rather than picking a winner: exploration is
// framed as serving the long-term goals it appeared to compete with.
func resolveGoalsVsDesire(c model.DomainConflict, _ conflictEnv) model.ConflictResolution {
	return model.ConflictResolution{
		Conflict:    c,
		Strategy:    model.StrategyMergeCompatible,
		ReframeHint: "frame exploration as supporting the active goals",
		Rationale:   "exploration and goals are compatible when aligned",
	}
}

// resolveByScore is the fallback for unmatched conflict types: higher score
// wins, ties break lexically, the loser is deferred.
func resolveByScore(c model.DomainConflict, env conflictEnv) model.ConflictResolution {
	a, b := c.Domains[0], c.Domains[1]
	winner, loser := a, b
	if env.scores[b].Score > env.scores[a].Score {
		winner, loser = b, a
	} else if env.scores[a].Score == env.scores[b].Score && b < a {
		winner, loser = b, a
	}
	return model.ConflictResolution{
		Conflict:  c,
		Strategy:  model.StrategyDeferLowerPriority,
		Winner:    winner,
		Deferred:  loser,
		Rationale: fmt.Sprintf("%s outranks %s", winner, loser),
	}
}
