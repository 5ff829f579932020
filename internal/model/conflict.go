package model

// ConflictType names a known incompatibility between two active domains.
type ConflictType string

const (
	ConflictHealthVsMonetization     ConflictType = "health_vs_monetization"
	ConflictRestVsSocial             ConflictType = "rest_vs_social"
	ConflictBoundariesVsOptimization ConflictType = "boundaries_vs_optimization"
	ConflictLearningVsAvailability   ConflictType = "learning_vs_availability"
	ConflictGoalsVsDesire            ConflictType = "goals_vs_desire"
	ConflictCapacityVsDemand         ConflictType = "capacity_vs_demand"
)

// DomainConflict is a detected incompatibility between two simultaneously
// active domains. Domains preserves the pair order from the conflict table.
type DomainConflict struct {
	Domains     [2]Domain    `json:"domains"`
	Type        ConflictType `json:"conflict_type"`
	Severity    int          `json:"severity"` // 0-100
	Description string       `json:"description"`
	Evidence    []string     `json:"evidence,omitempty"` // sorted set
}

// Involves reports whether the conflict touches domain d.
func (c DomainConflict) Involves(d Domain) bool {
	return c.Domains[0] == d || c.Domains[1] == d
}

// Strategy is the fixed policy used to reconcile a conflict type.
type Strategy string

const (
	StrategySuppressEntirely   Strategy = "suppress_entirely"
	StrategyDeferLowerPriority Strategy = "defer_lower_priority"
	StrategyReframeSuggestion  Strategy = "reframe_suggestion"
	StrategySplitAcrossTime    Strategy = "split_across_time"
	StrategyMergeCompatible    Strategy = "merge_compatible"
)

// TimeSplit schedules one domain now and the other after a delay.
type TimeSplit struct {
	NowDomain    Domain `json:"now_domain"`
	LaterDomain  Domain `json:"later_domain"`
	DelayMinutes int    `json:"delay_minutes"`
}

// ConflictResolution is the stage-4 output for one detected conflict.
// Which optional fields are set depends on the strategy: suppress and defer
// strategies set Winner and Deferred, reframe sets Winner and ReframeHint,
// split sets TimeSplit, merge sets neither.
type ConflictResolution struct {
	Conflict    DomainConflict `json:"conflict"`
	Strategy    Strategy       `json:"strategy"`
	Winner      Domain         `json:"winner,omitempty"`
	Deferred    Domain         `json:"deferred,omitempty"`
	ReframeHint string         `json:"reframe_hint,omitempty"`
	TimeSplit   *TimeSplit     `json:"time_split,omitempty"`
	Rationale   string         `json:"rationale"`
}
