package model

// PriorityTag is an enumerated marker derived from the final scores by
// fixed predicate.
type PriorityTag string

const (
	TagCommerceSuppressed PriorityTag = "commerce_suppressed"
	TagRestMode           PriorityTag = "rest_mode"
	TagExplorationOnly    PriorityTag = "exploration_only"
	TagSafetyCritical     PriorityTag = "safety_critical"
	TagDoNotDisturb       PriorityTag = "do_not_disturb"
)

// DeferredDomain is a domain pushed later in time by a conflict resolution.
type DeferredDomain struct {
	Domain                Domain `json:"domain"`
	Reason                string `json:"reason"`
	SuggestedDelayMinutes int    `json:"suggested_delay_minutes,omitempty"`
}

// SuppressedDomain is a domain removed from consideration entirely.
type SuppressedDomain struct {
	Domain Domain `json:"domain"`
	Reason string `json:"reason"`
}

// ResponseDepth recommends how deep the next response should go.
type ResponseDepth string

const (
	DepthLight    ResponseDepth = "light"
	DepthModerate ResponseDepth = "moderate"
	DepthDeep     ResponseDepth = "deep"
)

// Pacing recommends the tempo of the next interaction.
type Pacing string

const (
	PacingGentle Pacing = "gentle"
	PacingSteady Pacing = "steady"
	PacingBrisk  Pacing = "brisk"
)

// Constraints are the behavioral limits attached to a plan.
//
// MaxHighEffortDomains is always 1: at most one high-effort domain may be
// active at a time, no matter how many score above the threshold.
type Constraints struct {
	MaxHighEffortDomains int           `json:"max_high_effort_domains"`
	AllowCommerce        bool          `json:"allow_commerce"`
	AllowProactive       bool          `json:"allow_proactive"`
	SuggestedDepth       ResponseDepth `json:"suggested_depth"`
	SuggestedPacing      Pacing        `json:"suggested_pacing"`
}

// ResolvedActionPlan is the engine's final artifact: which domain leads,
// which follow, which wait, which are out, and under what constraints.
// Every field is fully determined by the invocation inputs.
type ResolvedActionPlan struct {
	PrimaryDomain     Domain               `json:"primary_domain"`
	SecondaryDomains  []Domain             `json:"secondary_domains,omitempty"`
	DeferredDomains   []DeferredDomain     `json:"deferred_domains,omitempty"`
	SuppressedDomains []SuppressedDomain   `json:"suppressed_domains,omitempty"`
	PriorityTags      []PriorityTag        `json:"priority_tags,omitempty"` // sorted set
	ResolvedConflicts []ConflictResolution `json:"resolved_conflicts,omitempty"`
	Rationale         string               `json:"rationale"`
	Constraints       Constraints          `json:"constraints"`
}
