package model

import "sort"

// Risk flag names attached to DomainSignal.RiskFlags.
const (
	RiskConsentDenied    = "consent_denied"
	RiskCommerceOptedOut = "commerce_opted_out"
	RiskIsolation        = "isolation"
	RiskLowAbsorption    = "low_absorption"
	RiskLearningFatigue  = "learning_fatigue"
	RiskBudgetSensitive  = "budget_sensitive"
	RiskLowEnergy        = "low_energy"
	RiskDoNotDisturb     = "do_not_disturb"
)

// Source markers attached to DomainSignal.Sources. Each names the rule that
// contributed activation, so a score can be audited back to its inputs.
const (
	SourceSafetyFlags     = "safety_flags"
	SourceLowEnergy       = "low_energy"
	SourceAvailability    = "availability"
	SourceActiveConcerns  = "active_concerns"
	SourceStress          = "stress"
	SourceLateNight       = "late_night"
	SourceObligations     = "obligations"
	SourceConnection      = "connection_state"
	SourceCommunity       = "community"
	SourceWeekend         = "weekend"
	SourceSession         = "session_state"
	SourceGoals           = "goals"
	SourceAbsorption      = "absorption"
	SourceMorning         = "morning"
	SourceExplicitIntent  = "explicit_intent"
	SourceImplicitIntent  = "implicit_intent"
	SourceMonetization    = "monetization_eligible"
	SourceRecentPurchases = "recent_purchases"
	SourceBaseline        = "baseline"
	SourceOpenIntent      = "open_intent"
)

// DomainSignal is the stage-1 output: one activation signal per domain,
// derived from the fusion context by that domain's rule function.
type DomainSignal struct {
	Domain          Domain      `json:"domain"`
	ActivationScore int         `json:"activation_score"` // 0-100
	Confidence      int         `json:"confidence"`       // 0-100
	Urgency         UrgencyTier `json:"urgency"`
	RiskFlags       []string    `json:"risk_flags,omitempty"` // sorted set
	Sources         []string    `json:"sources,omitempty"`    // sorted set
}

// HasRiskFlag reports whether the signal carries the named risk flag.
func (s DomainSignal) HasRiskFlag(flag string) bool {
	for _, f := range s.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// HasSource reports whether the signal carries the named source marker.
func (s DomainSignal) HasSource(src string) bool {
	for _, f := range s.Sources {
		if f == src {
			return true
		}
	}
	return false
}

// SortedSet returns a sorted, de-duplicated copy of items. Signal builders
// use it so RiskFlags and Sources serialize identically across runs.
func SortedSet(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}

// ClampScore clamps v to the [0,100] score range.
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
