package model

// Domain is one of the five fixed life areas the engine arbitrates between.
// The set is closed and never extended at runtime.
type Domain string

const (
	DomainCommerce    Domain = "commerce_monetization"
	DomainExploration Domain = "exploration_discovery"
	DomainHealth      Domain = "health_wellbeing"
	DomainLearning    Domain = "learning_growth"
	DomainSocial      Domain = "social_relationships"
)

// AllDomains lists every domain in lexical order.
//
// CRITICAL: iteration over domains MUST use this slice, never a map, so that
// every run visits domains in the same order. Lexical order is also the
// tie-break order for equal priority scores.
var AllDomains = []Domain{
	DomainCommerce,
	DomainExploration,
	DomainHealth,
	DomainLearning,
	DomainSocial,
}

// Valid reports whether d is one of the five known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainCommerce, DomainExploration, DomainHealth, DomainLearning, DomainSocial:
		return true
	}
	return false
}

// UrgencyTier grades how urgent a signal or obligation is.
type UrgencyTier string

const (
	UrgencyNone     UrgencyTier = "none"
	UrgencyLow      UrgencyTier = "low"
	UrgencyMedium   UrgencyTier = "medium"
	UrgencyHigh     UrgencyTier = "high"
	UrgencyCritical UrgencyTier = "critical"
)

// urgencyRank orders urgency tiers for comparison.
var urgencyRank = map[UrgencyTier]int{
	UrgencyNone:     0,
	UrgencyLow:      1,
	UrgencyMedium:   2,
	UrgencyHigh:     3,
	UrgencyCritical: 4,
}

// AtLeast reports whether u is at least as urgent as other.
func (u UrgencyTier) AtLeast(other UrgencyTier) bool {
	return urgencyRank[u] >= urgencyRank[other]
}

// MaxUrgency returns the more urgent of a and b.
func MaxUrgency(a, b UrgencyTier) UrgencyTier {
	if urgencyRank[b] > urgencyRank[a] {
		return b
	}
	return a
}

// Severity grades a safety flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Score maps a severity onto the 1..4 scale used by the health signal rule.
// Unknown severities score 0 and contribute nothing.
func (s Severity) Score() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}
