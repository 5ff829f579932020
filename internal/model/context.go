package model

// FusionContext is the aggregate snapshot the caller assembles from upstream
// signal engines. Every sub-record is optional: a nil sub-record is filled
// with a conservative, maximally-uncertain default by Normalized, never
// treated as an error.
type FusionContext struct {
	HealthCapacity *HealthCapacity     `json:"health_capacity,omitempty" yaml:"health_capacity,omitempty"`
	Social         *SocialContext      `json:"social,omitempty" yaml:"social,omitempty"`
	Learning       *LearningContext    `json:"learning,omitempty" yaml:"learning,omitempty"`
	Financial      *FinancialContext   `json:"financial,omitempty" yaml:"financial,omitempty"`
	Boundaries     *BoundariesConsent  `json:"boundaries_consent,omitempty" yaml:"boundaries_consent,omitempty"`
	Situational    *SituationalContext `json:"situational,omitempty" yaml:"situational,omitempty"`
	Goals          *GoalsTrajectory    `json:"goals_trajectory,omitempty" yaml:"goals_trajectory,omitempty"`
}

// AvailabilityTier is the user's overall availability, ordered high > low > minimal.
type AvailabilityTier string

const (
	AvailabilityHigh    AvailabilityTier = "high"
	AvailabilityLow     AvailabilityTier = "low"
	AvailabilityMinimal AvailabilityTier = "minimal"
)

// Constrained reports whether the tier is low or minimal.
func (a AvailabilityTier) Constrained() bool {
	return a == AvailabilityLow || a == AvailabilityMinimal
}

// SafetyFlag is an active health/safety concern with a graded severity.
type SafetyFlag struct {
	Name     string   `json:"name" yaml:"name"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// HealthCapacity describes the user's current physical and mental capacity.
type HealthCapacity struct {
	EnergyLevel    int              `json:"energy_level" yaml:"energy_level"` // 0-100
	Availability   AvailabilityTier `json:"availability" yaml:"availability"`
	SafetyFlags    []SafetyFlag     `json:"safety_flags,omitempty" yaml:"safety_flags,omitempty"`
	ActiveConcerns []string         `json:"active_concerns,omitempty" yaml:"active_concerns,omitempty"`
	StressLevel    *int             `json:"stress_level,omitempty" yaml:"stress_level,omitempty"` // 0-100, optional
	Confidence     int              `json:"confidence" yaml:"confidence"`                         // 0-100
}

// MaxSeverity returns the highest severity among the active safety flags,
// or the empty severity when no flags are set.
func (h *HealthCapacity) MaxSeverity() Severity {
	var max Severity
	for _, f := range h.SafetyFlags {
		if f.Severity.Score() > max.Score() {
			max = f.Severity
		}
	}
	return max
}

// ConnectionState describes the user's current connection-seeking posture.
type ConnectionState string

const (
	ConnectionContent  ConnectionState = "content"
	ConnectionSeeking  ConnectionState = "seeking"
	ConnectionIsolated ConnectionState = "isolated"
)

// Obligation is a pending social obligation with an urgency tier.
type Obligation struct {
	Description string      `json:"description" yaml:"description"`
	Urgency     UrgencyTier `json:"urgency" yaml:"urgency"`
}

// SocialContext describes the user's social situation.
type SocialContext struct {
	PendingObligations []Obligation    `json:"pending_obligations,omitempty" yaml:"pending_obligations,omitempty"`
	ConnectionState    ConnectionState `json:"connection_state" yaml:"connection_state"`
	CommunityScore     int             `json:"community_score" yaml:"community_score"` // 0-100
	ActivityLevel      string          `json:"activity_level,omitempty" yaml:"activity_level,omitempty"`
	Confidence         int             `json:"confidence" yaml:"confidence"`
}

// HasUrgentObligation reports whether any pending obligation is high urgency
// or above.
func (s *SocialContext) HasUrgentObligation() bool {
	for _, o := range s.PendingObligations {
		if o.Urgency.AtLeast(UrgencyHigh) {
			return true
		}
	}
	return false
}

// SessionState describes the user's current learning session.
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionBrowsing  SessionState = "browsing"
	SessionActive    SessionState = "active"
	SessionDeepFocus SessionState = "deep_focus"
	SessionFatigued  SessionState = "fatigued"
)

// LearningContext describes the user's learning state.
type LearningContext struct {
	SessionState       SessionState `json:"session_state" yaml:"session_state"`
	AbsorptionCapacity int          `json:"absorption_capacity" yaml:"absorption_capacity"` // 0-100
	Confidence         int          `json:"confidence" yaml:"confidence"`
}

// CommerceIntent grades how explicitly the user has signalled purchase intent.
type CommerceIntent string

const (
	IntentNone     CommerceIntent = "none"
	IntentImplicit CommerceIntent = "implicit"
	IntentExplicit CommerceIntent = "explicit"
)

// BudgetSensitivity grades how price-sensitive the user currently is.
type BudgetSensitivity string

const (
	BudgetLow    BudgetSensitivity = "low"
	BudgetMedium BudgetSensitivity = "medium"
	BudgetHigh   BudgetSensitivity = "high"
)

// FinancialContext describes the user's commerce posture.
type FinancialContext struct {
	CommerceIntent         CommerceIntent    `json:"commerce_intent" yaml:"commerce_intent"`
	MonetizationEligible   bool              `json:"monetization_eligible" yaml:"monetization_eligible"`
	BudgetSensitivity      BudgetSensitivity `json:"budget_sensitivity" yaml:"budget_sensitivity"`
	RecentPurchaseActivity bool              `json:"recent_purchase_activity" yaml:"recent_purchase_activity"`
	RiskFlags              []string          `json:"risk_flags,omitempty" yaml:"risk_flags,omitempty"`
	Confidence             int               `json:"confidence" yaml:"confidence"`
}

// Enforcement grades a boundary: soft boundaries are advisory, hard
// boundaries are absolute.
type Enforcement string

const (
	EnforcementSoft Enforcement = "soft"
	EnforcementHard Enforcement = "hard"
)

// Boundary is an active user-declared boundary.
type Boundary struct {
	Description string      `json:"description" yaml:"description"`
	Enforcement Enforcement `json:"enforcement" yaml:"enforcement"`
}

// BoundariesConsent carries the user's consent and boundary state.
//
// DomainConsent maps each domain to an explicit consent decision. A domain
// absent from the map is treated as consented; only an explicit false denies.
type BoundariesConsent struct {
	DomainConsent    map[Domain]bool `json:"domain_consent,omitempty" yaml:"domain_consent,omitempty"`
	CommerceOptedOut bool            `json:"commerce_opted_out" yaml:"commerce_opted_out"`
	DoNotDisturb     bool            `json:"do_not_disturb" yaml:"do_not_disturb"`
	ActiveBoundaries []Boundary      `json:"active_boundaries,omitempty" yaml:"active_boundaries,omitempty"`
	Confidence       int             `json:"confidence" yaml:"confidence"`
}

// ConsentFor reports whether the user has consented to action in domain d.
func (b *BoundariesConsent) ConsentFor(d Domain) bool {
	if b.DomainConsent == nil {
		return true
	}
	consent, ok := b.DomainConsent[d]
	if !ok {
		return true
	}
	return consent
}

// HasHardBoundary reports whether any active boundary is hard-enforced.
func (b *BoundariesConsent) HasHardBoundary() bool {
	for _, bd := range b.ActiveBoundaries {
		if bd.Enforcement == EnforcementHard {
			return true
		}
	}
	return false
}

// TimeOfDay is a coarse time-of-day bucket.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeLateNight TimeOfDay = "late_night"
)

// DayType distinguishes weekdays from weekends.
type DayType string

const (
	DayWeekday DayType = "weekday"
	DayWeekend DayType = "weekend"
)

// SituationalContext carries coarse temporal context.
type SituationalContext struct {
	TimeOfDay TimeOfDay `json:"time_of_day" yaml:"time_of_day"`
	DayType   DayType   `json:"day_type" yaml:"day_type"`
}

// GoalPriority grades an active goal.
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "low"
	GoalPriorityMedium GoalPriority = "medium"
	GoalPriorityHigh   GoalPriority = "high"
)

// Goal is an active user goal tagged with the domain it belongs to.
type Goal struct {
	Domain      Domain       `json:"domain" yaml:"domain"`
	Priority    GoalPriority `json:"priority" yaml:"priority"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Horizon is the user's current time-horizon focus.
type Horizon string

const (
	HorizonShortTerm Horizon = "short_term"
	HorizonLongTerm  Horizon = "long_term"
)

// GoalsTrajectory carries the user's active goals and horizon focus.
type GoalsTrajectory struct {
	ActiveGoals  []Goal  `json:"active_goals,omitempty" yaml:"active_goals,omitempty"`
	HorizonFocus Horizon `json:"horizon_focus,omitempty" yaml:"horizon_focus,omitempty"`
}
