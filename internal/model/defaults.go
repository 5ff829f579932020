package model

// Default confidence assigned to a sub-record the caller did not supply.
// Low enough to mark the data as uncertain, high enough that the confidence
// discount rule does not dominate every partially-filled context.
const DefaultConfidence = 25

// Normalized returns a copy of ctx with every missing sub-record replaced
// by its conservative default. A nil receiver yields the full default
// context. The receiver is never mutated.
//
// Conservative means: no strong signals fire from absent data. Energy sits
// in the middle of its range, consent defaults to granted, intent to none.
// Malformed or partial input is never an error.
func (ctx *FusionContext) Normalized() *FusionContext {
	out := &FusionContext{}
	if ctx != nil {
		*out = *ctx
	}

	if out.HealthCapacity == nil {
		out.HealthCapacity = &HealthCapacity{
			EnergyLevel:  60,
			Availability: AvailabilityHigh,
			Confidence:   DefaultConfidence,
		}
	}
	if out.Social == nil {
		out.Social = &SocialContext{
			ConnectionState: ConnectionContent,
			Confidence:      DefaultConfidence,
		}
	}
	if out.Learning == nil {
		out.Learning = &LearningContext{
			SessionState:       SessionIdle,
			AbsorptionCapacity: 50,
			Confidence:         DefaultConfidence,
		}
	}
	if out.Financial == nil {
		out.Financial = &FinancialContext{
			CommerceIntent:    IntentNone,
			BudgetSensitivity: BudgetMedium,
			Confidence:        DefaultConfidence,
		}
	}
	if out.Boundaries == nil {
		out.Boundaries = &BoundariesConsent{
			Confidence: DefaultConfidence,
		}
	}
	if out.Situational == nil {
		out.Situational = &SituationalContext{
			TimeOfDay: TimeAfternoon,
			DayType:   DayWeekday,
		}
	}
	if out.Goals == nil {
		out.Goals = &GoalsTrajectory{}
	}
	return out
}
