package model

// Adjustment is one applied scoring rule, recorded for auditability.
// Delta is the effective change to the running score, after any floor the
// rule imposes, so Score always equals BaseScore plus the sum of deltas
// (clamped and rounded).
type Adjustment struct {
	RuleID string  `json:"rule_id"`
	Reason string  `json:"reason"`
	Delta  float64 `json:"delta"`
}

// DomainPriorityScore is the stage-2 output: the weighted, rule-adjusted
// priority of one domain.
//
// Suppressed is a hard override: a suppressed domain scores 0 regardless of
// arithmetic and no adjustment recorded after the suppression entry exists.
type DomainPriorityScore struct {
	Domain            Domain       `json:"domain"`
	Score             int          `json:"score"` // 0-100, rounded
	BaseScore         float64      `json:"base_score"`
	Adjustments       []Adjustment `json:"adjustments,omitempty"`
	Suppressed        bool         `json:"suppressed"`
	SuppressionReason string       `json:"suppression_reason,omitempty"`
}
