package scoring

import (
	"strings"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// PriorityWeights are the additive urgency points per condition. They are
// product-tuned constants surfaced through configuration rather than
// inferred.
type PriorityWeights struct {
	TierIntensive  int
	TierStrategic  int
	TrendDeclining int
	TrendStable    int
	Overdue        int
	Aging          int
	NoIntervention int
}

// PriorityConfig couples the weights with the staleness cutoffs in days.
type PriorityConfig struct {
	Weights     PriorityWeights
	OverdueDays int
	AgingDays   int
}

// DefaultPriorityConfig returns the standard weighting: 5/3 tier points,
// 3/1 trend points, 2/1 staleness points past 90/60 days, and 2 points for
// an uncovered needs-support tier.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		Weights: PriorityWeights{
			TierIntensive:  5,
			TierStrategic:  3,
			TrendDeclining: 3,
			TrendStable:    1,
			Overdue:        2,
			Aging:          1,
			NoIntervention: 2,
		},
		OverdueDays: 90,
		AgingDays:   60,
	}
}

// ReasonSeparator joins the reason strings in ReasonsText.
const ReasonSeparator = "; "

// ComputePriority produces the additive priority score with one reason
// string per fired rule, in fixed display order: tier, declining trend,
// intervention gap, overdue assessment. Conditions that add points without
// a display reason (stable trend, 60-90 day staleness) contribute silently.
// daysSince is nil when no dated assessment exists; nil contributes
// neither points nor a reason.
func ComputePriority(tier models.Tier, trend models.Trend, hasActiveIntervention bool, daysSince *int, cfg PriorityConfig) (int, []string) {
	score := 0
	var reasons []string

	switch tier {
	case models.TierIntensive:
		score += cfg.Weights.TierIntensive
		reasons = append(reasons, "Intensive tier")
	case models.TierStrategic:
		score += cfg.Weights.TierStrategic
		reasons = append(reasons, "Strategic tier")
	}

	switch trend {
	case models.TrendDeclining:
		score += cfg.Weights.TrendDeclining
		reasons = append(reasons, "Declining growth trend")
	case models.TrendStable:
		score += cfg.Weights.TrendStable
	}

	if !hasActiveIntervention && tier.NeedsSupport() {
		score += cfg.Weights.NoIntervention
		reasons = append(reasons, "No active intervention")
	}

	if daysSince != nil {
		if *daysSince > cfg.OverdueDays {
			score += cfg.Weights.Overdue
			reasons = append(reasons, "Overdue assessment (>90d)")
		} else if *daysSince > cfg.AgingDays {
			score += cfg.Weights.Aging
		}
	}

	return score, reasons
}

// ReasonsText joins reasons for display. Empty input yields an empty
// string, never a "None" placeholder.
func ReasonsText(reasons []string) string {
	return strings.Join(reasons, ReasonSeparator)
}
