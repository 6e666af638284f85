package scoring

import "github.com/noah-isme/literacy-tracker-api/internal/models"

// Evaluate maps a selected current score against the exact-match threshold
// row to a support status and tier. Rules apply in strict order, first
// match wins:
//
//  1. nil score                                  -> Unknown / Unknown
//  2. support_threshold set, score below it      -> Needs Support / Intensive
//  3. benchmark_threshold set, score below it    -> Monitor / Strategic
//  4. otherwise                                  -> On Track / Core
//
// Thresholds are independent; an absent threshold skips its rule and is
// never treated as zero. threshold may be nil when no exact
// (subject, type, grade, period, year) match exists.
func Evaluate(score *float64, threshold *models.BenchmarkThreshold) (models.SupportStatusLabel, models.Tier) {
	if score == nil {
		return models.StatusUnknown, models.TierUnknown
	}
	if threshold != nil {
		if threshold.SupportThreshold != nil && *score < *threshold.SupportThreshold {
			return models.StatusNeedsSupport, models.TierIntensive
		}
		if threshold.BenchmarkThreshold != nil && *score < *threshold.BenchmarkThreshold {
			return models.StatusMonitor, models.TierStrategic
		}
		return models.StatusOnTrack, models.TierCore
	}
	// A scored student with no reference row cannot be placed on the scale.
	return models.StatusUnknown, models.TierUnknown
}
