package scoring

import (
	"sort"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// GrowthConfig holds the trend classification deltas on the normalized
// 0-100 scale. The defaults are product-tuned; deployments may adjust them
// through configuration.
type GrowthConfig struct {
	ImprovingDelta float64
	DecliningDelta float64
}

// DefaultGrowthConfig returns the standard +/-2.0 point deltas.
func DefaultGrowthConfig() GrowthConfig {
	return GrowthConfig{ImprovingDelta: 2.0, DecliningDelta: -2.0}
}

// ClassifyTrend labels the change between two scores. A nil prior score
// yields No Data; growth at or beyond the improving delta is Improving, at
// or beyond the declining delta is Declining, everything between is Stable.
func ClassifyTrend(latest, prior *float64, cfg GrowthConfig) (*float64, models.Trend) {
	if latest == nil || prior == nil {
		return nil, models.TrendNoData
	}
	growth := *latest - *prior
	switch {
	case growth >= cfg.ImprovingDelta:
		return &growth, models.TrendImproving
	case growth <= cfg.DecliningDelta:
		return &growth, models.TrendDeclining
	default:
		return &growth, models.TrendStable
	}
}

// ComputeGrowth builds the growth record for one (enrollment, subject,
// year) from its assessment rows. The two most recent qualifying rows by
// the selection ordering supply latest and prior; with fewer than two the
// trend is No Data.
func ComputeGrowth(enrollmentID string, subject models.Subject, schoolYear string, rows []models.Assessment, cfg GrowthConfig) models.GrowthRecord {
	record := models.GrowthRecord{
		EnrollmentID: enrollmentID,
		Subject:      subject,
		SchoolYear:   schoolYear,
		Trend:        models.TrendNoData,
	}

	ordered := Sorted(Qualifying(rows))
	if len(ordered) == 0 {
		return record
	}
	record.LatestScore = ordered[0].ScoreNormalized
	if len(ordered) > 1 {
		record.PriorScore = ordered[1].ScoreNormalized
	}
	record.Growth, record.Trend = ClassifyTrend(record.LatestScore, record.PriorScore, cfg)
	return record
}

// SummarizeGrowth aggregates growth records across a cohort. Records
// without a growth value contribute nothing; with no usable records the
// medians are nil and the percentages zero.
func SummarizeGrowth(records []models.GrowthRecord) models.GrowthSummary {
	var points []float64
	var improving, declining, stable int
	for _, record := range records {
		if record.Growth == nil {
			continue
		}
		points = append(points, *record.Growth)
		switch record.Trend {
		case models.TrendImproving:
			improving++
		case models.TrendDeclining:
			declining++
		case models.TrendStable:
			stable++
		}
	}

	summary := models.GrowthSummary{N: len(points)}
	if len(points) == 0 {
		return summary
	}

	var total float64
	for _, p := range points {
		total += p
	}
	mean := total / float64(len(points))
	median := medianOf(points)
	summary.MeanGrowth = &mean
	summary.MedianGrowth = &median

	n := float64(len(points))
	summary.PercentImproving = float64(improving) / n * 100
	summary.PercentDeclining = float64(declining) / n * 100
	summary.PercentStable = float64(stable) / n * 100
	return summary
}

func medianOf(values []float64) float64 {
	ordered := make([]float64, len(values))
	copy(ordered, values)
	sort.Float64s(ordered)
	mid := len(ordered) / 2
	if len(ordered)%2 == 0 {
		return (ordered[mid-1] + ordered[mid]) / 2
	}
	return ordered[mid]
}
