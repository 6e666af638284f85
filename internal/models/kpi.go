package models

// StatusBucket is one support-status slice of a cohort summary.
type StatusBucket struct {
	Status  SupportStatusLabel `json:"status"`
	Count   int                `json:"count"`
	Percent float64            `json:"percent"`
}

// TierMovement counts tier transitions against the previous snapshot.
// All zero with SnapshotAvailable=false when no prior snapshot exists.
type TierMovement struct {
	Improved          int  `json:"improved"`
	Declined          int  `json:"declined"`
	Unchanged         int  `json:"unchanged"`
	SnapshotAvailable bool `json:"snapshot_available"`
}

// CohortKPI is the dashboard summary for one cohort. Enrollments missing
// data stay in Total but are excluded from numerators that require the
// missing datum, so percentages never conflate "no score" with zero.
type CohortKPI struct {
	Total                int            `json:"total"`
	Assessed             int            `json:"assessed"`
	AssessedPercent      float64        `json:"assessed_percent"`
	StatusBuckets        []StatusBucket `json:"status_buckets"`
	Overdue              int            `json:"overdue"`
	OverduePercent       float64        `json:"overdue_percent"`
	MedianDaysSince      *float64       `json:"median_days_since,omitempty"`
	InterventionCoverage *float64       `json:"intervention_coverage,omitempty"`
	TierMovement         TierMovement   `json:"tier_movement"`
}

// GrowthSummary aggregates growth across a cohort.
type GrowthSummary struct {
	MedianGrowth     *float64 `json:"median_growth,omitempty"`
	MeanGrowth       *float64 `json:"mean_growth,omitempty"`
	PercentImproving float64  `json:"percent_improving"`
	PercentDeclining float64  `json:"percent_declining"`
	PercentStable    float64  `json:"percent_stable"`
	N                int      `json:"n"`
}
