package models

import "time"

// SupportStatus labels how a student stands against benchmarks.
type SupportStatusLabel string

const (
	StatusUnknown      SupportStatusLabel = "Unknown"
	StatusNeedsSupport SupportStatusLabel = "Needs Support"
	StatusMonitor      SupportStatusLabel = "Monitor"
	StatusOnTrack      SupportStatusLabel = "On Track"
)

// Tier is the ordinal support category. Core > Strategic > Intensive in
// standing; Unknown sorts outside the scale.
type Tier string

const (
	TierUnknown   Tier = "Unknown"
	TierIntensive Tier = "Intensive"
	TierStrategic Tier = "Strategic"
	TierCore      Tier = "Core"
)

var tierRank = map[Tier]int{
	TierUnknown:   0,
	TierIntensive: 1,
	TierStrategic: 2,
	TierCore:      3,
}

// Rank returns the tier's position on the support scale, 0 for Unknown.
func (t Tier) Rank() int {
	return tierRank[t]
}

// NeedsSupport reports whether the tier indicates the student should have
// an intervention in place.
func (t Tier) NeedsSupport() bool {
	return t == TierIntensive || t == TierStrategic
}

// Trend labels the direction of change between the two most recent scores.
type Trend string

const (
	TrendNoData    Trend = "No Data"
	TrendImproving Trend = "Improving"
	TrendStable    Trend = "Stable"
	TrendDeclining Trend = "Declining"
)

// SupportStatus is the derived tier view for one (enrollment, subject)
// slot. It has no lifecycle of its own; it is recomputed from assessments
// and thresholds on read or snapshotted by the batch job.
type SupportStatus struct {
	EnrollmentID string             `json:"enrollment_id"`
	Subject      Subject            `json:"subject_area"`
	LatestScore  *float64           `json:"latest_score,omitempty"`
	Status       SupportStatusLabel `json:"support_status"`
	Tier         Tier               `json:"tier"`
}

// GrowthRecord compares the two most recent scores for an
// (enrollment, subject, year). PriorScore is nil when fewer than two
// qualifying assessments exist, in which case Trend is No Data.
type GrowthRecord struct {
	EnrollmentID string   `json:"enrollment_id"`
	Subject      Subject  `json:"subject_area"`
	SchoolYear   string   `json:"school_year"`
	LatestScore  *float64 `json:"latest_score,omitempty"`
	PriorScore   *float64 `json:"prior_score,omitempty"`
	Growth       *float64 `json:"growth,omitempty"`
	Trend        Trend    `json:"trend"`
}

// PriorityRecord ranks one (enrollment, subject) by urgency. Reasons holds
// one string per fired rule, in fixed display order.
type PriorityRecord struct {
	EnrollmentID          string   `json:"enrollment_id"`
	Subject               Subject  `json:"subject_area"`
	Score                 int      `json:"priority_score"`
	Reasons               []string `json:"reasons"`
	Tier                  Tier     `json:"tier"`
	Trend                 Trend    `json:"trend"`
	HasActiveIntervention bool     `json:"has_active_intervention"`
	DaysSinceAssessment   *int     `json:"days_since_assessment,omitempty"`
}

// SupportSnapshot is the persisted history row written by the batch job,
// keyed by (enrollment, subject, year, period) so re-runs upsert instead of
// duplicating.
type SupportSnapshot struct {
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Subject      Subject   `db:"subject_area" json:"subject_area"`
	SchoolYear   string    `db:"school_year" json:"school_year"`
	Period       Period    `db:"assessment_period" json:"assessment_period"`
	LatestScore  *float64  `db:"latest_score" json:"latest_score,omitempty"`
	Status       string    `db:"support_status" json:"support_status"`
	Tier         Tier      `db:"tier" json:"tier"`
	Trend        Trend     `db:"trend" json:"trend"`
	ComputedAt   time.Time `db:"computed_at" json:"computed_at"`
}
