package models

// BenchmarkThreshold is externally curated reference data giving the
// normalized-scale cutoffs for one (subject, assessment type, grade,
// period, year) slot. Either threshold may be absent independently.
type BenchmarkThreshold struct {
	ID                 string   `db:"id" json:"id"`
	Subject            Subject  `db:"subject_area" json:"subject_area"`
	AssessmentType     string   `db:"assessment_type" json:"assessment_type"`
	GradeLevel         int      `db:"grade_level" json:"grade_level"`
	Period             Period   `db:"assessment_period" json:"assessment_period"`
	SchoolYear         string   `db:"school_year" json:"school_year"`
	SupportThreshold   *float64 `db:"support_threshold" json:"support_threshold,omitempty"`
	BenchmarkThreshold *float64 `db:"benchmark_threshold" json:"benchmark_threshold,omitempty"`
}

// ThresholdKey identifies a threshold slot. Lookups require an exact match
// on all five fields; there is no fuzzy fallback.
type ThresholdKey struct {
	Subject        Subject
	AssessmentType string
	GradeLevel     int
	Period         Period
	SchoolYear     string
}

// Key returns the lookup key for the threshold row.
func (t BenchmarkThreshold) Key() ThresholdKey {
	return ThresholdKey{
		Subject:        t.Subject,
		AssessmentType: t.AssessmentType,
		GradeLevel:     t.GradeLevel,
		Period:         t.Period,
		SchoolYear:     t.SchoolYear,
	}
}
