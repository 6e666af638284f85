package models

import "time"

// Subject is the assessed subject area.
type Subject string

const (
	SubjectReading Subject = "Reading"
	SubjectMath    Subject = "Math"
)

// Period is an assessment window within a school year, ordered
// Fall < Winter < Spring < EOY.
type Period string

const (
	PeriodFall   Period = "Fall"
	PeriodWinter Period = "Winter"
	PeriodSpring Period = "Spring"
	PeriodEOY    Period = "EOY"
)

var periodRank = map[Period]int{
	PeriodFall:   1,
	PeriodWinter: 2,
	PeriodSpring: 3,
	PeriodEOY:    4,
}

// Rank returns the ordinal position of the period, 0 for unknown values.
func (p Period) Rank() int {
	return periodRank[p]
}

// Previous returns the period immediately before p, or "" for Fall and
// unknown values.
func (p Period) Previous() Period {
	switch p {
	case PeriodWinter:
		return PeriodFall
	case PeriodSpring:
		return PeriodWinter
	case PeriodEOY:
		return PeriodSpring
	}
	return ""
}

// Assessment is one scored event for an enrollment. Rows are insert-only:
// score corrections arrive as new rows and the selector keeps the most
// recently entered one. ScoreNormalized is nil when the raw value could not
// be interpreted; nil means "unscored", never zero.
type Assessment struct {
	ID              string     `db:"id" json:"id"`
	EnrollmentID    string     `db:"enrollment_id" json:"enrollment_id"`
	Subject         Subject    `db:"subject_area" json:"subject_area"`
	AssessmentType  string     `db:"assessment_type" json:"assessment_type"`
	Period          Period     `db:"assessment_period" json:"assessment_period"`
	SchoolYear      string     `db:"school_year" json:"school_year"`
	RawScore        string     `db:"raw_score" json:"raw_score"`
	ScoreNormalized *float64   `db:"score_normalized" json:"score_normalized,omitempty"`
	EffectiveDate   *time.Time `db:"effective_date" json:"effective_date,omitempty"`
	AssessmentDate  *time.Time `db:"assessment_date" json:"assessment_date,omitempty"`
	IsDraft         bool       `db:"is_draft" json:"is_draft"`
	EnteredSeq      int64      `db:"entered_seq" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// SortDate is the date used for recency ordering: effective date when set,
// else the raw assessment date, else the insertion time.
func (a Assessment) SortDate() time.Time {
	if a.EffectiveDate != nil {
		return *a.EffectiveDate
	}
	if a.AssessmentDate != nil {
		return *a.AssessmentDate
	}
	return a.CreatedAt
}

// AssessmentFilter scopes assessment queries.
type AssessmentFilter struct {
	EnrollmentID string
	Subject      Subject
	SchoolYear   string
	Period       Period
	IncludeDraft bool
}
