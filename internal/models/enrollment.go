package models

import "time"

// Enrollment is one grade/year/class context for a person. A person has
// one enrollment per school year in steady state; duplicates are tolerated
// and resolved downstream by deterministic selection.
type Enrollment struct {
	ID              string    `db:"id" json:"id"`
	PersonID        string    `db:"person_id" json:"person_id"`
	SchoolYear      string    `db:"school_year" json:"school_year"`
	GradeLevel      int       `db:"grade_level" json:"grade_level"`
	ClassName       string    `db:"class_name" json:"class_name"`
	TeacherName     string    `db:"teacher_name" json:"teacher_name"`
	LegacyStudentID *int64    `db:"legacy_student_id" json:"legacy_student_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentDetail joins the person display fields used by list endpoints.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
}

// CohortFilter scopes aggregation queries. Empty fields are unconstrained.
type CohortFilter struct {
	TeacherName string
	SchoolYear  string
	Subject     Subject
	GradeLevel  *int
	ClassName   string
}
