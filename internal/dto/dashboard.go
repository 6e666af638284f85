package dto

import (
	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// CohortQuery is the shared query contract for cohort-scoped endpoints.
type CohortQuery struct {
	SubjectArea string `form:"subject_area" binding:"required,oneof=Reading Math"`
	SchoolYear  string `form:"school_year" binding:"required,school_year"`
	Period      string `form:"assessment_period" binding:"omitempty,oneof=Fall Winter Spring EOY"`
	TeacherName string `form:"teacher_name"`
	ClassName   string `form:"class_name"`
	GradeLevel  *int   `form:"grade_level"`
}

// Filter converts the query to the repository cohort filter.
func (q CohortQuery) Filter() models.CohortFilter {
	return models.CohortFilter{
		TeacherName: q.TeacherName,
		SchoolYear:  q.SchoolYear,
		Subject:     models.Subject(q.SubjectArea),
		GradeLevel:  q.GradeLevel,
		ClassName:   q.ClassName,
	}
}

// StudentSupportQuery scopes the per-student derived view.
type StudentSupportQuery struct {
	SubjectArea string `form:"subject_area" binding:"required,oneof=Reading Math"`
	SchoolYear  string `form:"school_year"`
}

// AssessmentHistoryQuery scopes the per-student assessment listing.
type AssessmentHistoryQuery struct {
	SubjectArea  string `form:"subject_area" binding:"omitempty,oneof=Reading Math"`
	SchoolYear   string `form:"school_year"`
	IncludeDraft bool   `form:"include_draft"`
}

// SnapshotRunRequest triggers one tier-history batch.
type SnapshotRunRequest struct {
	SubjectArea string `json:"subject_area" binding:"required,oneof=Reading Math"`
	SchoolYear  string `json:"school_year" binding:"required,school_year"`
	Period      string `json:"assessment_period" binding:"required,oneof=Fall Winter Spring EOY"`
}
