package models

import (
	"strings"
	"time"
)

// Intervention is a support program assigned to an enrollment. Parts of the
// store still key interventions by the legacy numeric student id; the
// identity resolver bridges those rows. Interventions feed coverage and gap
// computation only, never scoring.
type Intervention struct {
	ID              string     `db:"id" json:"id"`
	EnrollmentID    *string    `db:"enrollment_id" json:"enrollment_id,omitempty"`
	LegacyStudentID *int64     `db:"legacy_student_id" json:"legacy_student_id,omitempty"`
	Subject         Subject    `db:"subject_area" json:"subject_area"`
	Status          string     `db:"status" json:"status"`
	StartDate       *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// activeStatusMarkers are matched case-insensitively as substrings; the
// status column is free text in the store.
var activeStatusMarkers = []string{"active", "in progress", "ongoing"}

// IsActive reports whether the intervention status counts as active-like.
func (i Intervention) IsActive() bool {
	status := strings.ToLower(i.Status)
	for _, marker := range activeStatusMarkers {
		if strings.Contains(status, marker) {
			return true
		}
	}
	return false
}
