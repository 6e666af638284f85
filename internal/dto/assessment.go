package dto

import (
	"time"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// CreateAssessmentRequest is the entry payload for one assessment row.
// Dates are plain calendar dates; the raw score is stored verbatim.
type CreateAssessmentRequest struct {
	SubjectArea    string `json:"subject_area" binding:"required,oneof=Reading Math"`
	AssessmentType string `json:"assessment_type" binding:"required"`
	Period         string `json:"assessment_period" binding:"required,oneof=Fall Winter Spring EOY"`
	SchoolYear     string `json:"school_year" binding:"required,school_year"`
	RawScore       string `json:"raw_score"`
	EffectiveDate  string `json:"effective_date"`
	AssessmentDate string `json:"assessment_date"`
	IsDraft        bool   `json:"is_draft"`
}

// ToInput converts the request to the service input, parsing the optional
// dates.
func (r CreateAssessmentRequest) ToInput() (service.AssessmentInput, error) {
	input := service.AssessmentInput{
		Subject:        models.Subject(r.SubjectArea),
		AssessmentType: r.AssessmentType,
		Period:         models.Period(r.Period),
		SchoolYear:     r.SchoolYear,
		RawScore:       r.RawScore,
		IsDraft:        r.IsDraft,
	}
	if r.EffectiveDate != "" {
		parsed, err := time.Parse(dateLayout, r.EffectiveDate)
		if err != nil {
			return input, appErrors.Clone(appErrors.ErrValidation, "effective_date must be YYYY-MM-DD")
		}
		input.EffectiveDate = &parsed
	}
	if r.AssessmentDate != "" {
		parsed, err := time.Parse(dateLayout, r.AssessmentDate)
		if err != nil {
			return input, appErrors.Clone(appErrors.ErrValidation, "assessment_date must be YYYY-MM-DD")
		}
		input.AssessmentDate = &parsed
	}
	return input, nil
}
