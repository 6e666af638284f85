package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

// StudentSupportView is the derived per-student standing for one subject:
// current score, tier, growth trend, and priority. It is computed on read,
// never stored.
type StudentSupportView struct {
	Enrollment models.EnrollmentDetail `json:"enrollment"`
	Current    *models.Assessment      `json:"current_assessment,omitempty"`
	Support    models.SupportStatus    `json:"support"`
	Growth     models.GrowthRecord     `json:"growth"`
	Priority   models.PriorityRecord   `json:"priority"`
}

// PriorityStudent pairs a priority record with the display fields list
// endpoints and reports need.
type PriorityStudent struct {
	Enrollment  models.EnrollmentDetail `json:"enrollment"`
	LatestScore *float64                `json:"latest_score,omitempty"`
	Record      models.PriorityRecord   `json:"priority"`
	ReasonsText string                  `json:"reasons_text"`
}

// SupportServiceParams bundles SupportService dependencies.
type SupportServiceParams struct {
	Enrollments   enrollmentReader
	Assessments   assessmentReader
	Thresholds    thresholdReader
	Interventions interventionReader
	Scoring       config.ScoringConfig
	Logger        *zap.Logger
	Now           func() time.Time
}

// SupportService runs the derivation pipeline: select the current
// assessment, place it against benchmarks, classify growth, and score
// priority. All steps are pure given the loaded rows; the service only
// orchestrates loading and fan-out.
type SupportService struct {
	enrollments   enrollmentReader
	assessments   assessmentReader
	thresholds    thresholdReader
	interventions interventionReader

	growthCfg   scoring.GrowthConfig
	priorityCfg scoring.PriorityConfig

	logger *zap.Logger
	now    func() time.Time
}

// NewSupportService constructs the service.
func NewSupportService(p SupportServiceParams) *SupportService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &SupportService{
		enrollments:   p.Enrollments,
		assessments:   p.Assessments,
		thresholds:    p.Thresholds,
		interventions: p.Interventions,
		growthCfg:     growthConfigFrom(p.Scoring),
		priorityCfg:   priorityConfigFrom(p.Scoring),
		logger:        p.Logger,
		now:           p.Now,
	}
}

// StudentSupport computes the derived view for one enrollment and subject.
func (s *SupportService) StudentSupport(ctx context.Context, enrollmentID string, subject models.Subject, schoolYear string) (*StudentSupportView, error) {
	if subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_area is required")
	}

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if schoolYear == "" {
		schoolYear = enrollment.SchoolYear
	}

	rows, err := s.assessments.List(ctx, models.AssessmentFilter{
		EnrollmentID: enrollmentID,
		Subject:      subject,
		SchoolYear:   schoolYear,
	})
	if err != nil {
		return nil, err
	}

	interventions, err := s.interventions.MapByEnrollment(ctx, []string{enrollmentID}, subject)
	if err != nil {
		return nil, err
	}

	evaluation, err := s.evaluateOne(ctx, *enrollment, subject, schoolYear, rows, interventions[enrollmentID], nil, s.now())
	if err != nil {
		return nil, err
	}

	return &StudentSupportView{
		Enrollment: evaluation.Enrollment,
		Current:    evaluation.Current,
		Support:    evaluation.Support,
		Growth:     evaluation.Growth,
		Priority:   evaluation.Priority,
	}, nil
}

// CohortPriorities returns the ranked priority list for a cohort: students
// with a positive priority score, highest first, name as the tie-break so
// the ordering is stable across runs.
func (s *SupportService) CohortPriorities(ctx context.Context, filter models.CohortFilter) ([]PriorityStudent, error) {
	if filter.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_area is required")
	}

	evaluations, err := s.evaluateCohort(ctx, filter, s.now())
	if err != nil {
		return nil, err
	}

	students := make([]PriorityStudent, 0, len(evaluations))
	for _, evaluation := range evaluations {
		if evaluation.Priority.Score <= 0 {
			continue
		}
		students = append(students, PriorityStudent{
			Enrollment:  evaluation.Enrollment,
			LatestScore: evaluation.Support.LatestScore,
			Record:      evaluation.Priority,
			ReasonsText: scoring.ReasonsText(evaluation.Priority.Reasons),
		})
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Record.Score != students[j].Record.Score {
			return students[i].Record.Score > students[j].Record.Score
		}
		return students[i].Enrollment.StudentName < students[j].Enrollment.StudentName
	})
	return students, nil
}

// evaluateCohort loads everything for the cohort in four queries and runs
// the pipeline per enrollment in memory.
func (s *SupportService) evaluateCohort(ctx context.Context, filter models.CohortFilter, asOf time.Time) ([]cohortEvaluation, error) {
	enrollments, err := s.enrollments.ListByCohort(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, nil
	}

	ids := make([]string, len(enrollments))
	for i, enrollment := range enrollments {
		ids[i] = enrollment.ID
	}

	rows, err := s.assessments.ListForEnrollments(ctx, ids, filter.Subject, filter.SchoolYear)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Assessment)
	for _, row := range rows {
		grouped[row.EnrollmentID] = append(grouped[row.EnrollmentID], row)
	}

	thresholds, err := s.thresholds.ListForYear(ctx, filter.Subject, filter.SchoolYear)
	if err != nil {
		return nil, err
	}
	thresholdIndex := make(map[models.ThresholdKey]models.BenchmarkThreshold, len(thresholds))
	for _, threshold := range thresholds {
		thresholdIndex[threshold.Key()] = threshold
	}

	interventions, err := s.interventions.MapByEnrollment(ctx, ids, filter.Subject)
	if err != nil {
		return nil, err
	}

	evaluations := make([]cohortEvaluation, 0, len(enrollments))
	for _, enrollment := range enrollments {
		evaluation, err := s.evaluateOne(ctx, enrollment, filter.Subject, filter.SchoolYear,
			grouped[enrollment.ID], interventions[enrollment.ID], thresholdIndex, asOf)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations, nil
}

// evaluateOne runs the pipeline for a single enrollment. thresholdIndex is
// the preloaded cohort index; when nil the threshold is fetched directly.
func (s *SupportService) evaluateOne(
	ctx context.Context,
	enrollment models.EnrollmentDetail,
	subject models.Subject,
	schoolYear string,
	rows []models.Assessment,
	interventions []models.Intervention,
	thresholdIndex map[models.ThresholdKey]models.BenchmarkThreshold,
	asOf time.Time,
) (cohortEvaluation, error) {
	var current *models.Assessment
	if selected, ok := scoring.SelectCurrent(rows); ok {
		current = &selected
	}

	var threshold *models.BenchmarkThreshold
	if current != nil {
		key := models.ThresholdKey{
			Subject:        current.Subject,
			AssessmentType: current.AssessmentType,
			GradeLevel:     enrollment.GradeLevel,
			Period:         current.Period,
			SchoolYear:     current.SchoolYear,
		}
		if thresholdIndex != nil {
			if match, ok := thresholdIndex[key]; ok {
				threshold = &match
			}
		} else {
			match, err := s.thresholds.Find(ctx, key)
			if err != nil {
				return cohortEvaluation{}, err
			}
			threshold = match
		}
	}

	var latest *float64
	if current != nil {
		latest = current.ScoreNormalized
	}
	status, tier := scoring.Evaluate(latest, threshold)

	growth := scoring.ComputeGrowth(enrollment.ID, subject, schoolYear, rows, s.growthCfg)

	days := daysSince(current, asOf)
	active := hasActiveIntervention(interventions)
	score, reasons := scoring.ComputePriority(tier, growth.Trend, active, days, s.priorityCfg)

	return cohortEvaluation{
		Enrollment: enrollment,
		Current:    current,
		Support: models.SupportStatus{
			EnrollmentID: enrollment.ID,
			Subject:      subject,
			LatestScore:  latest,
			Status:       status,
			Tier:         tier,
		},
		Growth: growth,
		Priority: models.PriorityRecord{
			EnrollmentID:          enrollment.ID,
			Subject:               subject,
			Score:                 score,
			Reasons:               reasons,
			Tier:                  tier,
			Trend:                 growth.Trend,
			HasActiveIntervention: active,
			DaysSinceAssessment:   days,
		},
	}, nil
}
