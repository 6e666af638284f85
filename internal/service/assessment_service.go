package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

type assessmentWriter interface {
	assessmentReader
	Insert(ctx context.Context, assessment *models.Assessment) error
}

// AssessmentInput is the accepted entry payload. RawScore stays verbatim;
// normalization derives the scored value without touching the input.
type AssessmentInput struct {
	Subject        models.Subject
	AssessmentType string
	Period         models.Period
	SchoolYear     string
	RawScore       string
	EffectiveDate  *time.Time
	AssessmentDate *time.Time
	IsDraft        bool
}

// AssessmentServiceParams bundles AssessmentService dependencies.
type AssessmentServiceParams struct {
	Assessments assessmentWriter
	Enrollments enrollmentReader
	Normalizer  *scoring.Normalizer
	Cache       *CacheService
	Logger      *zap.Logger
}

// AssessmentService records assessment rows. Rows are insert-only; a
// correction is just a newer row, and the selection pipeline keeps the
// most recently entered one.
type AssessmentService struct {
	assessments assessmentWriter
	enrollments enrollmentReader
	normalizer  *scoring.Normalizer
	cache       *CacheService
	logger      *zap.Logger
}

// NewAssessmentService constructs the service.
func NewAssessmentService(p AssessmentServiceParams) *AssessmentService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Normalizer == nil {
		p.Normalizer = scoring.NewNormalizer()
	}
	return &AssessmentService{
		assessments: p.Assessments,
		enrollments: p.Enrollments,
		normalizer:  p.Normalizer,
		cache:       p.Cache,
		logger:      p.Logger,
	}
}

// Record normalizes and stores one assessment. An uninterpretable raw
// score is not an error: the row is stored unscored and simply never
// qualifies for selection.
func (s *AssessmentService) Record(ctx context.Context, enrollmentID string, input AssessmentInput) (*models.Assessment, error) {
	if input.Subject == "" || input.AssessmentType == "" || input.Period == "" || input.SchoolYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_area, assessment_type, assessment_period, and school_year are required")
	}

	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	grade := enrollment.GradeLevel
	normalized := s.normalizer.Normalize(input.AssessmentType, input.RawScore, scoring.ScaleContext{
		Subject:    input.Subject,
		GradeLevel: &grade,
	})
	if normalized == nil && input.RawScore != "" {
		s.logger.Debug("raw score not normalizable",
			zap.String("enrollment_id", enrollmentID),
			zap.String("assessment_type", input.AssessmentType),
			zap.String("raw_score", input.RawScore))
	}

	assessment := &models.Assessment{
		EnrollmentID:    enrollmentID,
		Subject:         input.Subject,
		AssessmentType:  input.AssessmentType,
		Period:          input.Period,
		SchoolYear:      input.SchoolYear,
		RawScore:        input.RawScore,
		ScoreNormalized: normalized,
		EffectiveDate:   input.EffectiveDate,
		AssessmentDate:  input.AssessmentDate,
		IsDraft:         input.IsDraft,
	}
	if err := s.assessments.Insert(ctx, assessment); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, DashboardCachePrefix+":*")
	return assessment, nil
}

// History returns the assessment rows for one enrollment, most recent
// first, drafts excluded unless asked for.
func (s *AssessmentService) History(ctx context.Context, enrollmentID string, subject models.Subject, schoolYear string, includeDraft bool) ([]models.Assessment, error) {
	if _, err := s.enrollments.FindByID(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.assessments.List(ctx, models.AssessmentFilter{
		EnrollmentID: enrollmentID,
		Subject:      subject,
		SchoolYear:   schoolYear,
		IncludeDraft: includeDraft,
	})
}
