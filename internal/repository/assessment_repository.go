package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// AssessmentRepository handles persistence of assessment rows. Rows are
// insert-only; entered_seq comes from a bigserial so insertion order is
// total even within one timestamp.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, enrollment_id, subject_area, assessment_type, assessment_period,
        school_year, raw_score, score_normalized, effective_date, assessment_date, is_draft,
        entered_seq, created_at`

// List returns assessment rows matching the filter, most recent first.
func (r *AssessmentRepository) List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	var builder strings.Builder
	builder.WriteString("SELECT " + assessmentColumns + " FROM assessments WHERE 1=1")
	var args []interface{}

	if filter.EnrollmentID != "" {
		args = append(args, filter.EnrollmentID)
		builder.WriteString(fmt.Sprintf(" AND enrollment_id = $%d", len(args)))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		builder.WriteString(fmt.Sprintf(" AND subject_area = $%d", len(args)))
	}
	if filter.SchoolYear != "" {
		args = append(args, filter.SchoolYear)
		builder.WriteString(fmt.Sprintf(" AND school_year = $%d", len(args)))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		builder.WriteString(fmt.Sprintf(" AND assessment_period = $%d", len(args)))
	}
	if !filter.IncludeDraft {
		builder.WriteString(" AND is_draft = FALSE")
	}
	builder.WriteString(" ORDER BY COALESCE(effective_date, assessment_date, created_at) DESC, entered_seq DESC")

	var rows []models.Assessment
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return rows, nil
}

// ListForEnrollments fetches all non-draft rows for a set of enrollments in
// one query, for cohort aggregation.
func (r *AssessmentRepository) ListForEnrollments(ctx context.Context, enrollmentIDs []string, subject models.Subject, schoolYear string) ([]models.Assessment, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}
	var builder strings.Builder
	builder.WriteString("SELECT " + assessmentColumns + " FROM assessments WHERE enrollment_id = ANY($1) AND is_draft = FALSE")
	args := []interface{}{pq.Array(enrollmentIDs)}

	if subject != "" {
		args = append(args, subject)
		builder.WriteString(fmt.Sprintf(" AND subject_area = $%d", len(args)))
	}
	if schoolYear != "" {
		args = append(args, schoolYear)
		builder.WriteString(fmt.Sprintf(" AND school_year = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY enrollment_id, COALESCE(effective_date, assessment_date, created_at) DESC, entered_seq DESC")

	var rows []models.Assessment
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list cohort assessments: %w", err)
	}
	return rows, nil
}

// Insert stores a new assessment row. Corrections are new rows too; the
// selector resolves which row is current.
func (r *AssessmentRepository) Insert(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	const query = `INSERT INTO assessments
        (id, enrollment_id, subject_area, assessment_type, assessment_period, school_year,
         raw_score, score_normalized, effective_date, assessment_date, is_draft)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING entered_seq, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		assessment.ID,
		assessment.EnrollmentID,
		assessment.Subject,
		assessment.AssessmentType,
		assessment.Period,
		assessment.SchoolYear,
		assessment.RawScore,
		assessment.ScoreNormalized,
		assessment.EffectiveDate,
		assessment.AssessmentDate,
		assessment.IsDraft,
	)
	if err := row.Scan(&assessment.EnteredSeq, &assessment.CreatedAt); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}
