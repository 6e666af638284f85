package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

// EnrollmentRepository handles enrollment lookups and the legacy identity
// bridge.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `e.id, e.person_id, e.school_year, e.grade_level, e.class_name,
        e.teacher_name, e.legacy_student_id, e.created_at`

// ListByCohort returns enrollments matching the cohort filter with the
// student's display name joined in.
func (r *EnrollmentRepository) ListByCohort(ctx context.Context, filter models.CohortFilter) ([]models.EnrollmentDetail, error) {
	var builder strings.Builder
	builder.WriteString("SELECT " + enrollmentColumns + `, p.full_name AS student_name
        FROM enrollments e
        JOIN people p ON p.id = e.person_id
        WHERE p.active = TRUE`)
	var args []interface{}

	if filter.TeacherName != "" {
		args = append(args, filter.TeacherName)
		builder.WriteString(fmt.Sprintf(" AND e.teacher_name = $%d", len(args)))
	}
	if filter.SchoolYear != "" {
		args = append(args, filter.SchoolYear)
		builder.WriteString(fmt.Sprintf(" AND e.school_year = $%d", len(args)))
	}
	if filter.GradeLevel != nil {
		args = append(args, *filter.GradeLevel)
		builder.WriteString(fmt.Sprintf(" AND e.grade_level = $%d", len(args)))
	}
	if filter.ClassName != "" {
		args = append(args, filter.ClassName)
		builder.WriteString(fmt.Sprintf(" AND e.class_name = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY p.full_name, e.created_at")

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list cohort enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns one enrollment with the student name joined in.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT ` + enrollmentColumns + `, p.full_name AS student_name
        FROM enrollments e
        JOIN people p ON p.id = e.person_id
        WHERE e.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// LegacyIDByEnrollment resolves the legacy numeric student id bridged to an
// enrollment. nil with no error means the enrollment has no legacy id.
func (r *EnrollmentRepository) LegacyIDByEnrollment(ctx context.Context, enrollmentID string) (*int64, error) {
	const query = `SELECT legacy_student_id FROM enrollments WHERE id = $1`
	var legacyID *int64
	if err := r.db.GetContext(ctx, &legacyID, query, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("resolve legacy id: %w", err)
	}
	return legacyID, nil
}

// EnrollmentIDsByLegacy maps legacy student ids back to enrollment ids for
// the given school year. Legacy ids with no enrollment are simply absent
// from the result.
func (r *EnrollmentRepository) EnrollmentIDsByLegacy(ctx context.Context, legacyIDs []int64, schoolYear string) (map[int64]string, error) {
	if len(legacyIDs) == 0 {
		return map[int64]string{}, nil
	}
	var builder strings.Builder
	builder.WriteString("SELECT legacy_student_id, id FROM enrollments WHERE legacy_student_id = ANY($1)")
	args := []interface{}{pq.Array(legacyIDs)}
	if schoolYear != "" {
		args = append(args, schoolYear)
		builder.WriteString(fmt.Sprintf(" AND school_year = $%d", len(args)))
	}

	type bridgeRow struct {
		LegacyStudentID int64  `db:"legacy_student_id"`
		ID              string `db:"id"`
	}
	var rows []bridgeRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("bridge legacy ids: %w", err)
	}

	bridge := make(map[int64]string, len(rows))
	for _, row := range rows {
		bridge[row.LegacyStudentID] = row.ID
	}
	return bridge, nil
}
