package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// BenchmarkRepository reads the externally curated threshold reference
// data. The core never writes it.
type BenchmarkRepository struct {
	db *sqlx.DB
}

// NewBenchmarkRepository constructs the repository.
func NewBenchmarkRepository(db *sqlx.DB) *BenchmarkRepository {
	return &BenchmarkRepository{db: db}
}

const benchmarkColumns = `id, subject_area, assessment_type, grade_level, assessment_period,
        school_year, support_threshold, benchmark_threshold`

// Find returns the threshold row for an exact five-key match, or nil when
// none exists. Absence is not an error: the tiering engine resolves it to
// Unknown.
func (r *BenchmarkRepository) Find(ctx context.Context, key models.ThresholdKey) (*models.BenchmarkThreshold, error) {
	const query = `SELECT ` + benchmarkColumns + ` FROM benchmark_thresholds
        WHERE subject_area = $1 AND assessment_type = $2 AND grade_level = $3
          AND assessment_period = $4 AND school_year = $5`
	var threshold models.BenchmarkThreshold
	err := r.db.GetContext(ctx, &threshold, query,
		key.Subject, key.AssessmentType, key.GradeLevel, key.Period, key.SchoolYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find threshold: %w", err)
	}
	return &threshold, nil
}

// ListForYear loads every threshold row for a subject and year so cohort
// passes can join in memory instead of per-row queries.
func (r *BenchmarkRepository) ListForYear(ctx context.Context, subject models.Subject, schoolYear string) ([]models.BenchmarkThreshold, error) {
	var builder strings.Builder
	builder.WriteString("SELECT " + benchmarkColumns + " FROM benchmark_thresholds WHERE school_year = $1")
	args := []interface{}{schoolYear}
	if subject != "" {
		args = append(args, subject)
		builder.WriteString(fmt.Sprintf(" AND subject_area = $%d", len(args)))
	}

	var thresholds []models.BenchmarkThreshold
	if err := r.db.SelectContext(ctx, &thresholds, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	return thresholds, nil
}
