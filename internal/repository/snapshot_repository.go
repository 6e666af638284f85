package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// SnapshotRepository persists the derived support history written by the
// batch job. Writes are keyed upserts so overlapping or retried runs never
// duplicate rows.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Upsert writes one snapshot row, replacing any existing row for the same
// (enrollment, subject, year, period) key.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot models.SupportSnapshot) error {
	const query = `INSERT INTO support_snapshots
        (enrollment_id, subject_area, school_year, assessment_period,
         latest_score, support_status, tier, trend, computed_at)
        VALUES (:enrollment_id, :subject_area, :school_year, :assessment_period,
                :latest_score, :support_status, :tier, :trend, :computed_at)
        ON CONFLICT (enrollment_id, subject_area, school_year, assessment_period)
        DO UPDATE SET latest_score = EXCLUDED.latest_score,
                      support_status = EXCLUDED.support_status,
                      tier = EXCLUDED.tier,
                      trend = EXCLUDED.trend,
                      computed_at = EXCLUDED.computed_at`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// ListForPeriod returns the stored snapshots for one subject/year/period.
func (r *SnapshotRepository) ListForPeriod(ctx context.Context, subject models.Subject, schoolYear string, period models.Period) ([]models.SupportSnapshot, error) {
	const query = `SELECT enrollment_id, subject_area, school_year, assessment_period,
        latest_score, support_status, tier, trend, computed_at
        FROM support_snapshots
        WHERE subject_area = $1 AND school_year = $2 AND assessment_period = $3`
	var snapshots []models.SupportSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, subject, schoolYear, period); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snapshots, nil
}
