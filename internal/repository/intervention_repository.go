package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

// InterventionRepository reads intervention rows. Parts of the store still
// key interventions by the legacy numeric student id, so lookups resolve
// through the enrollment bridge; legacy rows with no resolvable enrollment
// are excluded rather than surfaced as errors.
type InterventionRepository struct {
	db *sqlx.DB
}

// NewInterventionRepository constructs the repository.
func NewInterventionRepository(db *sqlx.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

type interventionRow struct {
	models.Intervention
	ResolvedEnrollmentID *string `db:"resolved_enrollment_id"`
}

// MapByEnrollment returns interventions grouped by enrollment id for the
// given enrollments, including rows reachable only through the legacy
// bridge. Subject-less rows apply to every subject, matching the legacy
// data entry habits, so an empty subject filter keeps them too.
func (r *InterventionRepository) MapByEnrollment(ctx context.Context, enrollmentIDs []string, subject models.Subject) (map[string][]models.Intervention, error) {
	if len(enrollmentIDs) == 0 {
		return map[string][]models.Intervention{}, nil
	}

	var builder strings.Builder
	builder.WriteString(`SELECT i.id, i.enrollment_id, i.legacy_student_id, i.subject_area,
        i.status, i.start_date, i.end_date,
        COALESCE(i.enrollment_id, e.id) AS resolved_enrollment_id
        FROM interventions i
        LEFT JOIN enrollments e ON e.legacy_student_id = i.legacy_student_id
        WHERE (i.enrollment_id = ANY($1) OR e.id = ANY($1))`)
	args := []interface{}{pq.Array(enrollmentIDs)}

	if subject != "" {
		args = append(args, subject)
		builder.WriteString(fmt.Sprintf(" AND (i.subject_area = $%d OR i.subject_area = '')", len(args)))
	}

	var rows []interventionRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list interventions: %w", err)
	}

	grouped := make(map[string][]models.Intervention)
	for _, row := range rows {
		if row.ResolvedEnrollmentID == nil {
			continue
		}
		grouped[*row.ResolvedEnrollmentID] = append(grouped[*row.ResolvedEnrollmentID], row.Intervention)
	}
	return grouped, nil
}
