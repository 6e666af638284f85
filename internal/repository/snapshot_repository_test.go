package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

func TestSnapshotRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectExec(`INSERT INTO support_snapshots .+ ON CONFLICT \(enrollment_id, subject_area, school_year, assessment_period\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	score := 58.0
	snapshot := models.SupportSnapshot{
		EnrollmentID: "enr-1",
		Subject:      models.SubjectMath,
		SchoolYear:   "2024-25",
		Period:       models.PeriodWinter,
		LatestScore:  &score,
		Status:       string(models.StatusNeedsSupport),
		Tier:         models.TierIntensive,
		Trend:        models.TrendImproving,
		ComputedAt:   time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(context.Background(), snapshot))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryListForPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	rows := sqlmock.NewRows([]string{
		"enrollment_id", "subject_area", "school_year", "assessment_period",
		"latest_score", "support_status", "tier", "trend", "computed_at",
	}).AddRow("enr-1", "Math", "2024-25", "Fall", 55.0, "Needs Support", "Intensive", "No Data", time.Now())

	mock.ExpectQuery(`SELECT .+ FROM support_snapshots\s+WHERE subject_area = \$1 AND school_year = \$2 AND assessment_period = \$3`).
		WithArgs(models.SubjectMath, "2024-25", models.PeriodFall).
		WillReturnRows(rows)

	snapshots, err := repo.ListForPeriod(context.Background(), models.SubjectMath, "2024-25", models.PeriodFall)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, models.TierIntensive, snapshots[0].Tier)
	require.NoError(t, mock.ExpectationsWereMet())
}
