package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func assessmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "enrollment_id", "subject_area", "assessment_type", "assessment_period",
		"school_year", "raw_score", "score_normalized", "effective_date", "assessment_date",
		"is_draft", "entered_seq", "created_at",
	})
}

func TestAssessmentRepositoryListFiltersAndExcludesDrafts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	score := 58.0
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := assessmentRows().
		AddRow("a-1", "enr-1", "Math", "Math_Composite", "Winter", "2024-25", "58", score, now, nil, false, int64(7), now)

	mock.ExpectQuery(`SELECT .+ FROM assessments WHERE 1=1 AND enrollment_id = \$1 AND subject_area = \$2 AND school_year = \$3 AND is_draft = FALSE ORDER BY`).
		WithArgs("enr-1", models.SubjectMath, "2024-25").
		WillReturnRows(rows)

	assessments, err := repo.List(context.Background(), models.AssessmentFilter{
		EnrollmentID: "enr-1",
		Subject:      models.SubjectMath,
		SchoolYear:   "2024-25",
	})
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	assert.Equal(t, "a-1", assessments[0].ID)
	require.NotNil(t, assessments[0].ScoreNormalized)
	assert.Equal(t, 58.0, *assessments[0].ScoreNormalized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryListForEnrollmentsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	assessments, err := repo.ListForEnrollments(context.Background(), nil, models.SubjectReading, "2024-25")
	require.NoError(t, err)
	assert.Empty(t, assessments)
}

func TestAssessmentRepositoryInsertReturnsSequence(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	created := time.Date(2025, 2, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assessments")).
		WillReturnRows(sqlmock.NewRows([]string{"entered_seq", "created_at"}).AddRow(int64(42), created))

	score := 93.5
	assessment := &models.Assessment{
		EnrollmentID:    "enr-1",
		Subject:         models.SubjectReading,
		AssessmentType:  "Spelling",
		Period:          models.PeriodWinter,
		SchoolYear:      "2024-25",
		RawScore:        "14/15",
		ScoreNormalized: &score,
	}
	require.NoError(t, repo.Insert(context.Background(), assessment))
	assert.NotEmpty(t, assessment.ID) // uuid assigned on insert
	assert.Equal(t, int64(42), assessment.EnteredSeq)
	assert.Equal(t, created, assessment.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
