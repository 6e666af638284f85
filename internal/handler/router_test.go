package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

type fixtureUserRepo struct {
	user models.User
}

func (f *fixtureUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if email == f.user.Email {
		u := f.user
		return &u, nil
	}
	return nil, appErrors.ErrInvalidCredentials
}

type fixtureEnrollmentRepo struct {
	detail models.EnrollmentDetail
}

func (f *fixtureEnrollmentRepo) ListByCohort(_ context.Context, _ models.CohortFilter) ([]models.EnrollmentDetail, error) {
	return []models.EnrollmentDetail{f.detail}, nil
}

func (f *fixtureEnrollmentRepo) FindByID(_ context.Context, id string) (*models.EnrollmentDetail, error) {
	if id != f.detail.ID {
		return nil, appErrors.ErrNotFound
	}
	d := f.detail
	return &d, nil
}

func (f *fixtureEnrollmentRepo) LegacyIDByEnrollment(_ context.Context, id string) (*int64, error) {
	if id != f.detail.ID {
		return nil, appErrors.ErrNotFound
	}
	return f.detail.LegacyStudentID, nil
}

func (f *fixtureEnrollmentRepo) EnrollmentIDsByLegacy(_ context.Context, legacyIDs []int64, _ string) (map[int64]string, error) {
	bridge := map[int64]string{}
	if f.detail.LegacyStudentID == nil {
		return bridge, nil
	}
	for _, id := range legacyIDs {
		if id == *f.detail.LegacyStudentID {
			bridge[id] = f.detail.ID
		}
	}
	return bridge, nil
}

type fixtureAssessmentRepo struct {
	rows []models.Assessment
}

func (f *fixtureAssessmentRepo) List(_ context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, row := range f.rows {
		if filter.EnrollmentID != "" && row.EnrollmentID != filter.EnrollmentID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fixtureAssessmentRepo) ListForEnrollments(_ context.Context, _ []string, _ models.Subject, _ string) ([]models.Assessment, error) {
	return f.rows, nil
}

func (f *fixtureAssessmentRepo) Insert(_ context.Context, assessment *models.Assessment) error {
	assessment.ID = "asm-new"
	assessment.EnteredSeq = int64(len(f.rows) + 1)
	assessment.CreatedAt = time.Now()
	f.rows = append(f.rows, *assessment)
	return nil
}

type fixtureBenchmarkRepo struct {
	threshold models.BenchmarkThreshold
}

func (f *fixtureBenchmarkRepo) Find(_ context.Context, key models.ThresholdKey) (*models.BenchmarkThreshold, error) {
	if f.threshold.Key() == key {
		t := f.threshold
		return &t, nil
	}
	return nil, nil
}

func (f *fixtureBenchmarkRepo) ListForYear(_ context.Context, _ models.Subject, _ string) ([]models.BenchmarkThreshold, error) {
	return []models.BenchmarkThreshold{f.threshold}, nil
}

type fixtureInterventionRepo struct{}

func (fixtureInterventionRepo) MapByEnrollment(_ context.Context, _ []string, _ models.Subject) (map[string][]models.Intervention, error) {
	return map[string][]models.Intervention{}, nil
}

type fixtureSnapshotRepo struct{}

func (fixtureSnapshotRepo) Upsert(_ context.Context, _ models.SupportSnapshot) error { return nil }

func (fixtureSnapshotRepo) ListForPeriod(_ context.Context, _ models.Subject, _ string, _ models.Period) ([]models.SupportSnapshot, error) {
	return nil, nil
}

func floatPtr(v float64) *float64 { return &v }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &fixtureUserRepo{user: models.User{
		ID:           "usr-1",
		Email:        "teacher@school.edu",
		PasswordHash: string(hash),
		FullName:     "Ms. Rivera",
		Role:         models.RoleTeacher,
		IsActive:     true,
	}}

	winterDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	legacyID := int64(1042)
	enrollments := &fixtureEnrollmentRepo{detail: models.EnrollmentDetail{
		Enrollment: models.Enrollment{
			ID:              "enr-1",
			PersonID:        "per-1",
			SchoolYear:      "2024-25",
			GradeLevel:      3,
			ClassName:       "3B",
			TeacherName:     "Ms. Rivera",
			LegacyStudentID: &legacyID,
		},
		StudentName: "Jordan P.",
	}}
	assessments := &fixtureAssessmentRepo{rows: []models.Assessment{{
		ID:              "asm-1",
		EnrollmentID:    "enr-1",
		Subject:         models.SubjectMath,
		AssessmentType:  "Benchmark",
		Period:          models.PeriodWinter,
		SchoolYear:      "2024-25",
		RawScore:        "58",
		ScoreNormalized: floatPtr(58),
		AssessmentDate:  &winterDate,
		EnteredSeq:      1,
		CreatedAt:       winterDate,
	}}}
	benchmarks := &fixtureBenchmarkRepo{threshold: models.BenchmarkThreshold{
		ID:                 "thr-1",
		Subject:            models.SubjectMath,
		AssessmentType:     "Benchmark",
		GradeLevel:         3,
		Period:             models.PeriodWinter,
		SchoolYear:         "2024-25",
		SupportThreshold:   floatPtr(60),
		BenchmarkThreshold: floatPtr(75),
	}}

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		JWT:       config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
	}

	supportService := service.NewSupportService(service.SupportServiceParams{
		Enrollments:   enrollments,
		Assessments:   assessments,
		Thresholds:    benchmarks,
		Interventions: fixtureInterventionRepo{},
		Scoring:       cfg.Scoring,
	})
	metrics := service.NewMetricsService()
	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Evaluator: supportService,
		Snapshots: fixtureSnapshotRepo{},
		Config:    config.DashboardConfig{TopPriorityLimit: 10},
	})
	assessmentService := service.NewAssessmentService(service.AssessmentServiceParams{
		Assessments: assessments,
		Enrollments: enrollments,
	})
	snapshotService := service.NewSnapshotService(service.SnapshotServiceParams{
		Evaluator: supportService,
		Snapshots: fixtureSnapshotRepo{},
		Metrics:   metrics,
	})
	authService := service.NewAuthService(service.AuthServiceParams{
		Users: users,
		JWT:   cfg.JWT,
	})
	exportService := service.NewExportService(service.ExportServiceParams{
		Priorities: supportService,
		Config:     config.ExportsConfig{Enabled: true},
	})

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Auth:      authService,
		Metrics:   metrics,
		Health:    NewHealthHandler(sqlx.NewDb(db, "sqlmock"), nil),
		AuthH:     NewAuthHandler(authService),
		Students:  NewStudentHandler(supportService, assessmentService, service.NewIdentityService(enrollments, zap.NewNop())),
		Dashboard: NewDashboardHandler(dashboardService, exportService),
		Admin:     NewAdminHandler(snapshotService),
	})
}

func loginToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": "teacher@school.edu", "password": "s3cret"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	loginToken(t, router)

	body, _ := json.Marshal(map[string]string{"email": "teacher@school.edu", "password": "wrong"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/enr-1/support?subject_area=Math", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentSupportEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/enr-1/support?subject_area=Math&school_year=2024-25", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data service.StudentSupportView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.StatusNeedsSupport, envelope.Data.Support.Status)
	assert.Equal(t, models.TierIntensive, envelope.Data.Support.Tier)
	assert.Equal(t, models.TrendNoData, envelope.Data.Growth.Trend)
	assert.True(t, envelope.Data.Priority.Score > 0)
}

func TestDashboardEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?subject_area=Math&school_year=2024-25&assessment_period=Winter", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data service.DashboardOverview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.KPI.Total)
	assert.Equal(t, 1, envelope.Data.KPI.Assessed)
	assert.False(t, envelope.Data.KPI.TierMovement.SnapshotAvailable)
}

func TestDashboardEndpointValidation(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?school_year=2024-25", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordAssessmentEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	body, _ := json.Marshal(map[string]interface{}{
		"subject_area":      "Math",
		"assessment_type":   "Benchmark",
		"assessment_period": "Spring",
		"school_year":       "2024-25",
		"raw_score":         "14/15",
		"assessment_date":   "2025-04-10",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/enr-1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data models.Assessment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.ScoreNormalized)
	assert.InDelta(t, 93.33, *envelope.Data.ScoreNormalized, 0.01)
}

func TestAdminRouteForbiddenForTeachers(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	body, _ := json.Marshal(map[string]string{
		"subject_area":      "Math",
		"school_year":       "2024-25",
		"assessment_period": "Winter",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/snapshots/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPriorityReportEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/priority-report?subject_area=Math&school_year=2024-25", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func TestLegacyBridgeEndpoints(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/legacy/1042?school_year=2024-25", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			EnrollmentID string `json:"enrollment_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "enr-1", envelope.Data.EnrollmentID)

	// A legacy id with no enrollment resolves to 404, not an empty bridge.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/students/legacy/9999", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
