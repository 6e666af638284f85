package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
)

type stubEnrollments struct {
	details []models.EnrollmentDetail
}

func (s *stubEnrollments) ListByCohort(_ context.Context, filter models.CohortFilter) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, detail := range s.details {
		if filter.TeacherName != "" && detail.TeacherName != filter.TeacherName {
			continue
		}
		if filter.SchoolYear != "" && detail.SchoolYear != filter.SchoolYear {
			continue
		}
		out = append(out, detail)
	}
	return out, nil
}

func (s *stubEnrollments) FindByID(_ context.Context, id string) (*models.EnrollmentDetail, error) {
	for _, detail := range s.details {
		if detail.ID == id {
			d := detail
			return &d, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

type stubAssessments struct {
	rows     []models.Assessment
	inserted []models.Assessment
	nextSeq  int64
}

func (s *stubAssessments) List(_ context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, row := range s.rows {
		if filter.EnrollmentID != "" && row.EnrollmentID != filter.EnrollmentID {
			continue
		}
		if filter.Subject != "" && row.Subject != filter.Subject {
			continue
		}
		if filter.SchoolYear != "" && row.SchoolYear != filter.SchoolYear {
			continue
		}
		if !filter.IncludeDraft && row.IsDraft {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubAssessments) ListForEnrollments(_ context.Context, enrollmentIDs []string, subject models.Subject, schoolYear string) ([]models.Assessment, error) {
	wanted := make(map[string]bool, len(enrollmentIDs))
	for _, id := range enrollmentIDs {
		wanted[id] = true
	}
	var out []models.Assessment
	for _, row := range s.rows {
		if !wanted[row.EnrollmentID] || row.IsDraft {
			continue
		}
		if subject != "" && row.Subject != subject {
			continue
		}
		if schoolYear != "" && row.SchoolYear != schoolYear {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *stubAssessments) Insert(_ context.Context, assessment *models.Assessment) error {
	s.nextSeq++
	if assessment.ID == "" {
		assessment.ID = "generated"
	}
	assessment.EnteredSeq = s.nextSeq
	assessment.CreatedAt = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	s.inserted = append(s.inserted, *assessment)
	s.rows = append(s.rows, *assessment)
	return nil
}

type stubThresholds struct {
	rows []models.BenchmarkThreshold
}

func (s *stubThresholds) Find(_ context.Context, key models.ThresholdKey) (*models.BenchmarkThreshold, error) {
	for _, row := range s.rows {
		if row.Key() == key {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (s *stubThresholds) ListForYear(_ context.Context, subject models.Subject, schoolYear string) ([]models.BenchmarkThreshold, error) {
	var out []models.BenchmarkThreshold
	for _, row := range s.rows {
		if row.SchoolYear != schoolYear {
			continue
		}
		if subject != "" && row.Subject != subject {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type stubInterventions struct {
	byEnrollment map[string][]models.Intervention
}

func (s *stubInterventions) MapByEnrollment(_ context.Context, enrollmentIDs []string, _ models.Subject) (map[string][]models.Intervention, error) {
	out := make(map[string][]models.Intervention)
	for _, id := range enrollmentIDs {
		if rows, ok := s.byEnrollment[id]; ok {
			out[id] = rows
		}
	}
	return out, nil
}

type snapshotKey struct {
	EnrollmentID string
	Subject      models.Subject
	SchoolYear   string
	Period       models.Period
}

type stubSnapshots struct {
	rows map[snapshotKey]models.SupportSnapshot
}

func newStubSnapshots() *stubSnapshots {
	return &stubSnapshots{rows: make(map[snapshotKey]models.SupportSnapshot)}
}

func (s *stubSnapshots) Upsert(_ context.Context, snapshot models.SupportSnapshot) error {
	key := snapshotKey{snapshot.EnrollmentID, snapshot.Subject, snapshot.SchoolYear, snapshot.Period}
	s.rows[key] = snapshot
	return nil
}

func (s *stubSnapshots) ListForPeriod(_ context.Context, subject models.Subject, schoolYear string, period models.Period) ([]models.SupportSnapshot, error) {
	var out []models.SupportSnapshot
	for key, snapshot := range s.rows {
		if key.Subject == subject && key.SchoolYear == schoolYear && key.Period == period {
			out = append(out, snapshot)
		}
	}
	return out, nil
}

// memoryCacheRepo is an in-process CacheRepository for tests, storing JSON
// the same way the redis-backed one does.
type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	// Pattern support in tests is prefix-only, which is all the services use.
	prefix := pattern
	if n := len(prefix); n > 0 && prefix[n-1] == '*' {
		prefix = prefix[:n-1]
	}
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

// countingEvaluator wraps canned evaluations and records call counts.
type countingEvaluator struct {
	evaluations []cohortEvaluation
	calls       int
}

func (c *countingEvaluator) evaluateCohort(_ context.Context, _ models.CohortFilter, _ time.Time) ([]cohortEvaluation, error) {
	c.calls++
	return c.evaluations, nil
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(v int) *int { return &v }
