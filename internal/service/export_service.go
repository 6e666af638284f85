package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
	"github.com/noah-isme/literacy-tracker-api/pkg/export"
)

type priorityLister interface {
	CohortPriorities(ctx context.Context, filter models.CohortFilter) ([]PriorityStudent, error)
}

// ExportServiceParams bundles ExportService dependencies.
type ExportServiceParams struct {
	Priorities priorityLister
	Config     config.ExportsConfig
	Logger     *zap.Logger
	Now        func() time.Time
}

// ExportService renders printable reports from the derived views.
type ExportService struct {
	priorities priorityLister
	exporter   *export.PriorityReportExporter
	enabled    bool
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs the service.
func NewExportService(p ExportServiceParams) *ExportService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &ExportService{
		priorities: p.Priorities,
		exporter:   export.NewPriorityReportExporter(p.Config.SchoolName),
		enabled:    p.Config.Enabled,
		logger:     p.Logger,
		now:        p.Now,
	}
}

// PriorityReportPDF renders the ranked priority list for a cohort as a PDF
// handout.
func (s *ExportService) PriorityReportPDF(ctx context.Context, filter models.CohortFilter) ([]byte, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	students, err := s.priorities.CohortPriorities(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]export.PriorityReportRow, len(students))
	for i, student := range students {
		rows[i] = export.PriorityReportRow{
			StudentName: student.Enrollment.StudentName,
			GradeLevel:  student.Enrollment.GradeLevel,
			TeacherName: student.Enrollment.TeacherName,
			Record:      student.Record,
		}
	}
	return s.exporter.Render(filter.Subject, s.now(), rows)
}
