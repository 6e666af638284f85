package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
)

// PriorityReportRow pairs a priority record with the display fields the
// printed report needs.
type PriorityReportRow struct {
	StudentName string
	GradeLevel  int
	TeacherName string
	Record      models.PriorityRecord
}

// PriorityReportExporter renders the ranked priority list as a printable
// PDF handout for intervention meetings.
type PriorityReportExporter struct {
	schoolName string
}

// NewPriorityReportExporter constructs the exporter.
func NewPriorityReportExporter(schoolName string) *PriorityReportExporter {
	return &PriorityReportExporter{schoolName: schoolName}
}

// Render produces the PDF. Rows are expected pre-sorted by priority score
// descending; the exporter does not reorder them.
func (e *PriorityReportExporter) Render(subject models.Subject, asOf time.Time, rows []PriorityReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	title := fmt.Sprintf("%s Priority Students", subject)
	if e.schoolName != "" {
		title = fmt.Sprintf("%s - %s", e.schoolName, title)
	}
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "As of "+asOf.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []struct {
		label string
		width float64
	}{
		{"Student", 55},
		{"Grade", 15},
		{"Teacher", 40},
		{"Tier", 25},
		{"Trend", 25},
		{"Score", 15},
		{"Reasons", 102},
	}

	pdf.SetFont("Arial", "B", 9)
	for _, h := range headers {
		pdf.CellFormat(h.width, 8, h.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range rows {
		pdf.CellFormat(headers[0].width, 7, row.StudentName, "1", 0, "", false, 0, "")
		pdf.CellFormat(headers[1].width, 7, fmt.Sprintf("%d", row.GradeLevel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(headers[2].width, 7, row.TeacherName, "1", 0, "", false, 0, "")
		pdf.CellFormat(headers[3].width, 7, string(row.Record.Tier), "1", 0, "C", false, 0, "")
		pdf.CellFormat(headers[4].width, 7, string(row.Record.Trend), "1", 0, "C", false, 0, "")
		pdf.CellFormat(headers[5].width, 7, fmt.Sprintf("%d", row.Record.Score), "1", 0, "C", false, 0, "")
		pdf.CellFormat(headers[6].width, 7, scoring.ReasonsText(row.Record.Reasons), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render priority report: %w", err)
	}
	return buf.Bytes(), nil
}
