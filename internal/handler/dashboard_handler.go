package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/literacy-tracker-api/internal/dto"
	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
	"github.com/noah-isme/literacy-tracker-api/pkg/response"
)

// DashboardHandler exposes the cohort KPI dashboard and its exports.
type DashboardHandler struct {
	dashboard *service.DashboardService
	exports   *service.ExportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService, exports *service.ExportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, exports: exports}
}

// Overview godoc
// @Summary      Cohort KPI dashboard
// @Tags         dashboard
// @Produce      json
// @Param        subject_area query string true "Reading or Math"
// @Param        school_year query string true "School year"
// @Param        assessment_period query string false "Period for tier-movement comparison"
// @Param        teacher_name query string false "Teacher filter"
// @Param        class_name query string false "Class filter"
// @Param        grade_level query int false "Grade filter"
// @Success      200 {object} response.Envelope{data=service.DashboardOverview}
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	var query dto.CohortQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	overview, err := h.dashboard.Overview(c.Request.Context(), query.Filter(), models.Period(query.Period))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// PriorityReport godoc
// @Summary      Priority students report as PDF
// @Tags         dashboard
// @Produce      application/pdf
// @Param        subject_area query string true "Reading or Math"
// @Param        school_year query string true "School year"
// @Param        teacher_name query string false "Teacher filter"
// @Param        class_name query string false "Class filter"
// @Param        grade_level query int false "Grade filter"
// @Success      200 {file} binary
// @Security     BearerAuth
// @Router       /dashboard/priority-report [get]
func (h *DashboardHandler) PriorityReport(c *gin.Context) {
	var query dto.CohortQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	pdf, err := h.exports.PriorityReportPDF(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("priority-%s-%s.pdf", query.SubjectArea, query.SchoolYear)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
