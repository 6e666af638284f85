package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/literacy-tracker-api/internal/dto"
	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
	"github.com/noah-isme/literacy-tracker-api/pkg/response"
)

// StudentHandler exposes per-student and cohort-priority endpoints.
type StudentHandler struct {
	support     *service.SupportService
	assessments *service.AssessmentService
	identity    *service.IdentityService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(support *service.SupportService, assessments *service.AssessmentService, identity *service.IdentityService) *StudentHandler {
	return &StudentHandler{support: support, assessments: assessments, identity: identity}
}

// Support godoc
// @Summary      Derived support standing for one enrollment and subject
// @Tags         students
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        subject_area query string true "Reading or Math"
// @Param        school_year query string false "School year, defaults to the enrollment's"
// @Success      200 {object} response.Envelope{data=service.StudentSupportView}
// @Failure      404 {object} response.Envelope
// @Security     BearerAuth
// @Router       /students/{id}/support [get]
func (h *StudentHandler) Support(c *gin.Context) {
	var query dto.StudentSupportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	view, err := h.support.StudentSupport(c.Request.Context(),
		c.Param("id"), models.Subject(query.SubjectArea), query.SchoolYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Priorities godoc
// @Summary      Ranked priority students for a cohort
// @Tags         students
// @Produce      json
// @Param        subject_area query string true "Reading or Math"
// @Param        school_year query string true "School year"
// @Param        teacher_name query string false "Teacher filter"
// @Param        class_name query string false "Class filter"
// @Param        grade_level query int false "Grade filter"
// @Success      200 {object} response.Envelope{data=[]service.PriorityStudent}
// @Security     BearerAuth
// @Router       /students/priorities [get]
func (h *StudentHandler) Priorities(c *gin.Context) {
	var query dto.CohortQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	students, err := h.support.CohortPriorities(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil, map[string]interface{}{"count": len(students)})
}

// LegacyID godoc
// @Summary      Legacy student id bridged to an enrollment
// @Tags         students
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Success      200 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Security     BearerAuth
// @Router       /students/{id}/legacy-id [get]
func (h *StudentHandler) LegacyID(c *gin.Context) {
	legacyID, err := h.identity.ResolveLegacy(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"enrollment_id":     c.Param("id"),
		"legacy_student_id": legacyID,
	}, nil)
}

// ByLegacyID godoc
// @Summary      Resolve a legacy student id to its enrollment
// @Tags         students
// @Produce      json
// @Param        legacy_id path int true "Legacy student ID"
// @Param        school_year query string false "School year"
// @Success      200 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Security     BearerAuth
// @Router       /students/legacy/{legacy_id} [get]
func (h *StudentHandler) ByLegacyID(c *gin.Context) {
	legacyID, err := strconv.ParseInt(c.Param("legacy_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "legacy_id must be numeric"))
		return
	}

	bridge, err := h.identity.BridgeToEnrollments(c.Request.Context(), []int64{legacyID}, c.Query("school_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollmentID, ok := bridge[legacyID]
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"legacy_student_id": legacyID,
		"enrollment_id":     enrollmentID,
	}, nil)
}

// RecordAssessment godoc
// @Summary      Record one assessment for an enrollment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        request body dto.CreateAssessmentRequest true "Assessment"
// @Success      201 {object} response.Envelope{data=models.Assessment}
// @Failure      400 {object} response.Envelope
// @Security     BearerAuth
// @Router       /students/{id}/assessments [post]
func (h *StudentHandler) RecordAssessment(c *gin.Context) {
	var req dto.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	input, err := req.ToInput()
	if err != nil {
		response.Error(c, err)
		return
	}

	assessment, err := h.assessments.Record(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// AssessmentHistory godoc
// @Summary      Assessment rows for one enrollment, most recent first
// @Tags         assessments
// @Produce      json
// @Param        id path string true "Enrollment ID"
// @Param        subject_area query string false "Reading or Math"
// @Param        school_year query string false "School year"
// @Param        include_draft query bool false "Include draft rows"
// @Success      200 {object} response.Envelope{data=[]models.Assessment}
// @Security     BearerAuth
// @Router       /students/{id}/assessments [get]
func (h *StudentHandler) AssessmentHistory(c *gin.Context) {
	var query dto.AssessmentHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	rows, err := h.assessments.History(c.Request.Context(), c.Param("id"),
		models.Subject(query.SubjectArea), query.SchoolYear, query.IncludeDraft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"count": len(rows)})
}
