package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/literacy-tracker-api/internal/dto"
	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	appErrors "github.com/noah-isme/literacy-tracker-api/pkg/errors"
	"github.com/noah-isme/literacy-tracker-api/pkg/response"
)

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	snapshots *service.SnapshotService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(snapshots *service.SnapshotService) *AdminHandler {
	return &AdminHandler{snapshots: snapshots}
}

// RunSnapshot godoc
// @Summary      Run a tier-history snapshot batch
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.SnapshotRunRequest true "Batch key"
// @Success      200 {object} response.Envelope
// @Failure      400 {object} response.Envelope
// @Security     BearerAuth
// @Router       /admin/snapshots/run [post]
func (h *AdminHandler) RunSnapshot(c *gin.Context) {
	var req dto.SnapshotRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	written, err := h.snapshots.Run(c.Request.Context(), service.SnapshotRun{
		Subject:    models.Subject(req.SubjectArea),
		SchoolYear: req.SchoolYear,
		Period:     models.Period(req.Period),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rows_written": written}, nil)
}
