package controllers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/helpers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const exportFilename = "students_data.json"

// AdminController handles the record browser over the document store
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// ListRecords returns a filtered page of records
// @Summary List records
// @Description Lists stored records with their summaries. All filters are optional and combine with AND.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Matches name, enrollment number or email"
// @Param semester query string false "Keep records with a mentor for this semester"
// @Param mentor query string false "Keep records with this mentor in any semester"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.RecordResponse}}
// @Failure 403 {object} dto.ErrorResponse "Mentor role required"
// @Router /admin/records [get]
func (c *AdminController) ListRecords(ctx *gin.Context) {
	var query dto.RecordQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.adminService.ListRecords(ctx.Request.Context(), &query, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetRecord returns one record
// @Summary Get a record
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {object} dto.APIResponse{data=dto.RecordResponse}
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /admin/records/{id} [get]
func (c *AdminController) GetRecord(ctx *gin.Context) {
	resp, err := c.adminService.GetRecord(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// UpdateCounseling edits one counseling slot
// @Summary Update a counseling entry
// @Description Replaces topic, date, action taken and remark of counseling slot index (0-19) and saves the whole record
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record id"
// @Param index path int true "Counseling slot, 0-19"
// @Param request body dto.CounselingUpdateRequest true "Slot fields"
// @Success 200 {object} dto.APIResponse{data=dto.RecordResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid index or body"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /admin/records/{id}/counseling/{index} [put]
func (c *AdminController) UpdateCounseling(ctx *gin.Context) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("index must be a number"))
		return
	}

	var req dto.CounselingUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	actor := ctx.GetString(middleware.ContextEmail)
	resp, err := c.adminService.UpdateCounseling(ctx.Request.Context(), ctx.Param("id"), index, &req, actor)
	if err != nil {
		c.logger.Warn().Err(err).Str("recordID", ctx.Param("id")).Int("index", index).Msg("Counseling update failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// MentorNames lists mentor names used across records
// @Summary List mentor names
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MentorNamesResponse}
// @Router /admin/mentors [get]
func (c *AdminController) MentorNames(ctx *gin.Context) {
	resp, err := c.adminService.MentorNames(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Export downloads every record
// @Summary Export records
// @Description Downloads all records as an indented JSON array
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.StudentRecord
// @Router /admin/export [get]
func (c *AdminController) Export(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.adminService.Export(ctx.Request.Context(), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", "attachment; filename="+exportFilename)
	ctx.Data(http.StatusOK, "application/json", buf.Bytes())
}

// Report renders one record as a printable page
// @Summary Printable record
// @Tags admin
// @Produce html
// @Security BearerAuth
// @Param id path string true "Record id"
// @Success 200 {string} string "HTML report"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /admin/records/{id}/report [get]
func (c *AdminController) Report(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.adminService.RenderReport(ctx.Request.Context(), ctx.Param("id"), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
