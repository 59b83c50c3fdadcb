package controllers

import (
	"bytes"
	"net/http"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StudentController handles a student's own record
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// GetMe returns the caller's record
// @Summary Get my record
// @Description Returns the signed-in student's full mentoring record
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentProfileResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/me [get]
func (c *StudentController) GetMe(ctx *gin.Context) {
	profile, err := c.studentService.GetProfile(ctx.Request.Context(), ctx.GetString(middleware.ContextUserID))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// GetByID returns one student's record for a mentor
// @Summary Get a student's record
// @Description Returns the full mentoring record of the student with the given personal info id
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param uuid query string true "Student personal info id"
// @Success 200 {object} dto.APIResponse{data=dto.StudentProfileResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing uuid"
// @Failure 403 {object} dto.ErrorResponse "Mentor role required"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student [get]
func (c *StudentController) GetByID(ctx *gin.Context) {
	id := ctx.Query("uuid")
	if id == "" {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("uuid query parameter is required"))
		return
	}

	profile, err := c.studentService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// SavePersonalInfo saves the caller's whole record
// @Summary Save my record
// @Description Applies personal info, achievements, marks, semester mentors and counseling in one transaction
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CombinedUpdateRequest true "Record sections to save"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/personal_info [post]
func (c *StudentController) SavePersonalInfo(ctx *gin.Context) {
	var req dto.CombinedUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid record payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	userID := ctx.GetString(middleware.ContextUserID)
	if err := c.studentService.SaveRecord(ctx.Request.Context(), userID, &req); err != nil {
		c.logger.Error().Err(err).Str("studentID", userID).Msg("Failed to save student record")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Student information updated successfully"}))
}

// UploadPhoto replaces the caller's profile photo
// @Summary Upload my photo
// @Description Uploads a profile image, replacing any previous one
// @Tags student
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.PhotoUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file"
// @Failure 413 {object} dto.ErrorResponse "File too large"
// @Failure 415 {object} dto.ErrorResponse "Not an image"
// @Router /student/upload_photo [post]
func (c *StudentController) UploadPhoto(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Photo upload without file")
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("photo file is required"))
		return
	}

	resp, err := c.studentService.UploadPhoto(ctx.Request.Context(), ctx.GetString(middleware.ContextUserID), fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// Report renders the caller's printable record
// @Summary Printable record
// @Description Returns the signed-in student's record as a printable HTML page
// @Tags student
// @Produce html
// @Security BearerAuth
// @Success 200 {string} string "HTML report"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/report [get]
func (c *StudentController) Report(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.studentService.RenderReport(ctx.Request.Context(), ctx.GetString(middleware.ContextUserID), &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
