package controllers

import (
	"net/http"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MentorController handles a mentor's student list
type MentorController struct {
	mentorService services.MentorService
	logger        zerolog.Logger
}

// NewMentorController creates a new MentorController
func NewMentorController(mentorService services.MentorService, logger zerolog.Logger) *MentorController {
	return &MentorController{
		mentorService: mentorService,
		logger:        logger,
	}
}

// ListStudents returns the caller's students
// @Summary List my students
// @Description Lists the students assigned to the calling mentor with their record summaries
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param name query string false "Matches name, enrollment number or college email"
// @Param semester query string false "Keep students who have saved a record, via the marks row of this semester (sem1..sem8)"
// @Param is_ban query bool false "Filter on the ban flag"
// @Success 200 {object} dto.APIResponse{data=[]dto.MentorStudentItem}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Mentor role required"
// @Router /mentor/students [get]
func (c *MentorController) ListStudents(ctx *gin.Context) {
	var filter dto.MentorStudentFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	items, err := c.mentorService.ListStudents(ctx.Request.Context(), ctx.GetString(middleware.ContextUserID), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if items == nil {
		items = []dto.MentorStudentItem{}
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(items))
}

// AssignStudent assigns a student to the caller
// @Summary Assign a student
// @Description Assigns the student with the given college email to the calling mentor
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param email query string true "Student college email"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /mentor/students/assign [post]
func (c *MentorController) AssignStudent(ctx *gin.Context) {
	var req dto.AssignRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	mentorID := ctx.GetString(middleware.ContextUserID)
	if err := c.mentorService.AssignStudent(ctx.Request.Context(), mentorID, req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("mentorID", mentorID).Str("email", req.Email).Msg("Student assigned")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Student " + req.Email + " has been assigned successfully."}))
}

// SetBan bans or unbans a student
// @Summary Ban or unban a student
// @Description Sets the ban flag of the student with the given college email. Banned students cannot sign in.
// @Tags mentor
// @Produce json
// @Security BearerAuth
// @Param email query string true "Student college email"
// @Param is_ban query bool true "New ban flag"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid parameters"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /mentor/ban [post]
func (c *MentorController) SetBan(ctx *gin.Context) {
	var req dto.BanRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.mentorService.SetBan(ctx.Request.Context(), ctx.GetString(middleware.ContextUserID), req.Email, *req.IsBan)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
