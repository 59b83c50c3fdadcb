package routes

import (
	"github.com/deptce/mentorship/internal/app/controllers"
	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth    *controllers.AuthController
	Student *controllers.StudentController
	Mentor  *controllers.MentorController
	Admin   *controllers.AdminController
	Health  *controllers.HealthController
	Feed    gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health-check", c.Health.Liveness)

	// Google sign-in lives outside /api/v1 so its redirect URL stays stable
	oauth := router.Group("/api/auth")
	{
		oauth.GET("/login", c.Auth.OAuthLogin)
		oauth.GET("/callback", c.Auth.OAuthCallback)
	}

	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Health)
	v1.POST("/mentor/login", c.Auth.MentorLogin)

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	mentorOnly := authMiddleware.RoleRequired(models.RoleMentor)
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)

	authenticated.POST("/auth/logout", c.Auth.Logout)

	student := authenticated.Group("/student")
	{
		student.GET("", mentorOnly, c.Student.GetByID)
		student.GET("/me", studentOnly, c.Student.GetMe)
		student.POST("/personal_info", studentOnly, c.Student.SavePersonalInfo)
		student.POST("/upload_photo", studentOnly, c.Student.UploadPhoto)
		student.GET("/report", studentOnly, c.Student.Report)
	}

	mentor := authenticated.Group("/mentor", mentorOnly)
	{
		mentor.GET("/students", c.Mentor.ListStudents)
		mentor.POST("/students/assign", c.Mentor.AssignStudent)
		mentor.POST("/ban", c.Mentor.SetBan)
	}

	admin := authenticated.Group("/admin", mentorOnly)
	{
		admin.GET("/records", c.Admin.ListRecords)
		admin.GET("/records/:id", c.Admin.GetRecord)
		admin.PUT("/records/:id/counseling/:index", c.Admin.UpdateCounseling)
		admin.GET("/records/:id/report", c.Admin.Report)
		admin.GET("/mentors", c.Admin.MentorNames)
		admin.GET("/export", c.Admin.Export)
		if c.Feed != nil {
			admin.GET("/ws", c.Feed)
		}
	}
}
