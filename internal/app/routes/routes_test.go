package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deptce/mentorship/internal/app/controllers"
	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter_AccessControl(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Hour, TokenIssuer: "test"})

	router := gin.New()
	SetupRouter(router, Controllers{
		Auth:    controllers.NewAuthController(nil, "", false, zerolog.Nop()),
		Student: controllers.NewStudentController(nil, zerolog.Nop()),
		Mentor:  controllers.NewMentorController(nil, zerolog.Nop()),
		Admin:   controllers.NewAdminController(nil, zerolog.Nop()),
		Health:  controllers.NewHealthController(nil),
		Feed:    func(c *gin.Context) { c.Status(http.StatusSwitchingProtocols) },
	}, middleware.NewAuthMiddleware(jwtService, nil))

	token := func(role models.RoleType) string {
		tok, err := jwtService.GenerateAccessToken(auth.Principal{ID: "id-1", Email: "x@college.edu", Role: role})
		require.NoError(t, err)
		return "Bearer " + tok.AccessToken
	}
	student, mentor := token(models.RoleStudent), token(models.RoleMentor)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"liveness is public", http.MethodGet, "/health-check", "", http.StatusOK},
		{"records need a token", http.MethodGet, "/api/v1/admin/records", "", http.StatusUnauthorized},
		{"students cannot browse records", http.MethodGet, "/api/v1/admin/records", student, http.StatusForbidden},
		{"students cannot ban", http.MethodPost, "/api/v1/mentor/ban", student, http.StatusForbidden},
		{"students cannot read others", http.MethodGet, "/api/v1/student?uuid=x", student, http.StatusForbidden},
		{"mentors have no own record", http.MethodGet, "/api/v1/student/me", mentor, http.StatusForbidden},
		{"mentors cannot save records", http.MethodPost, "/api/v1/student/personal_info", mentor, http.StatusForbidden},
		{"feed reaches handler", http.MethodGet, "/api/v1/admin/ws", mentor, http.StatusSwitchingProtocols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
