package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/services"
	"github.com/deptce/mentorship/internal/middleware"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	services.AuthService
	login     func(*dto.LoginRequest) (*dto.TokenResponse, error)
	complete  func(code string) (*dto.OAuthResult, error)
	loginURL  func(state string) (string, error)
	loggedOut string
}

func (f *fakeAuthService) MentorLogin(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	return f.login(req)
}

func (f *fakeAuthService) OAuthLoginURL(state string) (string, error) { return f.loginURL(state) }

func (f *fakeAuthService) CompleteOAuth(_ context.Context, code string) (*dto.OAuthResult, error) {
	return f.complete(code)
}

func (f *fakeAuthService) Logout(_ context.Context, claims *auth.Claims) error {
	f.loggedOut = claims.ID
	return nil
}

type fakeStudentService struct {
	services.StudentService
	saved   map[string]*dto.CombinedUpdateRequest
	profile *dto.StudentProfileResponse
}

func (f *fakeStudentService) GetProfile(_ context.Context, id string) (*dto.StudentProfileResponse, error) {
	if f.profile == nil || id != "stu-1" {
		return nil, apperrors.ErrStudentNotFound
	}
	return f.profile, nil
}

func (f *fakeStudentService) SaveRecord(_ context.Context, id string, req *dto.CombinedUpdateRequest) error {
	f.saved[id] = req
	return nil
}

func (f *fakeStudentService) UploadPhoto(_ context.Context, id string, fh *multipart.FileHeader) (*dto.PhotoUploadResponse, error) {
	return &dto.PhotoUploadResponse{PhotoURL: "/uploads/users/" + id + "?name=" + fh.Filename}, nil
}

func (f *fakeStudentService) RenderReport(_ context.Context, id string, w io.Writer) error {
	_, err := fmt.Fprintf(w, "<html>%s</html>", id)
	return err
}

type fakeMentorService struct {
	services.MentorService
	filter *dto.MentorStudentFilter
}

func (f *fakeMentorService) ListStudents(_ context.Context, _ string, filter *dto.MentorStudentFilter) ([]dto.MentorStudentItem, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeMentorService) SetBan(_ context.Context, _ string, email string, isBan bool) (*dto.SuccessResponse, error) {
	if email == "ghost@college.edu" {
		return nil, apperrors.ErrStudentNotFound
	}
	return &dto.SuccessResponse{Message: fmt.Sprintf("%s %v", email, isBan)}, nil
}

type fakeAdminService struct {
	services.AdminService
	page, size int
	actor      string
}

func (f *fakeAdminService) ListRecords(_ context.Context, q *dto.RecordQuery, page, size int) (*dto.PaginatedResponse, error) {
	f.page, f.size = page, size
	return &dto.PaginatedResponse{Items: []dto.RecordResponse{{ID: q.Search}}}, nil
}

func (f *fakeAdminService) UpdateCounseling(_ context.Context, id string, index int, _ *dto.CounselingUpdateRequest, actor string) (*dto.RecordResponse, error) {
	f.actor = actor
	if index < 0 || index >= models.CounselingSlots {
		return nil, apperrors.ErrSlotOutOfRange
	}
	return &dto.RecordResponse{ID: id}, nil
}

func (f *fakeAdminService) Export(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "[]\n")
	return err
}

func init() {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()
}

// asUser stands in for JWTAuth in handler tests
func asUser(id, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextEmail, email)
		c.Set(middleware.ContextClaims, &auth.Claims{UserID: id, Email: email})
		c.Next()
	}
}

func perform(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthController_MentorLogin(t *testing.T) {
	svc := &fakeAuthService{login: func(req *dto.LoginRequest) (*dto.TokenResponse, error) {
		if req.Password != "secret" {
			return nil, apperrors.ErrInvalidCredentials
		}
		return &dto.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 60}, nil
	}}
	r := gin.New()
	r.POST("/login", NewAuthController(svc, "http://localhost:3000", false, zerolog.Nop()).MentorLogin)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"success", `{"email":"m@college.edu","password":"secret"}`, http.StatusOK},
		{"wrong password", `{"email":"m@college.edu","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"m@college.edu"}`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"secret"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/login", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := perform(r, http.MethodPost, "/login", strings.NewReader(tests[0].body), "application/json")
	var resp struct {
		Data dto.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Data.AccessToken)
}

func TestAuthController_OAuthFlow(t *testing.T) {
	svc := &fakeAuthService{
		loginURL: func(state string) (string, error) { return "https://accounts.example/auth?state=" + state, nil },
		complete: func(code string) (*dto.OAuthResult, error) {
			return &dto.OAuthResult{Type: services.OAuthSuccess, AccessToken: "tok-" + code}, nil
		},
	}
	ctrl := NewAuthController(svc, "http://localhost:3000", false, zerolog.Nop())
	r := gin.New()
	r.GET("/api/auth/login", ctrl.OAuthLogin)
	r.GET("/api/auth/callback", ctrl.OAuthCallback)

	w := perform(r, http.MethodGet, "/api/auth/login", nil, "")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	state := cookies[0].Value
	assert.Contains(t, w.Header().Get("Location"), "state="+state)

	t.Run("matching state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=abc&state="+state, nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_SUCCESS")
		assert.Contains(t, w.Body.String(), "tok-abc")
		assert.Contains(t, w.Body.String(), "http://localhost:3000")
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=abc&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "AUTH_ERROR")
		assert.NotContains(t, w.Body.String(), "tok-abc")
	})
}

func TestAuthController_OAuthDisabled(t *testing.T) {
	svc := &fakeAuthService{loginURL: func(string) (string, error) { return "", services.ErrOAuthDisabled }}
	r := gin.New()
	r.GET("/login", NewAuthController(svc, "", false, zerolog.Nop()).OAuthLogin)

	w := perform(r, http.MethodGet, "/login", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthController_Logout(t *testing.T) {
	svc := &fakeAuthService{}
	r := gin.New()
	r.POST("/logout", asUser("m-1", "m@college.edu"), func(c *gin.Context) {
		claims, _ := middleware.ClaimsFrom(c)
		claims.ID = "jti-1"
		c.Next()
	}, NewAuthController(svc, "", false, zerolog.Nop()).Logout)

	w := perform(r, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jti-1", svc.loggedOut)
}

func TestStudentController(t *testing.T) {
	svc := &fakeStudentService{
		saved:   map[string]*dto.CombinedUpdateRequest{},
		profile: &dto.StudentProfileResponse{PersonalInfo: &dto.PersonalInfoOut{Name: "Asha"}},
	}
	ctrl := NewStudentController(svc, zerolog.Nop())
	r := gin.New()
	g := r.Group("/student", asUser("stu-1", "asha@college.edu"))
	g.GET("/me", ctrl.GetMe)
	g.GET("", ctrl.GetByID)
	g.POST("/personal_info", ctrl.SavePersonalInfo)
	g.POST("/upload_photo", ctrl.UploadPhoto)
	g.GET("/report", ctrl.Report)

	t.Run("me", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/student/me", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Asha"`)
	})

	t.Run("by id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/student", nil, "").Code)
		assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/student?uuid=other", nil, "").Code)
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/student?uuid=stu-1", nil, "").Code)
	})

	t.Run("save", func(t *testing.T) {
		body := `{"personal_info":{"name":"Asha K"},"marks":[{"semester":"sem1","marks":"80"}]}`
		w := perform(r, http.MethodPost, "/student/personal_info", strings.NewReader(body), "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Student information updated successfully")
		require.Contains(t, svc.saved, "stu-1")
		require.NotNil(t, svc.saved["stu-1"].PersonalInfo)
		assert.Equal(t, "Asha K", *svc.saved["stu-1"].PersonalInfo.Name)
	})

	t.Run("save malformed", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/student/personal_info", strings.NewReader(`{"marks":`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upload without file", func(t *testing.T) {
		var buf strings.Builder
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.Close())
		w := perform(r, http.MethodPost, "/student/upload_photo", strings.NewReader(buf.String()), mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upload", func(t *testing.T) {
		var buf strings.Builder
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("photo", "me.png")
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, mw.Close())

		w := perform(r, http.MethodPost, "/student/upload_photo", strings.NewReader(buf.String()), mw.FormDataContentType())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/uploads/users/stu-1")
	})

	t.Run("report", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/student/report", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "<html>stu-1</html>", w.Body.String())
	})
}

func TestMentorController(t *testing.T) {
	svc := &fakeMentorService{}
	ctrl := NewMentorController(svc, zerolog.Nop())
	r := gin.New()
	g := r.Group("/mentor", asUser("m-1", "m@college.edu"))
	g.GET("/students", ctrl.ListStudents)
	g.POST("/ban", ctrl.SetBan)

	w := perform(r, http.MethodGet, "/mentor/students?name=asha&semester=sem3&is_ban=false", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
	require.NotNil(t, svc.filter)
	assert.Equal(t, "sem3", svc.filter.Semester)
	require.NotNil(t, svc.filter.IsBan)
	assert.False(t, *svc.filter.IsBan)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/mentor/students?semester=sem9", nil, "").Code)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"ban", "?email=asha@college.edu&is_ban=true", http.StatusOK},
		{"missing flag", "?email=asha@college.edu", http.StatusBadRequest},
		{"missing email", "?is_ban=true", http.StatusBadRequest},
		{"unknown student", "?email=ghost@college.edu&is_ban=true", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, perform(r, http.MethodPost, "/mentor/ban"+tt.query, nil, "").Code)
		})
	}
}

func TestAdminController(t *testing.T) {
	svc := &fakeAdminService{}
	ctrl := NewAdminController(svc, zerolog.Nop())
	r := gin.New()
	g := r.Group("/admin", asUser("m-1", "m@college.edu"))
	g.GET("/records", ctrl.ListRecords)
	g.PUT("/records/:id/counseling/:index", ctrl.UpdateCounseling)
	g.GET("/export", ctrl.Export)

	t.Run("list paginates", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/admin/records?search=asha&page=2&size=5", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, svc.page)
		assert.Equal(t, 5, svc.size)
		assert.Contains(t, w.Body.String(), `"id":"asha"`)
	})

	t.Run("counseling", func(t *testing.T) {
		body := `{"topic":"Attendance","date":"2024-01-15"}`
		tests := []struct {
			index  string
			status int
		}{
			{"0", http.StatusOK},
			{"19", http.StatusOK},
			{"20", http.StatusBadRequest},
			{"-1", http.StatusBadRequest},
			{"x", http.StatusBadRequest},
		}
		for _, tt := range tests {
			w := perform(r, http.MethodPut, "/admin/records/rec-1/counseling/"+tt.index, strings.NewReader(body), "application/json")
			assert.Equal(t, tt.status, w.Code, "index %s", tt.index)
		}
		assert.Equal(t, "m@college.edu", svc.actor)
	})

	t.Run("export", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/admin/export", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attachment; filename=students_data.json", w.Header().Get("Content-Disposition"))
		assert.Equal(t, "[]\n", w.Body.String())
	})
}

func TestHealthController(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	r := gin.New()
	h := NewHealthController(map[string]Pinger{"postgres": ok, "mongo": down})
	r.GET("/health-check", h.Liveness)
	r.GET("/health", h.Health)

	w := perform(r, http.MethodGet, "/health-check", nil, "")
	assert.JSONEq(t, `{"message":"Server running..."}`, w.Body.String())

	w = perform(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
