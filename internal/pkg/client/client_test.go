package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studentMe = `{"data":{
  "personal_info":{"name":"Asha","college_email":"asha@college.edu","nss_member":true},
  "achievements":{"first_year":"Hackathon"},
  "marks":[{"semester":"sem1","marks":"80","no_of_kt":"0"},{"semester":"sem2","marks":"70","no_of_kt":"1"}],
  "mentors":[{"semester":"sem1","mentor_name":"Dr. Rao"}],
  "counseling":[{"sr_no":1,"topic":"Attendance"}]
},"timestamp":"2025-01-01T00:00:00Z"}`

func newServer(t *testing.T, handler http.HandlerFunc) (*Client, *MemoryTokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := &MemoryTokenStore{}
	return New(srv.URL+"/", WithTokenStore(store), WithHTTPClient(srv.Client())), store
}

func TestClient_LoginStoresToken(t *testing.T) {
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/mentor/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"error":{"code":"AUTH_001","message":"Invalid email or password"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"access_token":"tok-1","token_type":"Bearer","expires_in":60}}`)
	})

	err := c.Login(context.Background(), "m@college.edu", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "AUTH_001", apiErr.Code)
	tok, _ := store.Load()
	assert.Empty(t, tok)

	require.NoError(t, c.Login(context.Background(), "m@college.edu", "secret"))
	tok, _ = store.Load()
	assert.Equal(t, "tok-1", tok)
}

func TestClient_MeNormalizesAndSendsBearer(t *testing.T) {
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, studentMe)
	})

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, store.Save("tok-1"))
	rec, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Asha", rec.PersonalInfo.Name)
	assert.True(t, rec.PersonalInfo.NSSMember)
	assert.Equal(t, "Hackathon", rec.Achievements.FirstYear)
	require.Len(t, rec.Marks, models.SemesterCount)
	assert.Equal(t, "70", rec.Marks[1].Marks)
	assert.Equal(t, "sem8", rec.Marks[7].Semester)
	require.Len(t, rec.Counseling, models.CounselingSlots)
	assert.Equal(t, "Attendance", rec.Counseling[0].Topic)
	assert.Equal(t, 20, rec.Counseling[19].SrNo)
}

func TestClient_SaveSendsBackendDialect(t *testing.T) {
	var got map[string]any
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/student/personal_info", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"data":{"message":"Student information updated successfully"}}`)
	})
	require.NoError(t, store.Save("tok-1"))

	rec := models.NewStudentRecord()
	rec.PersonalInfo.Name = "Asha"
	rec.Marks[0].Marks = "80"
	require.NoError(t, c.Save(context.Background(), rec))

	info := got["personal_info"].(map[string]any)
	assert.Equal(t, "Asha", info["name"])
	marks := got["marks"].([]any)
	require.NotEmpty(t, marks)
	assert.Equal(t, "sem1", marks[0].(map[string]any)["semester"])
}

func TestClient_LogoutKeepsTokenOnFailure(t *testing.T) {
	fail := true
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"message":"Logged out successfully"}}`)
	})
	require.NoError(t, store.Save("tok-1"))

	assert.Error(t, c.Logout(context.Background()))
	tok, _ := store.Load()
	assert.Equal(t, "tok-1", tok)

	fail = false
	require.NoError(t, c.Logout(context.Background()))
	tok, _ = store.Load()
	assert.Empty(t, tok)
}

func TestClient_AdminRecordsQuery(t *testing.T) {
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "asha", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.False(t, r.URL.Query().Has("mentor"))
		_, _ = io.WriteString(w, `{"data":{"items":[{"id":"r1","email":"asha@college.edu"}],"pagination":{"currentPage":2,"totalPages":2,"pageSize":10,"totalItems":11}}}`)
	})
	require.NoError(t, store.Save("tok-1"))

	page, err := c.AdminRecords(context.Background(), RecordQuery{Search: "asha", Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r1", page.Items[0].ID)
	assert.Equal(t, int64(11), page.Pagination.TotalItems)
}

func TestClient_UploadPhotoAndExport(t *testing.T) {
	c, store := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/student/upload_photo":
			f, fh, err := r.FormFile("photo")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "me.png", fh.Filename)
			_, _ = io.WriteString(w, `{"data":{"photo_url":"https://cdn.example/users/1.png"}}`)
		case "/api/v1/admin/export":
			w.Header().Set("Content-Disposition", "attachment; filename=students_data.json")
			_, _ = io.WriteString(w, "[\n  {}\n]\n")
		}
	})
	require.NoError(t, store.Save("tok-1"))

	url, err := c.UploadPhoto(context.Background(), "me.png", strings.NewReader("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/users/1.png", url)

	var buf bytes.Buffer
	require.NoError(t, c.Export(context.Background(), &buf))
	assert.Equal(t, "[\n  {}\n]\n", buf.String())
}

func TestFileTokenStore(t *testing.T) {
	s := FileTokenStore{Path: filepath.Join(t.TempDir(), "nested", "token")}

	tok, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save("abc"))
	tok, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	tok, _ = s.Load()
	assert.Empty(t, tok)
}
