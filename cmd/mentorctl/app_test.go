package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
  "personalInfo": {"name": "Asha Rao", "collegeEmail": "asha@college.edu"},
  "marks": [
    {"semester": "sem1", "marks": "80", "noOfKT": "1"},
    {"semester": "sem2", "marks": "65", "noOfKT": "0"}
  ],
  "counseling": [{"srNo": 1, "date": "2024-01-10", "topic": "attendance"}]
}`

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecord), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"mentorctl"}, args...))
	return out.String(), err
}

func TestStatsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)

	out, err := run(t, "--token-file", filepath.Join(dir, "token"), "stats", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Average marks")
	assert.Contains(t, out, "72.5")
	assert.Contains(t, out, "Counseling sessions")
}

func TestReportFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir)
	out := filepath.Join(dir, "report.html")

	_, err := run(t, "--token-file", filepath.Join(dir, "token"), "report", "--file", path, "--out", out)
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Asha Rao")
}

func TestExportFailureKeepsExistingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"SRV_001","message":"boom"}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("tok"), 0o600))
	out := filepath.Join(dir, "students_data.json")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o600))

	_, err := run(t, "--server", srv.URL, "--token-file", tokenFile, "export", "--out", out)
	require.Error(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMeRequiresLogin(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--token-file", filepath.Join(dir, "token"), "me")
	require.Error(t, err)
}

func TestLoginRejectsBadEmail(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "--token-file", filepath.Join(dir, "token"), "login", "--email", "nope", "--password", "secret123")
	require.Error(t, err)
}

func TestLoginStoresGivenToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")

	_, err := run(t, "--token-file", tokenFile, "login", "--token", "abc.def.ghi")
	require.NoError(t, err)

	b, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "abc.def.ghi")
}
