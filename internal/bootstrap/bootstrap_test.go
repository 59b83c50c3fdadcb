package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deptce/mentorship/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestOpenerOrigin(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "", openerOrigin(cfg))

	cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "https://mentor.example.edu"}
	assert.Equal(t, "http://localhost:3000", openerOrigin(cfg))

	cfg.OAuth.OpenerOrigin = "https://mentor.example.edu"
	assert.Equal(t, "https://mentor.example.edu", openerOrigin(cfg))
}

func TestSwaggerHost(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.PublicURL = "https://api.example.edu:8443/base"
	assert.Equal(t, "api.example.edu:8443", swaggerHost(cfg))
}

func TestWithCORS(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	h := WithCORS(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/student/me", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			req.Header.Set("Access-Control-Request-Headers", "authorization")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
