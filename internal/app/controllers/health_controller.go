package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency whose reachability is reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthController reports liveness and dependency status
type HealthController struct {
	checks map[string]Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks}
}

// Liveness answers as long as the process serves requests
func (h *HealthController) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Server running..."})
}

// Health godoc
// @Summary Health check
// @Description Reports the status of the relational and document stores
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=map[string]string}
// @Failure 503 {object} dto.APIResponse{data=map[string]string}
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := map[string]string{"status": "ok"}
	for name, p := range h.checks {
		if err := p.Ping(c); err != nil {
			status = http.StatusServiceUnavailable
			result["status"] = "degraded"
			result[name] = err.Error()
			continue
		}
		result[name] = "ok"
	}
	ctx.JSON(status, dto.NewAPIResponse(result))
}
