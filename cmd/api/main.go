package main

import (
	"context"
	"os"

	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/deptce/mentorship/internal/server"
)

// @title Student Mentoring Record API
// @version 1.0
// @description Records, counseling logs and mentor administration for the department's mentoring programme

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
