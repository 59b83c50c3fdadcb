// Command mentorctl works with mentoring records from the terminal.
package main

import (
	"os"

	"github.com/deptce/mentorship/internal/pkg/logger"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("mentorctl failed")
		os.Exit(1)
	}
}
