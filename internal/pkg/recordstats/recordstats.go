// Package recordstats computes the derived aggregates shown next to a record.
package recordstats

import (
	"math"
	"strconv"
	"strings"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/normalize"
)

// NotAvailable is reported when no semester has usable marks.
const NotAvailable = "N/A"

// Summary holds the aggregates of one record
type Summary struct {
	AverageMarks       string `json:"averageMarks" example:"72.5"`
	TotalKTs           int    `json:"totalKTs" example:"1"`
	CounselingSessions int    `json:"counselingSessions" example:"3"`
}

// AverageMarks averages the semesters whose marks are numeric and positive,
// rounded half-up to one decimal place.
func AverageMarks(marks []models.MarkEntry) string {
	var (
		sum   float64
		count int
	)
	for _, m := range marks {
		if strings.TrimSpace(m.Marks) == "" {
			continue
		}
		v := normalize.Number(m.Marks)
		if v <= 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return NotAvailable
	}

	avg := math.Floor((sum/float64(count))*10+0.5) / 10
	return strconv.FormatFloat(avg, 'f', 1, 64)
}

// TotalKTs sums the KT counts of all semesters. Non-numeric counts are zero.
func TotalKTs(marks []models.MarkEntry) int {
	total := 0
	for _, m := range marks {
		total += normalize.Int(m.NoOfKT)
	}
	return total
}

// CounselingSessions counts the slots with a topic.
func CounselingSessions(entries []models.CounselingEntry) int {
	n := 0
	for _, e := range entries {
		if e.Topic != "" {
			n++
		}
	}
	return n
}

// Summarize computes all aggregates of rec.
func Summarize(rec models.StudentRecord) Summary {
	return Summary{
		AverageMarks:       AverageMarks(rec.Marks),
		TotalKTs:           TotalKTs(rec.Marks),
		CounselingSessions: CounselingSessions(rec.Counseling),
	}
}
