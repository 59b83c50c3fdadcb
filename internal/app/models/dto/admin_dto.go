package dto

import (
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/recordstats"
)

// RecordResponse is one document-store record with its aggregates
type RecordResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	LastUpdated time.Time            `json:"lastUpdated"`
	Record      models.StudentRecord `json:"record"`
	Summary     recordstats.Summary  `json:"summary"`
}

// RecordQuery holds the admin list filters
type RecordQuery struct {
	Search   string `form:"search"`
	Semester string `form:"semester"`
	Mentor   string `form:"mentor"`
}

// CounselingUpdateRequest replaces the editable fields of one counseling slot
type CounselingUpdateRequest struct {
	Topic       string `json:"topic" example:"Attendance"`
	Date        string `json:"date" example:"2024-01-15"`
	ActionTaken string `json:"actionTaken"`
	Remark      string `json:"remark"`
}

// MentorNamesResponse lists the unique mentor names across records
type MentorNamesResponse struct {
	Mentors []string `json:"mentors"`
}

// NewRecordResponse builds a RecordResponse from a stored document
func NewRecordResponse(doc *models.RecordDocument) RecordResponse {
	return RecordResponse{
		ID:          doc.ID,
		Email:       doc.Email,
		LastUpdated: doc.Updated,
		Record:      doc.Record,
		Summary:     recordstats.Summarize(doc.Record),
	}
}
