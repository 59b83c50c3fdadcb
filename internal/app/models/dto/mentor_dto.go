package dto

import "github.com/deptce/mentorship/internal/pkg/recordstats"

// MentorStudentItem is one entry of a mentor's student list
type MentorStudentItem struct {
	ID      string                 `json:"id"`
	IsBan   bool                   `json:"is_ban"`
	Record  StudentProfileResponse `json:"record"`
	Summary recordstats.Summary    `json:"summary"`
}

// MentorStudentFilter holds the query filters of the mentor student list
type MentorStudentFilter struct {
	Name     string `form:"name"`
	Semester string `form:"semester" binding:"omitempty,oneof=sem1 sem2 sem3 sem4 sem5 sem6 sem7 sem8"`
	IsBan    *bool  `form:"is_ban"`
}

// BanRequest holds the query parameters of a ban change
type BanRequest struct {
	Email string `form:"email" binding:"required,email"`
	IsBan *bool  `form:"is_ban" binding:"required"`
}

// AssignRequest holds the query parameters of a student assignment
type AssignRequest struct {
	Email string `form:"email" binding:"required,email"`
}
