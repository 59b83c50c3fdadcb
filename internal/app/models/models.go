package models

import "fmt"

// RoleType defines the role carried in an access token
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleMentor  RoleType = "MENTOR"
)

// Fixed slot counts of a mentoring record
const (
	SemesterCount   = 8
	CounselingSlots = 20
)

// SemesterLabel returns the canonical label for the zero-based semester index.
func SemesterLabel(index int) string {
	return fmt.Sprintf("sem%d", index+1)
}

// IsSemesterLabel reports whether label is one of sem1..sem8.
func IsSemesterLabel(label string) bool {
	return SemesterIndex(label) >= 0
}
