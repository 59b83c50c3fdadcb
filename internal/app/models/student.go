package models

// StudentProfile is a student row joined with its personal info, as stored
// in the 'personal_info' table. ID is the personal info id, which is also the
// subject of a student's access token.
type StudentProfile struct {
	ID        string  `json:"id" db:"id"`
	StudentID string  `json:"studentId" db:"student_id"`
	MentorID  *string `json:"mentorId,omitempty" db:"mentor_id"`
	IsBan     bool    `json:"isBan" db:"is_ban"`
	Info      PersonalInfo
}

// StudentAggregate is everything stored for one student.
type StudentAggregate struct {
	Profile StudentProfile
	Record  StudentRecord
}
