package models

// Mentor defines the mentor model based on the 'mentors' table
type Mentor struct {
	ID         string `json:"id" db:"id"`
	Email      string `json:"email" db:"email"`
	Password   string `json:"-" db:"password"`
	Semester   string `json:"semester" db:"semester"`
	MentorName string `json:"mentorName" db:"mentor_name"`
}
