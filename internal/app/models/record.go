package models

import "time"

// PersonalInfo holds the identity, family and history fields of a record.
type PersonalInfo struct {
	Name             string `json:"name" bson:"name"`
	EnrollmentNo     string `json:"enrollmentNo" bson:"enrollmentNo"`
	DateOfBirth      string `json:"dateOfBirth" bson:"dateOfBirth"`
	BloodGroup       string `json:"bloodGroup" bson:"bloodGroup"`
	AadharNo         string `json:"aadharNo" bson:"aadharNo"`
	PersonalEmail    string `json:"personalEmail" bson:"personalEmail"`
	CollegeEmail     string `json:"collegeEmail" bson:"collegeEmail"`
	MobileNo         string `json:"mobileNo" bson:"mobileNo"`
	FatherName       string `json:"fatherName" bson:"fatherName"`
	FatherOccupation string `json:"fatherOccupation" bson:"fatherOccupation"`
	FatherMobile     string `json:"fatherMobile" bson:"fatherMobile"`
	MotherName       string `json:"motherName" bson:"motherName"`
	MotherOccupation string `json:"motherOccupation" bson:"motherOccupation"`
	MotherMobile     string `json:"motherMobile" bson:"motherMobile"`
	LocalAddress     string `json:"localAddress" bson:"localAddress"`
	PermanentAddress string `json:"permanentAddress" bson:"permanentAddress"`
	SSC              string `json:"ssc" bson:"ssc"`
	HSC              string `json:"hsc" bson:"hsc"`
	Diploma          string `json:"diploma" bson:"diploma"`
	NSSMember        bool   `json:"nssMember" bson:"nssMember"`
	EmberMember      bool   `json:"emberMember" bson:"emberMember"`
	RhythmMember     bool   `json:"rhythmMember" bson:"rhythmMember"`
	Sport            string `json:"sport" bson:"sport"`
	Other            string `json:"other" bson:"other"`
	Photo            string `json:"photo" bson:"photo"`
}

// MarkEntry is one semester of academic results.
type MarkEntry struct {
	Semester  string `json:"semester" bson:"semester"`
	Marks     string `json:"marks" bson:"marks"`
	NoOfKT    string `json:"noOfKT" bson:"noOfKT"`
	KTSubject string `json:"ktSubject" bson:"ktSubject"`
}

// Achievements holds one free-text field per academic year.
type Achievements struct {
	FirstYear  string `json:"firstYear" bson:"firstYear"`
	SecondYear string `json:"secondYear" bson:"secondYear"`
	ThirdYear  string `json:"thirdYear" bson:"thirdYear"`
	FinalYear  string `json:"finalYear" bson:"finalYear"`
}

// MentorEntry names the mentor for one semester.
type MentorEntry struct {
	Semester   string `json:"semester" bson:"semester"`
	MentorName string `json:"mentorName" bson:"mentorName"`
}

// CounselingEntry is one slot of the counseling log. A slot counts as
// populated when Topic is non-empty.
type CounselingEntry struct {
	SrNo        int    `json:"srNo" bson:"srNo"`
	Topic       string `json:"topic" bson:"topic"`
	Date        string `json:"date" bson:"date"`
	ActionTaken string `json:"actionTaken" bson:"actionTaken"`
	Remark      string `json:"remark" bson:"remark"`
	Sign        string `json:"sign" bson:"sign"`
}

// StudentRecord is the full mentoring record. Marks and Mentors always hold
// SemesterCount entries and Counseling holds CounselingSlots entries once the
// record has gone through NewStudentRecord or normalization.
type StudentRecord struct {
	PersonalInfo PersonalInfo      `json:"personalInfo" bson:"personalInfo"`
	Marks        []MarkEntry       `json:"marks" bson:"marks"`
	Achievements Achievements      `json:"achievements" bson:"achievements"`
	Mentors      []MentorEntry     `json:"mentors" bson:"mentors"`
	Counseling   []CounselingEntry `json:"counseling" bson:"counseling"`
}

// NewStudentRecord returns an empty record with every fixed slot present.
func NewStudentRecord() StudentRecord {
	rec := StudentRecord{
		Marks:      make([]MarkEntry, SemesterCount),
		Mentors:    make([]MentorEntry, SemesterCount),
		Counseling: make([]CounselingEntry, CounselingSlots),
	}
	for i := 0; i < SemesterCount; i++ {
		rec.Marks[i].Semester = SemesterLabel(i)
		rec.Mentors[i].Semester = SemesterLabel(i)
	}
	for i := range rec.Counseling {
		rec.Counseling[i].SrNo = i + 1
	}
	return rec
}

// Clone returns a deep copy, so callers can edit without touching the original.
func (r StudentRecord) Clone() StudentRecord {
	out := r
	out.Marks = append([]MarkEntry(nil), r.Marks...)
	out.Mentors = append([]MentorEntry(nil), r.Mentors...)
	out.Counseling = append([]CounselingEntry(nil), r.Counseling...)
	return out
}

// RecordDocument is a record as kept in the document store.
type RecordDocument struct {
	ID      string        `json:"id"`
	Email   string        `json:"email"`
	Record  StudentRecord `json:"record"`
	Updated time.Time     `json:"lastUpdated"`
}

// SemesterIndex returns the zero-based index of a sem1..sem8 label, or -1.
func SemesterIndex(label string) int {
	for i := 0; i < SemesterCount; i++ {
		if label == SemesterLabel(i) {
			return i
		}
	}
	return -1
}

// EnsureSlots pads or truncates the fixed-size lists and fills in missing
// semester labels and serial numbers.
func (r *StudentRecord) EnsureSlots() {
	r.Marks = resize(r.Marks, SemesterCount)
	r.Mentors = resize(r.Mentors, SemesterCount)
	r.Counseling = resize(r.Counseling, CounselingSlots)
	for i := range r.Marks {
		if r.Marks[i].Semester == "" {
			r.Marks[i].Semester = SemesterLabel(i)
		}
		if r.Mentors[i].Semester == "" {
			r.Mentors[i].Semester = SemesterLabel(i)
		}
	}
	for i := range r.Counseling {
		if r.Counseling[i].SrNo <= 0 {
			r.Counseling[i].SrNo = i + 1
		}
	}
}

func resize[T any](s []T, n int) []T {
	if len(s) >= n {
		return s[:n]
	}
	return append(s, make([]T, n-len(s))...)
}
