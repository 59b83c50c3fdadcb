package dto

import "github.com/deptce/mentorship/internal/app/models"

// PersonalInfoUpdate carries the personal info fields of a save. Nil fields
// are left untouched.
type PersonalInfoUpdate struct {
	Name             *string `json:"name,omitempty"`
	EnrollmentNo     *string `json:"enrollment_no,omitempty"`
	DateOfBirth      *string `json:"date_of_birth,omitempty"`
	BloodGroup       *string `json:"blood_group,omitempty"`
	AadharNo         *string `json:"aadhar_no,omitempty"`
	PersonalEmail    *string `json:"personal_email,omitempty"`
	MobileNo         *string `json:"mobile_no,omitempty"`
	FatherName       *string `json:"father_name,omitempty"`
	FatherOccupation *string `json:"father_occupation,omitempty"`
	FatherMobile     *string `json:"father_mobile,omitempty"`
	MotherName       *string `json:"mother_name,omitempty"`
	MotherOccupation *string `json:"mother_occupation,omitempty"`
	MotherMobile     *string `json:"mother_mobile,omitempty"`
	LocalAddress     *string `json:"local_address,omitempty"`
	PermanentAddress *string `json:"permanent_address,omitempty"`
	SSC              *string `json:"ssc,omitempty"`
	HSC              *string `json:"hsc,omitempty"`
	Diploma          *string `json:"diploma,omitempty"`
	Sport            *string `json:"sport,omitempty"`
	Other            *string `json:"other,omitempty"`
	NSSMember        *bool   `json:"nss_member,omitempty"`
	EmberMember      *bool   `json:"ember_member,omitempty"`
	RhythmMember     *bool   `json:"rhythm_member,omitempty"`
}

// MarkDTO is one semester of marks in the backend dialect
type MarkDTO struct {
	Semester  string `json:"semester" binding:"required,oneof=sem1 sem2 sem3 sem4 sem5 sem6 sem7 sem8" example:"sem1"`
	Marks     string `json:"marks" example:"78.5"`
	NoOfKT    string `json:"no_of_kt" example:"0"`
	KTSubject string `json:"kt_subject"`
}

// AchievementsDTO holds yearly achievements in the backend dialect
type AchievementsDTO struct {
	FirstYear  string `json:"first_year"`
	SecondYear string `json:"second_year"`
	ThirdYear  string `json:"third_year"`
	FinalYear  string `json:"final_year"`
}

// SemesterMentorDTO names the mentor of one semester
type SemesterMentorDTO struct {
	Semester   string `json:"semester" binding:"required,oneof=sem1 sem2 sem3 sem4 sem5 sem6 sem7 sem8" example:"sem1"`
	MentorName string `json:"mentor_name"`
}

// CounselingDTO is one counseling slot in the backend dialect
type CounselingDTO struct {
	SrNo        int    `json:"sr_no" binding:"min=0" example:"1"`
	Topic       string `json:"topic"`
	Date        string `json:"date"`
	ActionTaken string `json:"action_taken"`
	Remark      string `json:"remark"`
	Sign        string `json:"sign"`
}

// CombinedUpdateRequest is the wholesale save body. Sections left nil are not
// touched; list sections that are present replace the stored rows.
type CombinedUpdateRequest struct {
	PersonalInfo *PersonalInfoUpdate `json:"personal_info"`
	Marks        []MarkDTO           `json:"marks" binding:"omitempty,max=8,dive"`
	Achievements *AchievementsDTO    `json:"achievements"`
	Mentors      []SemesterMentorDTO `json:"mentors" binding:"omitempty,max=8,dive"`
	Counseling   []CounselingDTO     `json:"counseling" binding:"omitempty,max=20,dive"`
}

// PersonalInfoOut is the stored personal info in the backend dialect
type PersonalInfoOut struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CollegeEmail     string `json:"college_email"`
	EnrollmentNo     string `json:"enrollment_no"`
	DateOfBirth      string `json:"date_of_birth"`
	BloodGroup       string `json:"blood_group"`
	AadharNo         string `json:"aadhar_no"`
	PersonalEmail    string `json:"personal_email"`
	MobileNo         string `json:"mobile_no"`
	FatherName       string `json:"father_name"`
	FatherOccupation string `json:"father_occupation"`
	FatherMobile     string `json:"father_mobile"`
	MotherName       string `json:"mother_name"`
	MotherOccupation string `json:"mother_occupation"`
	MotherMobile     string `json:"mother_mobile"`
	LocalAddress     string `json:"local_address"`
	PermanentAddress string `json:"permanent_address"`
	Photo            string `json:"photo"`
	SSC              string `json:"ssc"`
	HSC              string `json:"hsc"`
	Diploma          string `json:"diploma"`
	Sport            string `json:"sport"`
	Other            string `json:"other"`
	IsBan            bool   `json:"is_ban"`
	NSSMember        bool   `json:"nss_member"`
	EmberMember      bool   `json:"ember_member"`
	RhythmMember     bool   `json:"rhythm_member"`
}

// StudentProfileResponse is a full record in the backend dialect
type StudentProfileResponse struct {
	PersonalInfo *PersonalInfoOut    `json:"personal_info"`
	Achievements *AchievementsDTO    `json:"achievements"`
	Marks        []MarkDTO           `json:"marks"`
	Mentors      []SemesterMentorDTO `json:"mentors"`
	Counseling   []CounselingDTO     `json:"counseling"`
}

// PhotoUploadResponse is returned after a profile photo upload
type PhotoUploadResponse struct {
	PhotoURL string `json:"photo_url"`
}

// NewStudentProfileResponse maps a stored student to the backend dialect
func NewStudentProfileResponse(agg *models.StudentAggregate) StudentProfileResponse {
	info := agg.Record.PersonalInfo
	resp := StudentProfileResponse{
		PersonalInfo: &PersonalInfoOut{
			ID:               agg.Profile.ID,
			Name:             info.Name,
			CollegeEmail:     info.CollegeEmail,
			EnrollmentNo:     info.EnrollmentNo,
			DateOfBirth:      info.DateOfBirth,
			BloodGroup:       info.BloodGroup,
			AadharNo:         info.AadharNo,
			PersonalEmail:    info.PersonalEmail,
			MobileNo:         info.MobileNo,
			FatherName:       info.FatherName,
			FatherOccupation: info.FatherOccupation,
			FatherMobile:     info.FatherMobile,
			MotherName:       info.MotherName,
			MotherOccupation: info.MotherOccupation,
			MotherMobile:     info.MotherMobile,
			LocalAddress:     info.LocalAddress,
			PermanentAddress: info.PermanentAddress,
			Photo:            info.Photo,
			SSC:              info.SSC,
			HSC:              info.HSC,
			Diploma:          info.Diploma,
			Sport:            info.Sport,
			Other:            info.Other,
			IsBan:            agg.Profile.IsBan,
			NSSMember:        info.NSSMember,
			EmberMember:      info.EmberMember,
			RhythmMember:     info.RhythmMember,
		},
		Achievements: &AchievementsDTO{
			FirstYear:  agg.Record.Achievements.FirstYear,
			SecondYear: agg.Record.Achievements.SecondYear,
			ThirdYear:  agg.Record.Achievements.ThirdYear,
			FinalYear:  agg.Record.Achievements.FinalYear,
		},
		Marks:      make([]MarkDTO, 0, len(agg.Record.Marks)),
		Mentors:    make([]SemesterMentorDTO, 0, len(agg.Record.Mentors)),
		Counseling: make([]CounselingDTO, 0, len(agg.Record.Counseling)),
	}
	for _, m := range agg.Record.Marks {
		resp.Marks = append(resp.Marks, MarkDTO{Semester: m.Semester, Marks: m.Marks, NoOfKT: m.NoOfKT, KTSubject: m.KTSubject})
	}
	for _, m := range agg.Record.Mentors {
		resp.Mentors = append(resp.Mentors, SemesterMentorDTO{Semester: m.Semester, MentorName: m.MentorName})
	}
	for _, c := range agg.Record.Counseling {
		resp.Counseling = append(resp.Counseling, CounselingDTO{
			SrNo:        c.SrNo,
			Topic:       c.Topic,
			Date:        c.Date,
			ActionTaken: c.ActionTaken,
			Remark:      c.Remark,
			Sign:        c.Sign,
		})
	}
	return resp
}

// ApplyTo merges the request into rec. Marks and mentors land in the slot of
// their semester label, counseling entries by position.
func (r *CombinedUpdateRequest) ApplyTo(rec *models.StudentRecord) {
	rec.EnsureSlots()

	if p := r.PersonalInfo; p != nil {
		info := &rec.PersonalInfo
		setString(&info.Name, p.Name)
		setString(&info.EnrollmentNo, p.EnrollmentNo)
		setString(&info.DateOfBirth, p.DateOfBirth)
		setString(&info.BloodGroup, p.BloodGroup)
		setString(&info.AadharNo, p.AadharNo)
		setString(&info.PersonalEmail, p.PersonalEmail)
		setString(&info.MobileNo, p.MobileNo)
		setString(&info.FatherName, p.FatherName)
		setString(&info.FatherOccupation, p.FatherOccupation)
		setString(&info.FatherMobile, p.FatherMobile)
		setString(&info.MotherName, p.MotherName)
		setString(&info.MotherOccupation, p.MotherOccupation)
		setString(&info.MotherMobile, p.MotherMobile)
		setString(&info.LocalAddress, p.LocalAddress)
		setString(&info.PermanentAddress, p.PermanentAddress)
		setString(&info.SSC, p.SSC)
		setString(&info.HSC, p.HSC)
		setString(&info.Diploma, p.Diploma)
		setString(&info.Sport, p.Sport)
		setString(&info.Other, p.Other)
		if p.NSSMember != nil {
			info.NSSMember = *p.NSSMember
		}
		if p.EmberMember != nil {
			info.EmberMember = *p.EmberMember
		}
		if p.RhythmMember != nil {
			info.RhythmMember = *p.RhythmMember
		}
	}

	if a := r.Achievements; a != nil {
		rec.Achievements = models.Achievements{
			FirstYear:  a.FirstYear,
			SecondYear: a.SecondYear,
			ThirdYear:  a.ThirdYear,
			FinalYear:  a.FinalYear,
		}
	}

	if r.Marks != nil {
		marks := models.NewStudentRecord().Marks
		for _, m := range r.Marks {
			if i := models.SemesterIndex(m.Semester); i >= 0 {
				marks[i] = models.MarkEntry{Semester: m.Semester, Marks: m.Marks, NoOfKT: m.NoOfKT, KTSubject: m.KTSubject}
			}
		}
		rec.Marks = marks
	}

	if r.Mentors != nil {
		mentors := models.NewStudentRecord().Mentors
		for _, m := range r.Mentors {
			if i := models.SemesterIndex(m.Semester); i >= 0 {
				mentors[i] = models.MentorEntry{Semester: m.Semester, MentorName: m.MentorName}
			}
		}
		rec.Mentors = mentors
	}

	if r.Counseling != nil {
		counseling := models.NewStudentRecord().Counseling
		for i, c := range r.Counseling {
			if i >= len(counseling) {
				break
			}
			srNo := c.SrNo
			if srNo <= 0 {
				srNo = i + 1
			}
			counseling[i] = models.CounselingEntry{
				SrNo:        srNo,
				Topic:       c.Topic,
				Date:        c.Date,
				ActionTaken: c.ActionTaken,
				Remark:      c.Remark,
				Sign:        c.Sign,
			}
		}
		rec.Counseling = counseling
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
