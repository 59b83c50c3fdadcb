package dto

import "github.com/deptce/mentorship/internal/app/models"

// NewCombinedUpdateRequest maps a record onto the wholesale save body. Mark and mentor
// semesters are relabelled by position; the photo and college email are not
// part of a save.
func NewCombinedUpdateRequest(rec models.StudentRecord) CombinedUpdateRequest {
	p := rec.PersonalInfo
	req := CombinedUpdateRequest{
		PersonalInfo: &PersonalInfoUpdate{
			Name:             ptr(p.Name),
			EnrollmentNo:     ptr(p.EnrollmentNo),
			DateOfBirth:      ptr(p.DateOfBirth),
			BloodGroup:       ptr(p.BloodGroup),
			AadharNo:         ptr(p.AadharNo),
			PersonalEmail:    ptr(p.PersonalEmail),
			MobileNo:         ptr(p.MobileNo),
			FatherName:       ptr(p.FatherName),
			FatherOccupation: ptr(p.FatherOccupation),
			FatherMobile:     ptr(p.FatherMobile),
			MotherName:       ptr(p.MotherName),
			MotherOccupation: ptr(p.MotherOccupation),
			MotherMobile:     ptr(p.MotherMobile),
			LocalAddress:     ptr(p.LocalAddress),
			PermanentAddress: ptr(p.PermanentAddress),
			SSC:              ptr(p.SSC),
			HSC:              ptr(p.HSC),
			Diploma:          ptr(p.Diploma),
			Sport:            ptr(p.Sport),
			Other:            ptr(p.Other),
			NSSMember:        ptr(p.NSSMember),
			EmberMember:      ptr(p.EmberMember),
			RhythmMember:     ptr(p.RhythmMember),
		},
		Achievements: &AchievementsDTO{
			FirstYear:  rec.Achievements.FirstYear,
			SecondYear: rec.Achievements.SecondYear,
			ThirdYear:  rec.Achievements.ThirdYear,
			FinalYear:  rec.Achievements.FinalYear,
		},
		Marks:      make([]MarkDTO, 0, models.SemesterCount),
		Mentors:    make([]SemesterMentorDTO, 0, models.SemesterCount),
		Counseling: make([]CounselingDTO, 0, models.CounselingSlots),
	}

	for i, m := range firstN(rec.Marks, models.SemesterCount) {
		req.Marks = append(req.Marks, MarkDTO{
			Semester:  models.SemesterLabel(i),
			Marks:     m.Marks,
			NoOfKT:    m.NoOfKT,
			KTSubject: m.KTSubject,
		})
	}
	for i, m := range firstN(rec.Mentors, models.SemesterCount) {
		req.Mentors = append(req.Mentors, SemesterMentorDTO{
			Semester:   models.SemesterLabel(i),
			MentorName: m.MentorName,
		})
	}
	for i, c := range firstN(rec.Counseling, models.CounselingSlots) {
		srNo := c.SrNo
		if srNo <= 0 {
			srNo = i + 1
		}
		req.Counseling = append(req.Counseling, CounselingDTO{
			SrNo:        srNo,
			Topic:       c.Topic,
			Date:        c.Date,
			ActionTaken: c.ActionTaken,
			Remark:      c.Remark,
			Sign:        c.Sign,
		})
	}
	return req
}

func ptr[T any](v T) *T {
	return &v
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
