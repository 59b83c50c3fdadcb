package normalize

import (
	"encoding/json"

	"github.com/deptce/mentorship/internal/app/models"
)

// Record builds a fully populated record from decoded JSON in either the
// backend (snake_case) or document (camelCase) dialect. Input that is not an
// object yields models.NewStudentRecord().
func Record(raw any) models.StudentRecord {
	rec := models.NewStudentRecord()
	root, ok := asObject(raw)
	if !ok {
		return rec
	}

	info := object(root, "personalInfo", "personal_info")
	p := &rec.PersonalInfo
	p.Name = String(field(info, "name"))
	p.EnrollmentNo = String(field(info, "enrollmentNo", "enrollment_no"))
	p.DateOfBirth = String(field(info, "dateOfBirth", "date_of_birth"))
	p.BloodGroup = String(field(info, "bloodGroup", "blood_group"))
	p.AadharNo = String(field(info, "aadharNo", "aadhar_no"))
	p.PersonalEmail = String(field(info, "personalEmail", "personal_email"))
	p.CollegeEmail = String(field(info, "collegeEmail", "college_email", "atharvaEmail", "atharva_email"))
	p.MobileNo = String(field(info, "mobileNo", "mobile_no"))
	p.FatherName = String(field(info, "fatherName", "father_name"))
	p.FatherOccupation = String(field(info, "fatherOccupation", "father_occupation"))
	p.FatherMobile = String(field(info, "fatherMobile", "father_mobile"))
	p.MotherName = String(field(info, "motherName", "mother_name"))
	p.MotherOccupation = String(field(info, "motherOccupation", "mother_occupation"))
	p.MotherMobile = String(field(info, "motherMobile", "mother_mobile"))
	p.LocalAddress = String(field(info, "localAddress", "local_address"))
	p.PermanentAddress = String(field(info, "permanentAddress", "permanent_address"))
	p.SSC = String(field(info, "ssc"))
	p.HSC = String(field(info, "hsc"))
	p.Diploma = String(field(info, "diploma"))
	p.NSSMember = Bool(field(info, "nssMember", "nss_member"))
	p.EmberMember = Bool(field(info, "emberMember", "ember_member"))
	p.RhythmMember = Bool(field(info, "rhythmMember", "rhythm_member"))
	p.Sport = String(field(info, "sport"))
	p.Other = String(field(info, "other"))
	p.Photo = String(field(info, "photo"))

	marks := list(root, "marks")
	for i := range rec.Marks {
		m := objectAt(marks, i)
		if label := String(field(m, "semester")); label != "" {
			rec.Marks[i].Semester = label
		}
		rec.Marks[i].Marks = String(field(m, "marks"))
		rec.Marks[i].NoOfKT = String(field(m, "noOfKT", "no_of_kt"))
		rec.Marks[i].KTSubject = String(field(m, "ktSubject", "kt_subject"))
	}

	ach := object(root, "achievements")
	rec.Achievements = models.Achievements{
		FirstYear:  String(field(ach, "firstYear", "first_year")),
		SecondYear: String(field(ach, "secondYear", "second_year")),
		ThirdYear:  String(field(ach, "thirdYear", "third_year")),
		FinalYear:  String(field(ach, "finalYear", "final_year")),
	}

	mentors := list(root, "mentors")
	for i := range rec.Mentors {
		m := objectAt(mentors, i)
		if label := String(field(m, "semester")); label != "" {
			rec.Mentors[i].Semester = label
		}
		rec.Mentors[i].MentorName = String(field(m, "mentorName", "mentor_name"))
	}

	counseling := list(root, "counseling")
	for i := range rec.Counseling {
		c := objectAt(counseling, i)
		if n := Int(field(c, "srNo", "sr_no")); n > 0 {
			rec.Counseling[i].SrNo = n
		}
		rec.Counseling[i].Topic = String(field(c, "topic"))
		rec.Counseling[i].Date = String(field(c, "date"))
		rec.Counseling[i].ActionTaken = String(field(c, "actionTaken", "action_taken"))
		rec.Counseling[i].Remark = String(field(c, "remark"))
		rec.Counseling[i].Sign = String(field(c, "sign"))
	}

	return rec
}

// RecordJSON decodes data and normalizes it. Undecodable input yields the
// empty record.
func RecordJSON(data []byte) models.StudentRecord {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.NewStudentRecord()
	}
	return Record(raw)
}

// Value round-trips a typed value through JSON and normalizes the result, so
// already typed records get their slots padded as well.
func Value(v any) models.StudentRecord {
	b, err := json.Marshal(v)
	if err != nil {
		return models.NewStudentRecord()
	}
	return RecordJSON(b)
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func object(m map[string]any, keys ...string) map[string]any {
	obj, _ := asObject(field(m, keys...))
	return obj
}

func list(m map[string]any, key string) []any {
	l, _ := field(m, key).([]any)
	return l
}

func objectAt(l []any, i int) map[string]any {
	if i >= len(l) {
		return nil
	}
	obj, _ := asObject(l[i])
	return obj
}
