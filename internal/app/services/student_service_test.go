package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newStudentFixture() (StudentService, *fakeStudentStore, *fakeRecordStore, *fakePhotoStorage, *recordingPublisher) {
	students := newFakeStudentStore(newStudent("pi-1", "asha@college.edu", "Asha"))
	records := &fakeRecordStore{}
	photos := &fakePhotoStorage{}
	pub := &recordingPublisher{}
	svc := NewStudentService(students, records, photos, pub, StudentServiceConfig{Department: "CE"}, zerolog.Nop())
	return svc, students, records, photos, pub
}

func TestStudentService_GetProfile(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	resp, err := svc.GetProfile(context.Background(), "pi-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", resp.PersonalInfo.Name)
	assert.Len(t, resp.Marks, 8)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestStudentService_SaveRecord(t *testing.T) {
	svc, students, records, _, pub := newStudentFixture()

	req := &dto.CombinedUpdateRequest{
		PersonalInfo: &dto.PersonalInfoUpdate{MobileNo: strPtr("99999")},
		Marks:        []dto.MarkDTO{{Semester: "sem2", Marks: "66", NoOfKT: "2"}},
		Counseling:   []dto.CounselingDTO{{Topic: "Attendance"}},
	}
	require.NoError(t, svc.SaveRecord(context.Background(), "pi-1", req))

	stored := students.students["pi-1"].Record
	assert.Equal(t, "99999", stored.PersonalInfo.MobileNo)
	assert.Equal(t, "Asha", stored.PersonalInfo.Name)
	assert.Equal(t, "66", stored.Marks[1].Marks)
	assert.Equal(t, "Attendance", stored.Counseling[0].Topic)

	mirrored, ok := records.upserted["asha@college.edu"]
	require.True(t, ok)
	assert.Equal(t, stored, mirrored)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.RecordUpdated, pub.events[0].Type)
	assert.Equal(t, "pi-1", pub.events[0].RecordID)
}

func TestStudentService_SaveRecordSideChannelFailuresAreSwallowed(t *testing.T) {
	svc, _, records, _, pub := newStudentFixture()
	records.saveErr = errors.New("mongo down")
	pub.err = errors.New("kafka down")

	err := svc.SaveRecord(context.Background(), "pi-1", &dto.CombinedUpdateRequest{})
	assert.NoError(t, err)
}

func TestStudentService_SaveRecordUnknownStudent(t *testing.T) {
	svc, _, records, _, pub := newStudentFixture()

	err := svc.SaveRecord(context.Background(), "nobody", &dto.CombinedUpdateRequest{})
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Empty(t, records.upserted)
	assert.Empty(t, pub.events)
}

func TestStudentService_UploadPhoto(t *testing.T) {
	svc, students, _, photos, pub := newStudentFixture()

	resp, err := svc.UploadPhoto(context.Background(), "pi-1", &multipart.FileHeader{Filename: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, "users/pi-1", photos.publicID)
	assert.Equal(t, "https://cdn.example.com/users/pi-1.png", resp.PhotoURL)
	assert.Equal(t, resp.PhotoURL, students.students["pi-1"].Record.PersonalInfo.Photo)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.StudentPhotoUpdated, pub.events[0].Type)
}

func TestStudentService_UploadPhotoRejected(t *testing.T) {
	svc, students, _, photos, _ := newStudentFixture()
	photos.err = apperrors.ErrUnsupportedMediaType

	_, err := svc.UploadPhoto(context.Background(), "pi-1", &multipart.FileHeader{Filename: "me.txt"})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)
	assert.Empty(t, students.students["pi-1"].Record.PersonalInfo.Photo)
}

func TestStudentService_RenderReport(t *testing.T) {
	svc, _, _, _, _ := newStudentFixture()

	var buf bytes.Buffer
	require.NoError(t, svc.RenderReport(context.Background(), "pi-1", &buf))
	assert.Contains(t, buf.String(), "Asha")
	assert.Contains(t, buf.String(), "CE")
}
