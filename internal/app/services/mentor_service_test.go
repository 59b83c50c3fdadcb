package services

import (
	"context"
	"testing"

	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMentorFixture() (MentorService, *fakeStudentStore, *recordingPublisher) {
	a := newStudent("pi-1", "asha@college.edu", "Asha")
	a.Record.Marks[0].Marks = "80"
	a.Record.Marks[1].Marks = "60"
	a.Record.Marks[1].NoOfKT = "1"
	b := newStudent("pi-2", "ravi@college.edu", "Ravi")

	students := newFakeStudentStore(a, b)
	pub := &recordingPublisher{}
	mentors := &fakeMentorStore{}
	return NewMentorService(mentors, students, pub, zerolog.Nop()), students, pub
}

func TestMentorService_AssignAndList(t *testing.T) {
	svc, _, _ := newMentorFixture()
	ctx := context.Background()

	require.NoError(t, svc.AssignStudent(ctx, "m-1", "asha@college.edu"))
	assert.ErrorIs(t, svc.AssignStudent(ctx, "m-1", "ghost@college.edu"), apperrors.ErrStudentNotFound)

	items, err := svc.ListStudents(ctx, "m-1", &dto.MentorStudentFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pi-1", items[0].ID)
	assert.Equal(t, "70.0", items[0].Summary.AverageMarks)
	assert.Equal(t, 1, items[0].Summary.TotalKTs)

	items, err = svc.ListStudents(ctx, "m-2", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMentorService_SetBan(t *testing.T) {
	svc, students, pub := newMentorFixture()
	ctx := context.Background()

	resp, err := svc.SetBan(ctx, "m-1", "ravi@college.edu", true)
	require.NoError(t, err)
	assert.Equal(t, "Student ravi@college.edu has been banned successfully.", resp.Message)
	assert.True(t, students.students["pi-2"].Profile.IsBan)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.StudentBanChanged, pub.events[0].Type)
	assert.Equal(t, "true", pub.events[0].Data["isBan"])

	resp, err = svc.SetBan(ctx, "m-1", "ravi@college.edu", false)
	require.NoError(t, err)
	assert.Equal(t, "Student ravi@college.edu has been unbanned successfully.", resp.Message)

	_, err = svc.SetBan(ctx, "m-1", "ghost@college.edu", true)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
