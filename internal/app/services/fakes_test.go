package services

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/repositories"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/auth"
	"github.com/deptce/mentorship/internal/pkg/events"
)

type fakeMentorStore struct {
	byEmail map[string]*models.Mentor
}

func (f *fakeMentorStore) GetByEmail(_ context.Context, email string) (*models.Mentor, error) {
	if m, ok := f.byEmail[strings.ToLower(email)]; ok {
		return m, nil
	}
	return nil, apperrors.ErrMentorNotFound
}

func (f *fakeMentorStore) GetByID(_ context.Context, id string) (*models.Mentor, error) {
	for _, m := range f.byEmail {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperrors.ErrMentorNotFound
}

func (f *fakeMentorStore) Create(_ context.Context, m *models.Mentor) error {
	if f.byEmail == nil {
		f.byEmail = map[string]*models.Mentor{}
	}
	m.ID = "mentor-" + m.Email
	f.byEmail[strings.ToLower(m.Email)] = m
	return nil
}

func (f *fakeMentorStore) Count(context.Context) (int64, error) {
	return int64(len(f.byEmail)), nil
}

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[string]*models.StudentAggregate
	mentorOf map[string]string
	listErr  error
	seq      int
}

func newFakeStudentStore(aggs ...*models.StudentAggregate) *fakeStudentStore {
	f := &fakeStudentStore{students: map[string]*models.StudentAggregate{}, mentorOf: map[string]string{}}
	for _, a := range aggs {
		f.students[a.Profile.ID] = a
	}
	return f
}

func (f *fakeStudentStore) GetByProfileID(_ context.Context, id string) (*models.StudentAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.students[id]; ok {
		cp := *a
		cp.Record = a.Record.Clone()
		return &cp, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByEmail(ctx context.Context, email string) (*models.StudentAggregate, error) {
	f.mu.Lock()
	var id string
	for _, a := range f.students {
		if strings.EqualFold(a.Record.PersonalInfo.CollegeEmail, email) {
			id = a.Profile.ID
		}
	}
	f.mu.Unlock()
	if id == "" {
		return nil, apperrors.ErrStudentNotFound
	}
	return f.GetByProfileID(ctx, id)
}

func (f *fakeStudentStore) List(_ context.Context, filter repositories.StudentFilter) ([]*models.StudentAggregate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.StudentAggregate
	for id, a := range f.students {
		if filter.MentorID != "" && f.mentorOf[id] != filter.MentorID {
			continue
		}
		if filter.IsBan != nil && a.Profile.IsBan != *filter.IsBan {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStudentStore) Create(_ context.Context, info models.PersonalInfo) (*models.StudentAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	rec := models.NewStudentRecord()
	rec.PersonalInfo = info
	agg := &models.StudentAggregate{
		Profile: models.StudentProfile{ID: "pi-new-" + strconv.Itoa(f.seq), Info: info},
		Record:  rec,
	}
	f.students[agg.Profile.ID] = agg
	return agg, nil
}

func (f *fakeStudentStore) UpdateRecord(ctx context.Context, profileID string, fn func(*models.StudentRecord) error) (*models.StudentAggregate, error) {
	agg, err := f.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := fn(&agg.Record); err != nil {
		return nil, err
	}
	agg.Record.EnsureSlots()
	f.mu.Lock()
	f.students[profileID] = agg
	f.mu.Unlock()
	return agg, nil
}

func (f *fakeStudentStore) UpdatePhoto(_ context.Context, profileID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.students[profileID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	a.Record.PersonalInfo.Photo = url
	return nil
}

func (f *fakeStudentStore) SetBan(_ context.Context, email string, isBan bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.students {
		if strings.EqualFold(a.Record.PersonalInfo.CollegeEmail, email) {
			a.Profile.IsBan = isBan
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) AssignMentor(_ context.Context, email, mentorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.students {
		if strings.EqualFold(a.Record.PersonalInfo.CollegeEmail, email) {
			f.mentorOf[id] = mentorID
			return nil
		}
	}
	return apperrors.ErrStudentNotFound
}

type fakeTokenStore struct {
	revoked map[string]time.Time
}

func (f *fakeTokenStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeRecordStore struct {
	docs     []*models.RecordDocument
	upserted map[string]models.StudentRecord
	saveErr  error
	now      time.Time
}

func (f *fakeRecordStore) List(context.Context) ([]*models.RecordDocument, error) {
	return f.docs, nil
}

func (f *fakeRecordStore) GetByID(_ context.Context, id string) (*models.RecordDocument, error) {
	for _, d := range f.docs {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (f *fakeRecordStore) SaveRecord(_ context.Context, id string, rec models.StudentRecord) (time.Time, error) {
	if f.saveErr != nil {
		return time.Time{}, f.saveErr
	}
	for _, d := range f.docs {
		if d.ID == id {
			d.Record = rec
			d.Updated = f.now
			return f.now, nil
		}
	}
	return time.Time{}, apperrors.ErrRecordNotFound
}

func (f *fakeRecordStore) UpsertByEmail(_ context.Context, email string, rec models.StudentRecord) (time.Time, error) {
	if f.saveErr != nil {
		return time.Time{}, f.saveErr
	}
	if f.upserted == nil {
		f.upserted = map[string]models.StudentRecord{}
	}
	f.upserted[email] = rec
	return f.now, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakePhotoStorage struct {
	publicID string
	err      error
}

func (s *fakePhotoStorage) SavePhoto(_ context.Context, publicID string, _ *multipart.FileHeader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.publicID = publicID
	return "https://cdn.example.com/" + publicID + ".png", nil
}

type fakeProvider struct {
	user *auth.OAuthUser
	err  error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(context.Context, string) (*auth.OAuthUser, error) {
	return p.user, p.err
}

func newStudent(id, email, name string) *models.StudentAggregate {
	rec := models.NewStudentRecord()
	rec.PersonalInfo.CollegeEmail = email
	rec.PersonalInfo.Name = name
	return &models.StudentAggregate{
		Profile: models.StudentProfile{ID: id, StudentID: "s-" + id, Info: rec.PersonalInfo},
		Record:  rec,
	}
}
