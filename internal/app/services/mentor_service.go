package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/app/repositories"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/deptce/mentorship/internal/pkg/recordstats"
	"github.com/rs/zerolog"
)

// MentorService handles a mentor's view of their students
type MentorService interface {
	GetMentor(ctx context.Context, mentorID string) (*models.Mentor, error)
	ListStudents(ctx context.Context, mentorID string, filter *dto.MentorStudentFilter) ([]dto.MentorStudentItem, error)
	AssignStudent(ctx context.Context, mentorID, email string) error
	SetBan(ctx context.Context, mentorID, email string, isBan bool) (*dto.SuccessResponse, error)
}

type mentorServiceImpl struct {
	mentors   MentorStore
	students  StudentStore
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewMentorService creates a new MentorService
func NewMentorService(mentors MentorStore, students StudentStore, publisher events.Publisher, logger zerolog.Logger) MentorService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &mentorServiceImpl{
		mentors:   mentors,
		students:  students,
		publisher: publisher,
		logger:    logger,
	}
}

// GetMentor returns the mentor with the given id
func (s *mentorServiceImpl) GetMentor(ctx context.Context, mentorID string) (*models.Mentor, error) {
	return s.mentors.GetByID(ctx, mentorID)
}

// ListStudents returns the mentor's students with their aggregates
func (s *mentorServiceImpl) ListStudents(ctx context.Context, mentorID string, filter *dto.MentorStudentFilter) ([]dto.MentorStudentItem, error) {
	f := repositories.StudentFilter{MentorID: mentorID}
	if filter != nil {
		f.Name = filter.Name
		f.Semester = filter.Semester
		f.IsBan = filter.IsBan
	}

	aggs, err := s.students.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	items := make([]dto.MentorStudentItem, 0, len(aggs))
	for _, agg := range aggs {
		items = append(items, dto.MentorStudentItem{
			ID:      agg.Profile.ID,
			IsBan:   agg.Profile.IsBan,
			Record:  dto.NewStudentProfileResponse(agg),
			Summary: recordstats.Summarize(agg.Record),
		})
	}
	return items, nil
}

// AssignStudent makes mentorID the mentor of the student with email
func (s *mentorServiceImpl) AssignStudent(ctx context.Context, mentorID, email string) error {
	if err := s.students.AssignMentor(ctx, email, mentorID); err != nil {
		return err
	}
	s.logger.Info().Str("mentorID", mentorID).Str("email", email).Msg("Student assigned to mentor")
	return nil
}

// SetBan sets or clears the ban flag of the student with email
func (s *mentorServiceImpl) SetBan(ctx context.Context, mentorID, email string, isBan bool) (*dto.SuccessResponse, error) {
	agg, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.students.SetBan(ctx, email, isBan); err != nil {
		return nil, err
	}

	action := "unbanned"
	if isBan {
		action = "banned"
	}
	s.logger.Info().Str("mentorID", mentorID).Str("email", email).Bool("isBan", isBan).Msg("Student ban changed")

	ev := events.New(events.StudentBanChanged, agg.Profile.ID, email, mentorID)
	ev.Data = map[string]string{"isBan": strconv.FormatBool(isBan)}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish ban event")
	}

	return &dto.SuccessResponse{
		Message: fmt.Sprintf("Student %s has been %s successfully.", email, action),
	}, nil
}
