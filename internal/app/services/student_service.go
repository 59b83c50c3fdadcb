package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/deptce/mentorship/internal/pkg/filestorage"
	"github.com/deptce/mentorship/internal/pkg/report"
	"github.com/rs/zerolog"
)

// StudentService handles a student's own mentoring record
type StudentService interface {
	GetProfile(ctx context.Context, profileID string) (*dto.StudentProfileResponse, error)
	SaveRecord(ctx context.Context, profileID string, req *dto.CombinedUpdateRequest) error
	UploadPhoto(ctx context.Context, profileID string, fileHeader *multipart.FileHeader) (*dto.PhotoUploadResponse, error)
	RenderReport(ctx context.Context, profileID string, w io.Writer) error
}

// StudentServiceConfig holds presentation and storage settings
type StudentServiceConfig struct {
	PhotoFolder string
	Department  string
}

type studentServiceImpl struct {
	students  StudentStore
	records   RecordStore
	photos    filestorage.PhotoStorage
	publisher events.Publisher
	cfg       StudentServiceConfig
	logger    zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	students StudentStore,
	records RecordStore,
	photos filestorage.PhotoStorage,
	publisher events.Publisher,
	cfg StudentServiceConfig,
	logger zerolog.Logger,
) StudentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if cfg.PhotoFolder == "" {
		cfg.PhotoFolder = "users"
	}
	return &studentServiceImpl{
		students:  students,
		records:   records,
		photos:    photos,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// GetProfile returns the full record of a student in the backend dialect
func (s *studentServiceImpl) GetProfile(ctx context.Context, profileID string) (*dto.StudentProfileResponse, error) {
	agg, err := s.students.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentProfileResponse(agg)
	return &resp, nil
}

// SaveRecord applies a wholesale save in one transaction, then mirrors the
// result into the document store
func (s *studentServiceImpl) SaveRecord(ctx context.Context, profileID string, req *dto.CombinedUpdateRequest) error {
	agg, err := s.students.UpdateRecord(ctx, profileID, func(rec *models.StudentRecord) error {
		req.ApplyTo(rec)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return err
		}
		return fmt.Errorf("error saving student record: %w", err)
	}

	s.logger.Info().Str("studentID", profileID).Msg("Student record saved")
	s.afterChange(ctx, agg, events.RecordUpdated)
	return nil
}

// UploadPhoto stores the photo under the student's stable public id and
// records its URL
func (s *studentServiceImpl) UploadPhoto(ctx context.Context, profileID string, fileHeader *multipart.FileHeader) (*dto.PhotoUploadResponse, error) {
	agg, err := s.students.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	url, err := s.photos.SavePhoto(ctx, path.Join(s.cfg.PhotoFolder, profileID), fileHeader)
	if err != nil {
		return nil, err
	}

	if err := s.students.UpdatePhoto(ctx, profileID, url); err != nil {
		return nil, fmt.Errorf("error saving photo url: %w", err)
	}
	agg.Record.PersonalInfo.Photo = url

	s.logger.Info().Str("studentID", profileID).Str("url", url).Msg("Student photo updated")
	s.afterChange(ctx, agg, events.StudentPhotoUpdated)
	return &dto.PhotoUploadResponse{PhotoURL: url}, nil
}

// RenderReport writes the printable report of a student's record
func (s *studentServiceImpl) RenderReport(ctx context.Context, profileID string, w io.Writer) error {
	agg, err := s.students.GetByProfileID(ctx, profileID)
	if err != nil {
		return err
	}
	return report.Render(w, agg.Record, report.Options{Department: s.cfg.Department})
}

// afterChange mirrors the record and announces the change. Failures here
// never fail the request.
func (s *studentServiceImpl) afterChange(ctx context.Context, agg *models.StudentAggregate, t events.Type) {
	email := agg.Record.PersonalInfo.CollegeEmail
	if s.records != nil {
		if _, err := s.records.UpsertByEmail(ctx, email, agg.Record); err != nil {
			s.logger.Error().Err(err).Str("studentID", agg.Profile.ID).Msg("Failed to mirror record to document store")
		}
	}
	if err := s.publisher.Publish(ctx, events.New(t, agg.Profile.ID, email, agg.Profile.ID)); err != nil {
		s.logger.Warn().Err(err).Str("event", string(t)).Msg("Failed to publish record event")
	}
}
