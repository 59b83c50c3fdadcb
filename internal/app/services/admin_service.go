package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/app/models/dto"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/events"
	"github.com/deptce/mentorship/internal/pkg/helpers"
	"github.com/deptce/mentorship/internal/pkg/recordfilter"
	"github.com/deptce/mentorship/internal/pkg/report"
	"github.com/rs/zerolog"
)

// AdminService works directly on the document store records
type AdminService interface {
	ListRecords(ctx context.Context, query *dto.RecordQuery, page, size int) (*dto.PaginatedResponse, error)
	GetRecord(ctx context.Context, id string) (*dto.RecordResponse, error)
	UpdateCounseling(ctx context.Context, id string, index int, req *dto.CounselingUpdateRequest, actor string) (*dto.RecordResponse, error)
	MentorNames(ctx context.Context) (*dto.MentorNamesResponse, error)
	Export(ctx context.Context, w io.Writer) error
	RenderReport(ctx context.Context, id string, w io.Writer) error
}

type adminServiceImpl struct {
	records    RecordStore
	publisher  events.Publisher
	department string
	logger     zerolog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(records RecordStore, publisher events.Publisher, department string, logger zerolog.Logger) AdminService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &adminServiceImpl{
		records:    records,
		publisher:  publisher,
		department: department,
		logger:     logger,
	}
}

// ListRecords returns one page of the records matching query, in store order
func (s *adminServiceImpl) ListRecords(ctx context.Context, query *dto.RecordQuery, page, size int) (*dto.PaginatedResponse, error) {
	docs, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}

	var criteria recordfilter.Criteria
	if query != nil {
		criteria = recordfilter.Criteria{Search: query.Search, Semester: query.Semester, Mentor: query.Mentor}
	}
	docs = recordfilter.Apply(docs, criteria, func(d *models.RecordDocument) models.StudentRecord { return d.Record })

	start, end := helpers.CalculateSliceIndices(page, size, len(docs))
	items := make([]dto.RecordResponse, 0, end-start)
	for _, doc := range docs[start:end] {
		items = append(items, dto.NewRecordResponse(doc))
	}

	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(int64(len(docs)), page, size),
	}, nil
}

// GetRecord returns one record with its aggregates
func (s *adminServiceImpl) GetRecord(ctx context.Context, id string) (*dto.RecordResponse, error) {
	doc, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewRecordResponse(doc)
	return &resp, nil
}

// UpdateCounseling replaces the editable fields of counseling slot index on
// a copy of the record and persists the whole copy
func (s *adminServiceImpl) UpdateCounseling(ctx context.Context, id string, index int, req *dto.CounselingUpdateRequest, actor string) (*dto.RecordResponse, error) {
	if index < 0 || index >= models.CounselingSlots {
		return nil, fmt.Errorf("%w: index %d not in 0..%d", apperrors.ErrSlotOutOfRange, index, models.CounselingSlots-1)
	}

	doc, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := doc.Record.Clone()
	slot := &rec.Counseling[index]
	slot.Topic = req.Topic
	slot.Date = req.Date
	slot.ActionTaken = req.ActionTaken
	slot.Remark = req.Remark

	updated, err := s.records.SaveRecord(ctx, id, rec)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("recordID", id).Int("index", index).Str("actor", actor).Msg("Counseling slot updated")
	ev := events.New(events.RecordCounselingUpdated, id, doc.Email, actor)
	ev.Data = map[string]string{"index": strconv.Itoa(index)}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish counseling event")
	}

	resp := dto.NewRecordResponse(&models.RecordDocument{ID: doc.ID, Email: doc.Email, Record: rec, Updated: updated})
	return &resp, nil
}

// MentorNames lists the distinct mentor names across all records
func (s *adminServiceImpl) MentorNames(ctx context.Context) (*dto.MentorNamesResponse, error) {
	docs, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	recs := make([]models.StudentRecord, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.Record)
	}
	names := recordfilter.MentorNames(recs)
	if names == nil {
		names = []string{}
	}
	return &dto.MentorNamesResponse{Mentors: names}, nil
}

// Export writes every stored record, without its document envelope, as an
// indented JSON array
func (s *adminServiceImpl) Export(ctx context.Context, w io.Writer) error {
	docs, err := s.records.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing records: %w", err)
	}
	forms := make([]models.StudentRecord, 0, len(docs))
	for _, doc := range docs {
		forms = append(forms, doc.Record)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(forms); err != nil {
		return fmt.Errorf("error encoding export: %w", err)
	}
	return nil
}

// RenderReport writes the printable report of one record
func (s *adminServiceImpl) RenderReport(ctx context.Context, id string, w io.Writer) error {
	doc, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return report.Render(w, doc.Record, report.Options{Department: s.department})
}
