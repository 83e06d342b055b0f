package healthrecords

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type AppendInput struct {
	Type        RecordType
	OccurredAt  time.Time // zero = ahora
	Title       string
	Description string
	Data        map[string]any
	RecordedBy  string
	Source      Source
}

func (s *Service) Append(ctx context.Context, patientID string, in AppendInput) (Record, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Record{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return Record{}, ErrInvalidInput
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Record{}, ErrInvalidInput
	}

	now := s.now()
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	src := in.Source
	if src == "" {
		src = SourceManual
	}
	data := in.Data
	if data == nil {
		data = map[string]any{}
	}

	rec := Record{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		Type:        in.Type,
		OccurredAt:  occurred,
		RecordedAt:  now,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Data:        data,
		RecordedBy:  strings.TrimSpace(in.RecordedBy),
		Source:      src,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Record, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID, filter)
}
