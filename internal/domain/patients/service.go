package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
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

type CreateInput struct {
	Name              string
	Age               int
	Gender            string
	Village           string
	PhoneNumber       string
	EmergencyContact  string
	BloodGroup        string
	Allergies         []string
	ChronicConditions []string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Patient, error) {
	if strings.TrimSpace(userID) == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Village) == "" {
		return Patient{}, ErrInvalidInput
	}
	if in.Age < 0 || in.Age > 150 {
		return Patient{}, ErrInvalidInput
	}

	now := s.now()
	p := Patient{
		ID:                uuid.NewString(),
		UserID:            strings.TrimSpace(userID),
		Name:              strings.TrimSpace(in.Name),
		Age:               in.Age,
		Gender:            strings.TrimSpace(in.Gender),
		Village:           strings.TrimSpace(in.Village),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		EmergencyContact:  strings.TrimSpace(in.EmergencyContact),
		BloodGroup:        strings.TrimSpace(in.BloodGroup),
		Allergies:         cleanList(in.Allergies),
		ChronicConditions: cleanList(in.ChronicConditions),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Patient, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Authorize devuelve el paciente si pertenece a userID.
// ErrNotFound si no existe, ErrForbidden si es de otro usuario.
func (s *Service) Authorize(ctx context.Context, patientID, userID string) (Patient, error) {
	p, err := s.GetByID(ctx, patientID)
	if err != nil {
		return Patient{}, ErrNotFound
	}
	if strings.TrimSpace(userID) == "" || p.UserID != userID {
		return Patient{}, ErrForbidden
	}
	return p, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
// Village no se edita: cambiarla partiría las estadísticas del paciente entre aldeas.
type UpdateInput struct {
	Name              *string
	Age               *int
	PhoneNumber       *string
	EmergencyContact  *string
	BloodGroup        *string
	Allergies         *[]string
	ChronicConditions *[]string
}

func (s *Service) Update(ctx context.Context, patientID, userID string, in UpdateInput) (Patient, error) {
	p, err := s.Authorize(ctx, patientID, userID)
	if err != nil {
		return Patient{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Patient{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Age != nil {
		if *in.Age < 0 || *in.Age > 150 {
			return Patient{}, ErrInvalidInput
		}
		p.Age = *in.Age
	}
	if in.PhoneNumber != nil {
		p.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = strings.TrimSpace(*in.EmergencyContact)
	}
	if in.BloodGroup != nil {
		p.BloodGroup = strings.TrimSpace(*in.BloodGroup)
	}
	if in.Allergies != nil {
		p.Allergies = cleanList(*in.Allergies)
	}
	if in.ChronicConditions != nil {
		p.ChronicConditions = cleanList(*in.ChronicConditions)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

func cleanList(in []string) []string {
	trimmed := lo.Map(in, func(v string, _ int) string { return strings.TrimSpace(v) })
	return lo.Uniq(lo.Compact(trimmed))
}
