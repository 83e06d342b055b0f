package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rural-health-core/internal/domain/healthrecords"
	"rural-health-core/internal/domain/reminders"
	"rural-health-core/internal/platform/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ReminderScheduler es la parte del scheduler de recordatorios que usa una receta nueva.
type ReminderScheduler interface {
	ScheduleInitialReminders(ctx context.Context, patientID, prescriptionID string, medicines []reminders.Medicine) ([]reminders.Reminder, error)
}

type RecordAppender interface {
	Append(ctx context.Context, patientID string, in healthrecords.AppendInput) (healthrecords.Record, error)
}

type Service struct {
	repo      Repository
	scheduler ReminderScheduler
	records   RecordAppender
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, scheduler ReminderScheduler, records RecordAppender, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		records:   records,
		log:       log.With(map[string]any{"module": "prescriptions"}),
		now:       time.Now,
	}
}

type CreateInput struct {
	DoctorName    string
	Medicines     []Medicine
	ExtractedText string
	PrescribedBy  string
}

// CreateResult incluye los recordatorios iniciales generados.
type CreateResult struct {
	Prescription Prescription
	Reminders    []reminders.Reminder
}

func (s *Service) Create(ctx context.Context, patientID string, in CreateInput) (CreateResult, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return CreateResult{}, ErrInvalidInput
	}
	if len(in.Medicines) == 0 {
		return CreateResult{}, fmt.Errorf("%w: at least one medicine required", ErrInvalidInput)
	}

	meds := make([]Medicine, 0, len(in.Medicines))
	for _, m := range in.Medicines {
		m = Medicine{
			Name:         strings.TrimSpace(m.Name),
			Dosage:       strings.TrimSpace(m.Dosage),
			Frequency:    strings.TrimSpace(m.Frequency),
			Duration:     strings.TrimSpace(m.Duration),
			Instructions: strings.TrimSpace(m.Instructions),
		}
		// Frecuencia vacía o no reconocida es válida: el scheduler cae a 24h.
		if m.Name == "" {
			return CreateResult{}, fmt.Errorf("%w: medicine name required", ErrInvalidInput)
		}
		meds = append(meds, m)
	}

	p := Prescription{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		DoctorName:    strings.TrimSpace(in.DoctorName),
		Medicines:     meds,
		ExtractedText: strings.TrimSpace(in.ExtractedText),
		Active:        true,
		PrescribedBy:  strings.TrimSpace(in.PrescribedBy),
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return CreateResult{}, err
	}

	// El scheduler inserta todos los recordatorios o ninguno; si falla la receta no queda activa.
	scheduled, err := s.scheduler.ScheduleInitialReminders(ctx, patientID, p.ID, toReminderMedicines(meds))
	if err != nil {
		err = fmt.Errorf("schedule reminders: %w", err)
		if derr := s.repo.Deactivate(ctx, p.ID); derr != nil {
			s.log.Error("rollback prescription failed", map[string]any{"prescription_id": p.ID, "err": derr})
			return CreateResult{}, errors.Join(err, derr)
		}
		return CreateResult{}, err
	}

	if s.records != nil {
		if _, err := s.records.Append(ctx, patientID, healthrecords.AppendInput{
			Type:        healthrecords.TypePrescription,
			OccurredAt:  p.CreatedAt,
			Title:       "Prescription",
			Description: strings.Join(lo.Map(meds, func(m Medicine, _ int) string { return m.Name }), ", "),
			Data: map[string]any{
				"prescription_id": p.ID,
				"doctor_name":     p.DoctorName,
				"medicines":       meds,
			},
			RecordedBy: p.PrescribedBy,
			Source:     healthrecords.SourceSystem,
		}); err != nil {
			s.log.Warn("append prescription record failed", map[string]any{"prescription_id": p.ID, "err": err})
		}
	}

	return CreateResult{Prescription: p, Reminders: scheduled}, nil
}

func toReminderMedicines(meds []Medicine) []reminders.Medicine {
	return lo.Map(meds, func(m Medicine, _ int) reminders.Medicine {
		return reminders.Medicine{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			Duration:     m.Duration,
			Instructions: m.Instructions,
		}
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prescription{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListByPatient: más recientes primero.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	return s.repo.ListByPatient(ctx, strings.TrimSpace(patientID))
}

// Deactivate marca la receta como inactiva. Los recordatorios ya generados no se tocan.
func (s *Service) Deactivate(ctx context.Context, id string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Prescription{}, ErrInvalidInput
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return Prescription{}, err
	}
	return s.repo.GetByID(ctx, id)
}
