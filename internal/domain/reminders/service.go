package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rural-health-core/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	// FirstDoseDelay: el primer recordatorio de una receta queda a una hora de crearla.
	FirstDoseDelay = time.Hour

	DefaultUpcomingHorizon = 24 * time.Hour
	defaultListLimit       = 50
)

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		log:  log.With(map[string]any{"module": "reminders"}),
		now:  time.Now,
	}
}

// ScheduleInitialReminders crea un recordatorio de medicamento por cada línea de la receta.
func (s *Service) ScheduleInitialReminders(ctx context.Context, patientID, prescriptionID string, medicines []Medicine) ([]Reminder, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	first := now.Add(FirstDoseDelay)

	out := make([]Reminder, 0, len(medicines))
	for _, m := range medicines {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}

		out = append(out, Reminder{
			ID:             uuid.NewString(),
			PatientID:      patientID,
			PrescriptionID: strings.TrimSpace(prescriptionID),
			Kind:           KindMedicine,
			Title:          "Take " + name,
			Description:    medicineDescription(m),
			ScheduledAt:    first,
			MedicineKey:    name,
			RepeatInterval: HoursInterval(IntervalHoursForFrequency(m.Frequency)),
			CreatedAt:      now,
		})
	}

	if err := s.repo.CreateBatch(ctx, out); err != nil {
		return nil, fmt.Errorf("create initial reminders: %w", err)
	}

	s.log.Info("initial reminders scheduled", map[string]any{
		"patient_id":      patientID,
		"prescription_id": prescriptionID,
		"count":           len(out),
	})
	return out, nil
}

func medicineDescription(m Medicine) string {
	instr := strings.TrimSpace(m.Instructions)
	if instr == "" {
		instr = "As prescribed"
	}
	return strings.TrimSpace(m.Dosage) + " - " + instr
}

// CompleteResult devuelve el recordatorio completado y el siguiente si se generó.
type CompleteResult struct {
	Reminder Reminder
	Next     *Reminder
}

// Complete marca el recordatorio como completado. Si ya lo estaba es un no-op
// (no genera otro sucesor). El sucesor se inserta solo si esta llamada hizo la transición.
func (s *Service) Complete(ctx context.Context, id string) (CompleteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CompleteResult{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}

	t := Complete(r, s.now())
	if !t.Changed {
		return CompleteResult{Reminder: r}, nil
	}

	var next *Reminder
	if t.Spawn != nil {
		spawn := *t.Spawn
		spawn.ID = uuid.NewString()
		next = &spawn
	}

	changed, err := s.repo.CompleteAndSpawn(ctx, id, *t.Updated.CompletedAt, next)
	if err != nil {
		return CompleteResult{}, fmt.Errorf("complete reminder: %w", err)
	}
	if !changed {
		// Otra request completó primero; ella se encargó del sucesor.
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return CompleteResult{}, err
		}
		return CompleteResult{Reminder: current}, nil
	}

	res := CompleteResult{Reminder: t.Updated, Next: next}
	if next != nil {
		s.log.Debug("next reminder scheduled", map[string]any{
			"reminder_id":  id,
			"next_id":      next.ID,
			"scheduled_at": next.ScheduledAt,
		})
	}
	return res, nil
}

type CreateCustomInput struct {
	Kind           Kind
	Title          string
	Description    string
	ScheduledAt    time.Time
	RepeatInterval string
	MedicineKey    string
}

// CreateCustom inserta un recordatorio creado por el paciente.
// Solo se repite si viene RepeatInterval (y aplica la misma regla de completado).
func (s *Service) CreateCustom(ctx context.Context, patientID string, in CreateCustomInput) (Reminder, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return Reminder{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" || in.ScheduledAt.IsZero() {
		return Reminder{}, ErrInvalidInput
	}

	kind := in.Kind
	if kind == "" {
		kind = KindOther
	}
	if !kind.Valid() {
		return Reminder{}, ErrInvalidInput
	}

	r := Reminder{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		Kind:           kind,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		ScheduledAt:    in.ScheduledAt,
		MedicineKey:    strings.TrimSpace(in.MedicineKey),
		RepeatInterval: strings.TrimSpace(in.RepeatInterval),
		CreatedAt:      s.now(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListByPatient: historial completo, más recientes primero.
func (s *Service) ListByPatient(ctx context.Context, patientID string, limit int) ([]Reminder, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListByPatient(ctx, patientID, ListFilter{Limit: limit})
}

// Upcoming devuelve pendientes entre ahora y ahora+horizon, ascendente.
func (s *Service) Upcoming(ctx context.Context, patientID string, horizon time.Duration) ([]Reminder, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	if horizon <= 0 {
		horizon = DefaultUpcomingHorizon
	}
	now := s.now()
	return s.repo.ListPendingBetween(ctx, patientID, now, now.Add(horizon))
}

// Due devuelve pendientes de todos los pacientes en [from, to]. Lo usa el sweep del worker.
func (s *Service) Due(ctx context.Context, from, to time.Time) ([]Reminder, error) {
	if to.Before(from) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListPendingBetween(ctx, "", from, to)
}
