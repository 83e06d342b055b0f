package symptoms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rural-health-core/internal/domain/healthrecords"
	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/domain/villagestats"
	"rural-health-core/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const (
	HistoryLimit = 20

	// Rango aceptado en °F; afuera es casi seguro un error de carga.
	minTemperatureF = 80.0
	maxTemperatureF = 115.0
)

// StatsRecorder recibe la contribución del envío a las estadísticas de la aldea.
// Inline es el Aggregator; con Kafka es un publisher.
type StatsRecorder interface {
	Record(ctx context.Context, e villagestats.Entry) error
}

// RecordAppender agrega la entrada symptom_check al historial del paciente.
type RecordAppender interface {
	Append(ctx context.Context, patientID string, in healthrecords.AppendInput) (healthrecords.Record, error)
}

type Service struct {
	repo     Repository
	records  RecordAppender
	stats    StatsRecorder
	classify triage.TextClassifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, records RecordAppender, stats StatsRecorder, classify triage.TextClassifier, log logger.Logger) *Service {
	if classify == nil {
		classify = triage.ClassifyAnalysis
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		records:  records,
		stats:    stats,
		classify: classify,
		log:      log.With(map[string]any{"module": "symptoms"}),
		now:      time.Now,
	}
}

type SubmitInput struct {
	PatientID      string
	Village        string
	Symptoms       []string
	Severity       string
	Duration       string
	TemperatureF   *float64
	AdditionalInfo string
	Analysis       string
	SubmittedBy    string
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (Submission, error) {
	patientID := strings.TrimSpace(in.PatientID)
	village := strings.TrimSpace(in.Village)
	if patientID == "" || village == "" {
		return Submission{}, ErrInvalidInput
	}

	labels := villagestats.CleanSymptoms(in.Symptoms)
	if len(labels) == 0 {
		return Submission{}, fmt.Errorf("%w: at least one symptom required", ErrInvalidInput)
	}

	severity, ok := triage.ParseSeverity(in.Severity)
	if !ok {
		return Submission{}, fmt.Errorf("%w: severity must be mild, moderate or severe", ErrInvalidInput)
	}

	if in.TemperatureF != nil {
		if t := *in.TemperatureF; t < minTemperatureF || t > maxTemperatureF {
			return Submission{}, fmt.Errorf("%w: temperature out of range", ErrInvalidInput)
		}
	}

	urgency := triage.ClassifySubmission(triage.Signals{
		Analysis:     in.Analysis,
		Severity:     severity,
		TemperatureF: in.TemperatureF,
	}, s.classify)

	sub := Submission{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		Village:        village,
		Symptoms:       labels,
		Severity:       severity,
		Duration:       strings.TrimSpace(in.Duration),
		TemperatureF:   in.TemperatureF,
		AdditionalInfo: strings.TrimSpace(in.AdditionalInfo),
		Analysis:       strings.TrimSpace(in.Analysis),
		Urgency:        urgency,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return Submission{}, err
	}

	if s.records != nil {
		if _, err := s.records.Append(ctx, patientID, healthrecords.AppendInput{
			Type:        healthrecords.TypeSymptomCheck,
			OccurredAt:  sub.CreatedAt,
			Title:       "Symptom check",
			Description: strings.Join(labels, ", "),
			Data: map[string]any{
				"submission_id": sub.ID,
				"urgency":       string(urgency),
				"severity":      string(severity),
			},
			RecordedBy: strings.TrimSpace(in.SubmittedBy),
			Source:     healthrecords.SourceSystem,
		}); err != nil {
			s.log.Warn("append symptom record failed", map[string]any{"submission_id": sub.ID, "err": err})
		}
	}

	// El envío ya quedó guardado; si la estadística falla se loguea y no se revierte.
	if s.stats != nil {
		entry := villagestats.Entry{
			Village:      village,
			Day:          villagestats.DayOf(sub.CreatedAt),
			Symptoms:     labels,
			Urgency:      urgency,
			SubmissionID: sub.ID,
		}
		if err := s.stats.Record(ctx, entry); err != nil {
			s.log.Error("record village stats failed", map[string]any{
				"submission_id": sub.ID,
				"village":       village,
				"day":           entry.Day,
				"err":           err,
			})
		}
	}

	if urgency == triage.UrgencyEmergency {
		s.log.Warn("emergency symptom submission", map[string]any{"patient_id": patientID, "village": village})
	}
	return sub, nil
}

// History devuelve los últimos envíos del paciente.
func (s *Service) History(ctx context.Context, patientID string) ([]Submission, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPatient(ctx, patientID, HistoryLimit)
}
