package villagestats

import (
	"context"
	"errors"
	"strings"
	"time"

	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/platform/logger"

	"github.com/samber/lo"
)

// Aggregator acumula envíos de síntomas en DailyStat.
// Read-modify-write con control optimista por versión: cada clave (village, day)
// avanza por su cuenta, claves distintas no se bloquean entre sí.
type Aggregator struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time

	// backoff entre reintentos; 0 en tests.
	backoff time.Duration
}

func NewAggregator(repo Repository, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		repo:    repo,
		log:     log.With(map[string]any{"module": "villagestats"}),
		now:     time.Now,
		backoff: 2 * time.Millisecond,
	}
}

// RecordSubmission suma un caso a (village, day). Los conflictos se reintentan
// hasta que se aplique o se cancele ctx.
func (a *Aggregator) RecordSubmission(ctx context.Context, village, day string, symptoms []string, urgency triage.Urgency) (DailyStat, error) {
	village = normalizeVillage(village)
	day = strings.TrimSpace(day)
	if village == "" || day == "" {
		return DailyStat{}, ErrInvalidInput
	}
	if _, err := time.Parse(DayLayout, day); err != nil {
		return DailyStat{}, ErrInvalidInput
	}

	labels := CleanSymptoms(symptoms)
	emergency := 0
	if urgency == triage.UrgencyEmergency {
		emergency = 1
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return DailyStat{}, err
		}

		stat, err := a.apply(ctx, village, day, labels, emergency)
		if err == nil {
			if attempt > 0 {
				a.log.Debug("stat update applied after retries", map[string]any{
					"village":  village,
					"day":      day,
					"attempts": attempt + 1,
				})
			}
			return stat, nil
		}
		if !errors.Is(err, ErrConflict) {
			return DailyStat{}, err
		}

		if a.backoff > 0 {
			select {
			case <-ctx.Done():
				return DailyStat{}, ctx.Err()
			case <-time.After(a.backoff):
			}
		}
	}
}

func (a *Aggregator) apply(ctx context.Context, village, day string, labels []string, emergency int) (DailyStat, error) {
	current, err := a.repo.Get(ctx, village, day)
	if errors.Is(err, ErrNotFound) {
		fresh := DailyStat{
			Village:        village,
			Day:            day,
			TotalCases:     1,
			EmergencyCases: emergency,
			Symptoms:       labels,
			Version:        1,
			UpdatedAt:      a.now(),
		}
		if err := a.repo.Insert(ctx, fresh); err != nil {
			return DailyStat{}, err
		}
		return fresh, nil
	}
	if err != nil {
		return DailyStat{}, err
	}

	next := current
	next.TotalCases++
	next.EmergencyCases += emergency
	next.Symptoms = MergeSymptoms(current.Symptoms, labels)
	next.Version = current.Version + 1
	next.UpdatedAt = a.now()

	if err := a.repo.Update(ctx, next, current.Version); err != nil {
		return DailyStat{}, err
	}
	return next, nil
}

// CleanSymptoms recorta etiquetas, descarta vacías y deja la primera aparición.
func CleanSymptoms(in []string) []string {
	trimmed := lo.Map(in, func(s string, _ int) string { return strings.TrimSpace(s) })
	out := lo.Uniq(lo.Compact(trimmed))
	if out == nil {
		return []string{}
	}
	return out
}

// MergeSymptoms agrega al final las etiquetas de add que no estén en base.
func MergeSymptoms(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	out = append(out, base...)
	return lo.Uniq(append(out, add...))
}
