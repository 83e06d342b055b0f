package villagestats

import (
	"context"

	"rural-health-core/internal/domain/triage"
)

// Entry es la contribución de un envío de síntomas a la estadística del día.
// Es también el payload que viaja por el topic de estadísticas.
type Entry struct {
	Village      string         `json:"village"`
	Day          string         `json:"day"`
	Symptoms     []string       `json:"symptoms"`
	Urgency      triage.Urgency `json:"urgency"`
	SubmissionID string         `json:"submission_id,omitempty"`
}

// Key agrupa por (aldea, día). Los mensajes con la misma key caen en la misma partición.
func (e Entry) Key() string {
	return normalizeVillage(e.Village) + "|" + e.Day
}

// Record aplica una Entry. Implementa el StatsRecorder de symptoms para el modo inline.
func (a *Aggregator) Record(ctx context.Context, e Entry) error {
	_, err := a.RecordSubmission(ctx, e.Village, e.Day, e.Symptoms, e.Urgency)
	return err
}
