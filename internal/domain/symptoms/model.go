package symptoms

import (
	"time"

	"rural-health-core/internal/domain/triage"
)

// Submission es un envío de síntomas ya clasificado. Inmutable.
type Submission struct {
	ID        string
	PatientID string
	Village   string

	Symptoms []string
	Severity triage.Severity
	Duration string

	TemperatureF   *float64
	AdditionalInfo string

	// Analysis es el texto libre del análisis (llega ya generado, no se produce acá).
	Analysis string
	Urgency  triage.Urgency

	CreatedAt time.Time
}
