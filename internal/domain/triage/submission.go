package triage

import "strings"

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityMild:
		return SeverityMild, true
	case SeverityModerate:
		return SeverityModerate, true
	case SeveritySevere:
		return SeveritySevere, true
	}
	return "", false
}

// FeverThresholdF: a partir de acá la temperatura sube el nivel a high como mínimo.
const FeverThresholdF = 103.0

// Signals son los campos de una carga de síntomas que sirven para clasificar.
type Signals struct {
	Analysis     string
	Severity     Severity
	TemperatureF *float64
}

// ClassifySubmission usa el texto de análisis si existe; si no, cae a los campos estructurados.
func ClassifySubmission(in Signals, classify TextClassifier) Urgency {
	if classify == nil {
		classify = ClassifyAnalysis
	}
	if strings.TrimSpace(in.Analysis) != "" {
		return classify(in.Analysis)
	}

	u := defaultUrgency
	switch in.Severity {
	case SeverityMild:
		u = UrgencyLow
	case SeverityModerate:
		u = UrgencyMedium
	case SeveritySevere:
		u = UrgencyHigh
	}

	if in.TemperatureF != nil && *in.TemperatureF >= FeverThresholdF {
		u = u.AtLeast(UrgencyHigh)
	}
	return u
}
