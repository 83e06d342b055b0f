package triage

import "strings"

// Urgency es el nivel de triage (orientativo, no diagnóstico).
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

func (u Urgency) rank() int {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyHigh:
		return 2
	case UrgencyEmergency:
		return 3
	}
	return 1
}

// AtLeast devuelve el mayor entre u y min.
func (u Urgency) AtLeast(min Urgency) Urgency {
	if u.rank() < min.rank() {
		return min
	}
	return u
}

// TextClassifier convierte texto libre de análisis en un nivel.
// Los servicios dependen de este tipo y no de ClassifyAnalysis directamente.
type TextClassifier func(analysis string) Urgency

type rule struct {
	urgency  Urgency
	keywords []string
}

// El orden importa: gana la primera regla con alguna keyword presente.
var analysisRules = []rule{
	{urgency: UrgencyEmergency, keywords: []string{"emergency", "urgent"}},
	{urgency: UrgencyHigh, keywords: []string{"high priority"}},
	{urgency: UrgencyLow, keywords: []string{"low priority", "mild"}},
}

const defaultUrgency = UrgencyMedium

// ClassifyAnalysis aplica las reglas por keyword sobre el texto en minúsculas.
func ClassifyAnalysis(analysis string) Urgency {
	text := strings.ToLower(analysis)
	for _, r := range analysisRules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.urgency
			}
		}
	}
	return defaultUrgency
}

var _ TextClassifier = ClassifyAnalysis
