package villagestats

import (
	"strings"
	"time"
)

// DayLayout es el formato canónico de la clave de día (UTC).
const DayLayout = "2006-01-02"

// DayOf normaliza un instante a la clave de día. Todos los que escriben
// estadísticas tienen que pasar por acá para no contar doble entre zonas horarias.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DailyStat es el acumulado de una aldea en un día.
type DailyStat struct {
	Village string
	Day     string

	TotalCases     int
	EmergencyCases int

	// Symptoms en orden de primera aparición, sin repetidos.
	Symptoms []string

	Version   int64
	UpdatedAt time.Time
}

type SymptomCount struct {
	Symptom string
	Count   int
}

// TrendSummary es derivado, nunca se persiste.
type TrendSummary struct {
	TotalCases        int
	TotalEmergencies  int
	AverageDailyCases int
	EmergencyRate     int
	TopSymptoms       []SymptomCount
	DaysCounted       int
}

func normalizeVillage(v string) string {
	return strings.TrimSpace(v)
}
