package reminders

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultInterval se usa cuando la expresión no se puede interpretar.
// Es contrato: una expresión inválida nunca es un error.
const DefaultInterval = 24 * time.Hour

// "m" son meses aproximados a 30 días.
var intervalUnits = map[string]time.Duration{
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"m": 30 * 24 * time.Hour,
}

var intervalRe = regexp.MustCompile(`(\d+)([hdwm])`)

// ParseInterval interpreta "<n><unidad>" (h, d, w, m). Toma la primera coincidencia
// dentro de la expresión; si no hay, o el valor desborda, devuelve DefaultInterval.
func ParseInterval(expr string) time.Duration {
	m := intervalRe.FindStringSubmatch(expr)
	if m == nil {
		return DefaultInterval
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return DefaultInterval
	}

	unit, ok := intervalUnits[m[2]]
	if !ok {
		return DefaultInterval
	}
	if n > int64(math.MaxInt64/unit) {
		return DefaultInterval
	}
	return time.Duration(n) * unit
}

// HoursInterval arma la expresión compacta que se guarda en RepeatInterval.
func HoursInterval(hours int) string {
	return strconv.Itoa(hours) + "h"
}

// IntervalHoursForFrequency traduce el texto de frecuencia de una receta a horas.
// Heurística por keyword (contención exacta, primera coincidencia gana).
func IntervalHoursForFrequency(frequency string) int {
	f := strings.ToLower(frequency)
	switch {
	case strings.Contains(f, "twice") || strings.Contains(f, "2"):
		return 12
	case strings.Contains(f, "thrice") || strings.Contains(f, "3"):
		return 8
	case strings.Contains(f, "four") || strings.Contains(f, "4"):
		return 6
	default:
		return 24
	}
}
