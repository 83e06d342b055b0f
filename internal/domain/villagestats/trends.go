package villagestats

import (
	"context"
	"math"
	"sort"

	"github.com/samber/lo"
)

const (
	DefaultTrendWindow = 30
	DefaultRecentDays  = 7
	MaxWindow          = 365
	topSymptomsLimit   = 5
)

type Reporter struct {
	repo Repository
}

func NewReporter(repo Repository) *Reporter {
	return &Reporter{repo: repo}
}

// Trends resume los últimos windowDays registros de la aldea.
// Devuelve nil (sin error) cuando no hay datos.
func (r *Reporter) Trends(ctx context.Context, village string, windowDays int) (*TrendSummary, error) {
	village = normalizeVillage(village)
	if village == "" {
		return nil, ErrInvalidInput
	}
	if windowDays <= 0 {
		windowDays = DefaultTrendWindow
	}
	if windowDays > MaxWindow {
		windowDays = MaxWindow
	}

	records, err := r.repo.ListRecent(ctx, village, windowDays)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

// Recent devuelve los registros crudos, día más reciente primero.
func (r *Reporter) Recent(ctx context.Context, village string, days int) ([]DailyStat, error) {
	village = normalizeVillage(village)
	if village == "" {
		return nil, ErrInvalidInput
	}
	if days <= 0 {
		days = DefaultRecentDays
	}
	if days > MaxWindow {
		days = MaxWindow
	}
	return r.repo.ListRecent(ctx, village, days)
}

// Summarize espera records ordenados del más reciente al más antiguo.
func Summarize(records []DailyStat) *TrendSummary {
	if len(records) == 0 {
		return nil
	}

	total := lo.SumBy(records, func(s DailyStat) int { return s.TotalCases })
	emergencies := lo.SumBy(records, func(s DailyStat) int { return s.EmergencyCases })

	rate := 0
	if total > 0 {
		rate = roundHalfUp(100 * float64(emergencies) / float64(total))
	}

	return &TrendSummary{
		TotalCases:        total,
		TotalEmergencies:  emergencies,
		AverageDailyCases: roundHalfUp(float64(total) / float64(len(records))),
		EmergencyRate:     rate,
		TopSymptoms:       topSymptoms(records, topSymptomsLimit),
		DaysCounted:       len(records),
	}
}

// topSymptoms cuenta en cuántos registros aparece cada etiqueta.
// Empates: gana la que apareció antes recorriendo del más reciente al más antiguo.
func topSymptoms(records []DailyStat, n int) []SymptomCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, rec := range records {
		for _, s := range lo.Uniq(rec.Symptoms) {
			if _, seen := counts[s]; !seen {
				order = append(order, s)
			}
			counts[s]++
		}
	}

	out := lo.Map(order, func(s string, _ int) SymptomCount {
		return SymptomCount{Symptom: s, Count: counts[s]}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if len(out) > n {
		out = out[:n]
	}
	return out
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
