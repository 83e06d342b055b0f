package villagestats

import (
	"errors"
	"net/http"
	"time"

	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

// RegisterRoutes expone el tablero por aldea. Son datos agregados, sin
// información de pacientes, así que basta con estar autenticado (lo resuelve el router).
func RegisterRoutes(r chi.Router, reporter *Reporter) {
	r.Route("/villages/{village}", func(vr chi.Router) {
		vr.Get("/stats", recentStatsHandler(reporter))
		vr.Get("/trends", trendsHandler(reporter))
	})
}

type dailyStatResponse struct {
	Village        string    `json:"village"`
	Day            string    `json:"day"`
	TotalCases     int       `json:"total_cases"`
	EmergencyCases int       `json:"emergency_cases"`
	Symptoms       []string  `json:"symptoms"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type symptomCountResponse struct {
	Symptom string `json:"symptom"`
	Count   int    `json:"count"`
}

type trendsResponse struct {
	TotalCases        int                    `json:"total_cases"`
	TotalEmergencies  int                    `json:"total_emergencies"`
	AverageDailyCases int                    `json:"average_daily_cases"`
	EmergencyRate     int                    `json:"emergency_rate"`
	TopSymptoms       []symptomCountResponse `json:"top_symptoms"`
	DaysCounted       int                    `json:"days_counted"`
}

// recentStatsHandler godoc
// @Summary Estadísticas diarias recientes de una aldea
// @Tags villages
// @Produce json
// @Param village path string true "Aldea"
// @Param days query int false "Cantidad de días (1-365). Por defecto 7"
// @Success 200 {array} dailyStatResponse
// @Failure 400 {string} string "invalid village"
// @Failure 500 {string} string "internal error"
// @Router /villages/{village}/stats [get]
func recentStatsHandler(reporter *Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := httpx.QueryInt(r, "days", DefaultRecentDays, 1, MaxWindow)

		items, err := reporter.Recent(r.Context(), chi.URLParam(r, "village"), days)
		if err != nil {
			writeErr(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, lo.Map(items, func(s DailyStat, _ int) dailyStatResponse {
			return toDailyStatResponse(s)
		}))
	}
}

// trendsHandler godoc
// @Summary Tendencias de una aldea
// @Description Resume los últimos `window` registros diarios. Devuelve `null` si la aldea no tiene datos.
// @Tags villages
// @Produce json
// @Param village path string true "Aldea"
// @Param window query int false "Ventana en registros diarios (1-365). Por defecto 30"
// @Success 200 {object} trendsResponse
// @Failure 400 {string} string "invalid village"
// @Failure 500 {string} string "internal error"
// @Router /villages/{village}/trends [get]
func trendsHandler(reporter *Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := httpx.QueryInt(r, "window", DefaultTrendWindow, 1, MaxWindow)

		sum, err := reporter.Trends(r.Context(), chi.URLParam(r, "village"), window)
		if err != nil {
			writeErr(w, err)
			return
		}
		if sum == nil {
			httpx.WriteJSON(w, http.StatusOK, nil)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, trendsResponse{
			TotalCases:        sum.TotalCases,
			TotalEmergencies:  sum.TotalEmergencies,
			AverageDailyCases: sum.AverageDailyCases,
			EmergencyRate:     sum.EmergencyRate,
			TopSymptoms: lo.Map(sum.TopSymptoms, func(c SymptomCount, _ int) symptomCountResponse {
				return symptomCountResponse{Symptom: c.Symptom, Count: c.Count}
			}),
			DaysCounted: sum.DaysCounted,
		})
	}
}

func writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, "invalid village", http.StatusBadRequest)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toDailyStatResponse(s DailyStat) dailyStatResponse {
	symptoms := s.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return dailyStatResponse{
		Village:        s.Village,
		Day:            s.Day,
		TotalCases:     s.TotalCases,
		EmergencyCases: s.EmergencyCases,
		Symptoms:       symptoms,
		UpdatedAt:      s.UpdatedAt,
	}
}
