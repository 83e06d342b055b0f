package symptoms

import (
	"errors"
	"net/http"
	"time"

	"rural-health-core/internal/domain/patients"
	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/symptoms", func(sr chi.Router) {
		sr.Post("/", submitHandler(svc, patientsSvc))
		sr.Get("/", historyHandler(svc, patientsSvc))
	})
}

type submitRequest struct {
	Symptoms       []string `json:"symptoms"`
	Severity       string   `json:"severity" enums:"mild,moderate,severe"`
	Duration       string   `json:"duration"`
	Temperature    *float64 `json:"temperature"` // °F, opcional
	AdditionalInfo string   `json:"additional_info"`
	Analysis       string   `json:"analysis"`
}

type submissionResponse struct {
	ID             string          `json:"id"`
	PatientID      string          `json:"patient_id"`
	Village        string          `json:"village"`
	Symptoms       []string        `json:"symptoms"`
	Severity       triage.Severity `json:"severity"`
	Duration       string          `json:"duration,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	AdditionalInfo string          `json:"additional_info,omitempty"`
	Analysis       string          `json:"analysis,omitempty"`
	Urgency        triage.Urgency  `json:"urgency"`
	CreatedAt      time.Time       `json:"created_at"`
}

// submitHandler godoc
// @Summary Enviar síntomas
// @Description Clasifica la urgencia (texto de análisis o, si falta, severidad y temperatura), guarda el envío y suma a las estadísticas de la aldea del paciente.
// @Tags symptoms
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body submitRequest true "Síntomas"
// @Success 201 {object} submissionResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/symptoms [post]
func submitHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		var req submitRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sub, err := svc.Submit(r.Context(), SubmitInput{
			PatientID:      p.ID,
			Village:        p.Village,
			Symptoms:       req.Symptoms,
			Severity:       req.Severity,
			Duration:       req.Duration,
			TemperatureF:   req.Temperature,
			AdditionalInfo: req.AdditionalInfo,
			Analysis:       req.Analysis,
			SubmittedBy:    middleware.UserID(r),
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toSubmissionResponse(sub))
	}
}

// historyHandler godoc
// @Summary Historial de síntomas (últimos 20)
// @Tags symptoms
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} submissionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/symptoms [get]
func historyHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.History(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]submissionResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toSubmissionResponse(s))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toSubmissionResponse(s Submission) submissionResponse {
	return submissionResponse{
		ID:             s.ID,
		PatientID:      s.PatientID,
		Village:        s.Village,
		Symptoms:       s.Symptoms,
		Severity:       s.Severity,
		Duration:       s.Duration,
		Temperature:    s.TemperatureF,
		AdditionalInfo: s.AdditionalInfo,
		Analysis:       s.Analysis,
		Urgency:        s.Urgency,
		CreatedAt:      s.CreatedAt,
	}
}
