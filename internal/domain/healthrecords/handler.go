package healthrecords

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rural-health-core/internal/domain/patients"
	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/records", func(rr chi.Router) {
		rr.Post("/", createRecordHandler(svc, patientsSvc))
		rr.Get("/", listRecordsHandler(svc, patientsSvc))
	})
}

// createRecordRequest es el cuerpo para cargar una entrada manual (control, emergencia).
type createRecordRequest struct {
	Type        RecordType     `json:"type" enums:"symptom_check,prescription,checkup,emergency"`
	OccurredAt  string         `json:"occurred_at"` // RFC3339, opcional
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

type recordResponse struct {
	ID          string         `json:"id"`
	PatientID   string         `json:"patient_id"`
	Type        RecordType     `json:"type"`
	OccurredAt  time.Time      `json:"occurred_at"`
	RecordedAt  time.Time      `json:"recorded_at"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	RecordedBy  string         `json:"recorded_by,omitempty"`
	Source      Source         `json:"source"`
}

// createRecordHandler godoc
// @Summary Agregar entrada al historial clínico
// @Description Las entradas symptom_check y prescription también se generan solas al enviar síntomas o crear recetas.
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body createRecordRequest true "Entrada; occurred_at en RFC3339 (opcional)"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / occurred_at inválido / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/records [post]
func createRecordHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		var req createRecordRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var occurred time.Time
		if v := strings.TrimSpace(req.OccurredAt); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "occurred_at must be RFC3339", http.StatusBadRequest)
				return
			}
			occurred = t
		}

		rec, err := svc.Append(r.Context(), p.ID, AppendInput{
			Type:        req.Type,
			OccurredAt:  occurred,
			Title:       req.Title,
			Description: req.Description,
			Data:        req.Data,
			RecordedBy:  middleware.UserID(r),
			Source:      SourceManual,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar historial clínico
// @Tags records
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param limit query int false "Máximo de entradas (1-200). Por defecto 50"
// @Param types query string false "CSV de tipos (ej: checkup,emergency)"
// @Param from query string false "occurred_at mínimo (RFC3339)"
// @Param to query string false "occurred_at máximo (RFC3339)"
// @Param q query string false "Texto libre en título/descripción"
// @Success 200 {array} recordResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/records [get]
func listRecordsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPatient(r.Context(), p.ID, filter)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "to must not be before from", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{Limit: DefaultListLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxListLimit {
			filter.Limit = n
		}
	}

	// types=checkup,emergency
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		out := make([]RecordType, 0)
		for _, part := range strings.Split(v, ",") {
			t := RecordType(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			if !t.Valid() {
				return ListFilter{}, errors.New("unknown record type: " + string(t))
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	filter.Query = strings.TrimSpace(r.URL.Query().Get("q"))
	return filter, nil
}

func toRecordResponse(rec Record) recordResponse {
	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	return recordResponse{
		ID:          rec.ID,
		PatientID:   rec.PatientID,
		Type:        rec.Type,
		OccurredAt:  rec.OccurredAt,
		RecordedAt:  rec.RecordedAt,
		Title:       rec.Title,
		Description: rec.Description,
		Data:        data,
		RecordedBy:  rec.RecordedBy,
		Source:      rec.Source,
	}
}
