package reminders

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"rural-health-core/internal/domain/patients"
	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc, patientsSvc))
		rr.Post("/", createReminderHandler(svc, patientsSvc))
		rr.Get("/upcoming", upcomingRemindersHandler(svc, patientsSvc))
	})
	r.Post("/reminders/{reminderID}/complete", completeReminderHandler(svc, patientsSvc))
}

type createReminderRequest struct {
	Kind           Kind   `json:"kind" enums:"medicine,vaccine,checkup,other"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ScheduledAt    string `json:"scheduled_at"` // RFC3339
	RepeatInterval string `json:"repeat_interval"`
	MedicineKey    string `json:"medicine_key"`
}

type reminderResponse struct {
	ID             string     `json:"id"`
	PatientID      string     `json:"patient_id"`
	PrescriptionID string     `json:"prescription_id,omitempty"`
	Kind           Kind       `json:"kind"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	MedicineKey    string     `json:"medicine_key,omitempty"`
	RepeatInterval string     `json:"repeat_interval,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type completeResponse struct {
	Reminder reminderResponse  `json:"reminder"`
	Next     *reminderResponse `json:"next,omitempty"`
}

// listRemindersHandler godoc
// @Summary Listar recordatorios del paciente
// @Description Últimos 50, más recientes primero (incluye completados).
// @Tags reminders
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/reminders [get]
func listRemindersHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), p.ID, defaultListLimit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponses(items))
	}
}

// upcomingRemindersHandler godoc
// @Summary Próximos recordatorios pendientes
// @Tags reminders
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param hours query int false "Horizonte en horas (1-720). Por defecto 24"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/reminders/upcoming [get]
func upcomingRemindersHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		hours := httpx.QueryInt(r, "hours", int(DefaultUpcomingHorizon/time.Hour), 1, 720)
		items, err := svc.Upcoming(r.Context(), p.ID, time.Duration(hours)*time.Hour)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponses(items))
	}
}

// createReminderHandler godoc
// @Summary Crear recordatorio propio
// @Description Solo se repite si viene repeat_interval (ej: "12h", "7d") y kind es medicine.
// @Tags reminders
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body createReminderRequest true "Recordatorio; scheduled_at en RFC3339"
// @Success 201 {object} reminderResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/reminders [post]
func createReminderHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		var req createReminderRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		at, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
		if err != nil {
			http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
			return
		}

		rem, err := svc.CreateCustom(r.Context(), p.ID, CreateCustomInput{
			Kind:           req.Kind,
			Title:          req.Title,
			Description:    req.Description,
			ScheduledAt:    at,
			RepeatInterval: req.RepeatInterval,
			MedicineKey:    req.MedicineKey,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toReminderResponse(rem))
	}
}

// completeReminderHandler godoc
// @Summary Completar recordatorio
// @Description Idempotente: completar uno ya completado devuelve 200 sin generar otro. Si es un medicamento con repetición devuelve también el siguiente.
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} completeResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID}/complete [post]
func completeReminderHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.UserID(r) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		current, err := svc.GetByID(r.Context(), chi.URLParam(r, "reminderID"))
		if err != nil {
			http.Error(w, "reminder not found", http.StatusNotFound)
			return
		}
		if _, ok := patients.AuthorizePatient(w, r, patientsSvc, current.PatientID); !ok {
			return
		}

		res, err := svc.Complete(r.Context(), current.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "reminder not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := completeResponse{Reminder: toReminderResponse(res.Reminder)}
		if res.Next != nil {
			next := toReminderResponse(*res.Next)
			out.Next = &next
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toReminderResponses(items []Reminder) []reminderResponse {
	return lo.Map(items, func(rem Reminder, _ int) reminderResponse { return toReminderResponse(rem) })
}

func toReminderResponse(rem Reminder) reminderResponse {
	return reminderResponse{
		ID:             rem.ID,
		PatientID:      rem.PatientID,
		PrescriptionID: rem.PrescriptionID,
		Kind:           rem.Kind,
		Title:          rem.Title,
		Description:    rem.Description,
		ScheduledAt:    rem.ScheduledAt,
		Completed:      rem.Completed,
		CompletedAt:    rem.CompletedAt,
		MedicineKey:    rem.MedicineKey,
		RepeatInterval: rem.RepeatInterval,
		CreatedAt:      rem.CreatedAt,
	}
}
