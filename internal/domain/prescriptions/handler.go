package prescriptions

import (
	"errors"
	"net/http"
	"time"

	"rural-health-core/internal/domain/patients"
	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/{patientID}/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc, patientsSvc))
		pr.Get("/", listPrescriptionsHandler(svc, patientsSvc))
	})
	r.Post("/prescriptions/{prescriptionID}/deactivate", deactivatePrescriptionHandler(svc, patientsSvc))
}

type createPrescriptionRequest struct {
	DoctorName    string     `json:"doctor_name"`
	Medicines     []Medicine `json:"medicines"`
	ExtractedText string     `json:"extracted_text"`
}

type reminderSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	RepeatInterval string    `json:"repeat_interval"`
}

type prescriptionResponse struct {
	ID            string            `json:"id"`
	PatientID     string            `json:"patient_id"`
	DoctorName    string            `json:"doctor_name,omitempty"`
	Medicines     []Medicine        `json:"medicines"`
	ExtractedText string            `json:"extracted_text,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"created_at"`
	Reminders     []reminderSummary `json:"reminders,omitempty"`
}

// createPrescriptionHandler godoc
// @Summary Registrar receta
// @Description Guarda la receta y programa un recordatorio por medicamento (primera toma en una hora, repetición según la frecuencia).
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param Authorization header string false "Bearer token en producción"
// @Param patientID path string true "ID del paciente"
// @Param payload body createPrescriptionRequest true "Receta"
// @Success 201 {object} prescriptionResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/prescriptions [post]
func createPrescriptionHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		var req createPrescriptionRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Create(r.Context(), p.ID, CreateInput{
			DoctorName:    req.DoctorName,
			Medicines:     req.Medicines,
			ExtractedText: req.ExtractedText,
			PrescribedBy:  middleware.UserID(r),
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := toPrescriptionResponse(res.Prescription)
		for _, rem := range res.Reminders {
			out.Reminders = append(out.Reminders, reminderSummary{
				ID:             rem.ID,
				Title:          rem.Title,
				ScheduledAt:    rem.ScheduledAt,
				RepeatInterval: rem.RepeatInterval,
			})
		}
		httpx.WriteJSON(w, http.StatusCreated, out)
	}
}

// listPrescriptionsHandler godoc
// @Summary Listar recetas del paciente
// @Tags prescriptions
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {array} prescriptionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID}/prescriptions [get]
func listPrescriptionsHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := patients.AuthorizeRequest(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]prescriptionResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toPrescriptionResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// deactivatePrescriptionHandler godoc
// @Summary Desactivar receta
// @Tags prescriptions
// @Produce json
// @Param prescriptionID path string true "ID de la receta"
// @Success 200 {object} prescriptionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID}/deactivate [post]
func deactivatePrescriptionHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.UserID(r) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		current, err := svc.GetByID(r.Context(), chi.URLParam(r, "prescriptionID"))
		if err != nil {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}
		if _, ok := patients.AuthorizePatient(w, r, patientsSvc, current.PatientID); !ok {
			return
		}

		updated, err := svc.Deactivate(r.Context(), current.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "prescription not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPrescriptionResponse(updated))
	}
}

func toPrescriptionResponse(p Prescription) prescriptionResponse {
	meds := p.Medicines
	if meds == nil {
		meds = []Medicine{}
	}
	return prescriptionResponse{
		ID:            p.ID,
		PatientID:     p.PatientID,
		DoctorName:    p.DoctorName,
		Medicines:     meds,
		ExtractedText: p.ExtractedText,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
	}
}
