package patients

import (
	"errors"
	"net/http"
	"time"

	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Post("/", createPatientHandler(svc))
		pr.Get("/", listMyPatientsHandler(svc))
		pr.Get("/{patientID}", getPatientHandler(svc))
		pr.Patch("/{patientID}", updatePatientHandler(svc))
	})
}

type createPatientRequest struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Village           string   `json:"village"`
	PhoneNumber       string   `json:"phone_number"`
	EmergencyContact  string   `json:"emergency_contact"`
	BloodGroup        string   `json:"blood_group"`
	Allergies         []string `json:"allergies"`
	ChronicConditions []string `json:"chronic_conditions"`
}

type updatePatientRequest struct {
	Name              *string   `json:"name"`
	Age               *int      `json:"age"`
	PhoneNumber       *string   `json:"phone_number"`
	EmergencyContact  *string   `json:"emergency_contact"`
	BloodGroup        *string   `json:"blood_group"`
	Allergies         *[]string `json:"allergies"`
	ChronicConditions *[]string `json:"chronic_conditions"`
}

type patientResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Village           string    `json:"village"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	EmergencyContact  string    `json:"emergency_contact,omitempty"`
	BloodGroup        string    `json:"blood_group,omitempty"`
	Allergies         []string  `json:"allergies"`
	ChronicConditions []string  `json:"chronic_conditions"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// createPatientHandler godoc
// @Summary Registrar paciente
// @Tags patients
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev"
// @Param payload body createPatientRequest true "Perfil; name y village obligatorios"
// @Success 201 {object} patientResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /patients [post]
func createPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPatientRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), userID, CreateInput{
			Name:              req.Name,
			Age:               req.Age,
			Gender:            req.Gender,
			Village:           req.Village,
			PhoneNumber:       req.PhoneNumber,
			EmergencyContact:  req.EmergencyContact,
			BloodGroup:        req.BloodGroup,
			Allergies:         req.Allergies,
			ChronicConditions: req.ChronicConditions,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

// listMyPatientsHandler godoc
// @Summary Listar mis pacientes
// @Tags patients
// @Produce json
// @Success 200 {array} patientResponse
// @Failure 401 {string} string "unauthorized"
// @Router /patients [get]
func listMyPatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getPatientHandler godoc
// @Summary Ver paciente
// @Tags patients
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Success 200 {object} patientResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID} [get]
func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := AuthorizeRequest(w, r, svc)
		if !ok {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

// updatePatientHandler godoc
// @Summary Actualizar paciente (PATCH)
// @Tags patients
// @Accept json
// @Produce json
// @Param patientID path string true "ID del paciente"
// @Param payload body updatePatientRequest true "Campos a modificar"
// @Success 200 {object} patientResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "patient not found"
// @Router /patients/{patientID} [patch]
func updatePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updatePatientRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "patientID"), userID, UpdateInput{
			Name:              req.Name,
			Age:               req.Age,
			PhoneNumber:       req.PhoneNumber,
			EmergencyContact:  req.EmergencyContact,
			BloodGroup:        req.BloodGroup,
			Allergies:         req.Allergies,
			ChronicConditions: req.ChronicConditions,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "patient not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toPatientResponse(updated))
	}
}

// AuthorizeRequest resuelve {patientID} de la URL contra el usuario autenticado.
// Si falla ya escribió la respuesta (401/403/404) y devuelve false.
// Lo usan los handlers de los demás módulos colgados de /patients/{patientID}.
func AuthorizeRequest(w http.ResponseWriter, r *http.Request, svc *Service) (Patient, bool) {
	return AuthorizePatient(w, r, svc, chi.URLParam(r, "patientID"))
}

// AuthorizePatient es como AuthorizeRequest pero con el id ya resuelto
// (p.ej. cuando viene de un recordatorio o una receta).
func AuthorizePatient(w http.ResponseWriter, r *http.Request, svc *Service, patientID string) (Patient, bool) {
	userID := middleware.UserID(r)
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Patient{}, false
	}

	p, err := svc.Authorize(r.Context(), patientID, userID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return Patient{}, false
		}
		http.Error(w, "patient not found", http.StatusNotFound)
		return Patient{}, false
	}
	return p, true
}

func toPatientResponse(p Patient) patientResponse {
	return patientResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		Village:           p.Village,
		PhoneNumber:       p.PhoneNumber,
		EmergencyContact:  p.EmergencyContact,
		BloodGroup:        p.BloodGroup,
		Allergies:         nonNil(p.Allergies),
		ChronicConditions: nonNil(p.ChronicConditions),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
