package patients

import "time"

// Patient es el perfil mínimo que necesita el core: dueño (usuario) y aldea.
// El resto de campos se guardan tal cual para las vistas de emergencia.
type Patient struct {
	ID     string
	UserID string

	Name    string
	Age     int
	Gender  string
	Village string

	PhoneNumber      string
	EmergencyContact string
	BloodGroup       string

	Allergies         []string
	ChronicConditions []string

	CreatedAt time.Time
	UpdatedAt time.Time
}
