package prescriptions

import "time"

type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Prescription guarda la receta tal como llegó. Solo se puede desactivar.
type Prescription struct {
	ID        string
	PatientID string

	DoctorName string
	Medicines  []Medicine

	// ExtractedText: texto de la receta si viene de un escaneo (la extracción ocurre afuera).
	ExtractedText string

	Active       bool
	PrescribedBy string
	CreatedAt    time.Time
}
