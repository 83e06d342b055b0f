package healthrecords

import "time"

// Record es una entrada de la línea de tiempo clínica del paciente. No se edita.
type Record struct {
	ID        string
	PatientID string

	Type RecordType

	OccurredAt time.Time
	RecordedAt time.Time

	Title       string
	Description string

	// Data guarda el detalle propio de cada tipo (ids relacionados, urgencia, etc.).
	Data map[string]any

	RecordedBy string
	Source     Source
}
