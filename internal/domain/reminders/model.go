package reminders

import "time"

type Kind string

const (
	KindMedicine Kind = "medicine"
	KindVaccine  Kind = "vaccine"
	KindCheckup  Kind = "checkup"
	KindOther    Kind = "other"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMedicine, KindVaccine, KindCheckup, KindOther:
		return true
	}
	return false
}

// Reminder es una acción de cuidado programada. Append-only: la única mutación
// es pasar a completado; los completados quedan como historial.
type Reminder struct {
	ID        string
	PatientID string

	// PrescriptionID solo para los generados desde una receta.
	PrescriptionID string

	Kind        Kind
	Title       string
	Description string

	ScheduledAt time.Time

	Completed   bool
	CompletedAt *time.Time

	MedicineKey    string // nombre del medicamento que sigue este recordatorio
	RepeatInterval string // expresión compacta tal como se guardó: "12h", "7d"

	CreatedAt time.Time
}

// Recurring indica si completar este recordatorio genera el siguiente.
func (r Reminder) Recurring() bool {
	return r.RepeatInterval != "" && r.Kind == KindMedicine
}

// Medicine es lo mínimo de una línea de receta que necesita el scheduler.
type Medicine struct {
	Name         string
	Dosage       string
	Frequency    string
	Duration     string
	Instructions string
}
