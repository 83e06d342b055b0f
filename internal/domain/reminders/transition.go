package reminders

import "time"

// Transition es el resultado de completar un recordatorio: el recordatorio
// actualizado y, si corresponde, el siguiente a insertar (sin ID asignado).
type Transition struct {
	Updated Reminder
	Spawn   *Reminder
	Changed bool
}

// Complete es la transición pura Pending -> Completed.
// Sobre un recordatorio ya completado no cambia nada y no genera sucesor.
// El siguiente se calcula desde ScheduledAt original, no desde la hora de completado.
func Complete(r Reminder, at time.Time) Transition {
	if r.Completed {
		return Transition{Updated: r}
	}

	updated := r
	updated.Completed = true
	completedAt := at
	updated.CompletedAt = &completedAt

	t := Transition{Updated: updated, Changed: true}
	if !r.Recurring() {
		return t
	}

	next := Reminder{
		PatientID:      r.PatientID,
		PrescriptionID: r.PrescriptionID,
		Kind:           r.Kind,
		Title:          r.Title,
		Description:    r.Description,
		ScheduledAt:    r.ScheduledAt.Add(ParseInterval(r.RepeatInterval)),
		MedicineKey:    r.MedicineKey,
		RepeatInterval: r.RepeatInterval,
		CreatedAt:      at,
	}
	t.Spawn = &next
	return t
}
