package reminders

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Reminder) error
	// CreateBatch inserta todos o ninguno.
	CreateBatch(ctx context.Context, rs []Reminder) error
	GetByID(ctx context.Context, id string) (Reminder, error)

	// CompleteAndSpawn pasa a completado solo si estaba pendiente e inserta next (si no es nil)
	// en la misma operación: o quedan las dos escrituras o ninguna.
	// Devuelve false (sin error) si ya estaba completado, ErrNotFound si no existe.
	CompleteAndSpawn(ctx context.Context, id string, at time.Time, next *Reminder) (bool, error)

	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Reminder, error)

	// ListPendingBetween devuelve pendientes con from <= ScheduledAt <= to, ascendente.
	// patientID vacío = todos los pacientes.
	ListPendingBetween(ctx context.Context, patientID string, from, to time.Time) ([]Reminder, error)
}

type ListFilter struct {
	Limit int
}
