package prescriptions

import "context"

type Repository interface {
	Create(ctx context.Context, p Prescription) error
	GetByID(ctx context.Context, id string) (Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]Prescription, error)
	// Deactivate devuelve ErrNotFound si no existe.
	Deactivate(ctx context.Context, id string) error
}
