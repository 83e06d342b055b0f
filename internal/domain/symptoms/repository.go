package symptoms

import "context"

type Repository interface {
	Create(ctx context.Context, s Submission) error
	// ListByPatient devuelve hasta limit envíos, más reciente primero.
	ListByPatient(ctx context.Context, patientID string, limit int) ([]Submission, error)
}
