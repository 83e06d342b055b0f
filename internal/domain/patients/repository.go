package patients

import "context"

type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	ListByUser(ctx context.Context, userID string) ([]Patient, error)
}
