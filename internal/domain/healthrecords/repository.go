package healthrecords

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, rec Record) error
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Record, error)
}

type ListFilter struct {
	Types []RecordType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}
