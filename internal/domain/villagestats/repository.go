package villagestats

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrConflict: el registro ya existe (Insert) o cambió de versión (Update).
	// El Aggregator lo reintenta; nunca llega a los handlers.
	ErrConflict = errors.New("conflict")
)

type Repository interface {
	// Get devuelve ErrNotFound si no hay registro para (village, day).
	Get(ctx context.Context, village, day string) (DailyStat, error)

	// Insert crea el registro con Version=1. ErrConflict si ya existía.
	Insert(ctx context.Context, s DailyStat) error

	// Update guarda s solo si la versión persistida sigue siendo expectedVersion,
	// y la deja en expectedVersion+1. ErrConflict si no.
	Update(ctx context.Context, s DailyStat, expectedVersion int64) error

	// ListRecent devuelve hasta limit registros de la aldea, día más reciente primero.
	ListRecent(ctx context.Context, village string, limit int) ([]DailyStat, error)
}
