package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"rural-health-core/internal/domain/healthrecords"

	"github.com/samber/lo"
)

type healthRecordRepo struct {
	mu   sync.RWMutex
	byID map[string]healthrecords.Record
}

func NewHealthRecordRepo() healthrecords.Repository {
	return &healthRecordRepo{
		byID: make(map[string]healthrecords.Record),
	}
}

func (r *healthRecordRepo) Create(ctx context.Context, rec healthrecords.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}

	r.byID[rec.ID] = rec
	return nil
}

func (r *healthRecordRepo) ListByPatient(ctx context.Context, patientID string, filter healthrecords.ListFilter) ([]healthrecords.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = healthrecords.DefaultListLimit
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]healthrecords.Record, 0)
	for _, rec := range r.byID {
		if rec.PatientID != patientID {
			continue
		}
		if len(filter.Types) > 0 && !lo.Contains(filter.Types, rec.Type) {
			continue
		}
		if filter.From != nil && rec.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.OccurredAt.After(*filter.To) {
			continue
		}
		if q != "" {
			hay := strings.ToLower(rec.Title + " " + rec.Description)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, rec)
	}

	// occurred_at desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
