package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"rural-health-core/internal/domain/symptoms"
)

type symptomRepo struct {
	mu   sync.RWMutex
	byID map[string]symptoms.Submission
}

func NewSymptomRepo() symptoms.Repository {
	return &symptomRepo{
		byID: make(map[string]symptoms.Submission),
	}
}

func (r *symptomRepo) Create(ctx context.Context, s symptoms.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("submission id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("submission already exists")
	}
	s.Symptoms = append([]string(nil), s.Symptoms...)
	r.byID[s.ID] = s
	return nil
}

func (r *symptomRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]symptoms.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]symptoms.Submission, 0)
	for _, s := range r.byID {
		if s.PatientID == patientID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
