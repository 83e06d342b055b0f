package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"rural-health-core/internal/domain/prescriptions"
)

type prescriptionRepo struct {
	mu   sync.RWMutex
	byID map[string]prescriptions.Prescription
}

func NewPrescriptionRepo() prescriptions.Repository {
	return &prescriptionRepo{
		byID: make(map[string]prescriptions.Prescription),
	}
}

func (r *prescriptionRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("prescription id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("prescription already exists")
	}
	p.Medicines = append([]prescriptions.Medicine(nil), p.Medicines...)
	r.byID[p.ID] = p
	return nil
}

func (r *prescriptionRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return prescriptions.Prescription{}, prescriptions.ErrNotFound
	}
	return p, nil
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID string) ([]prescriptions.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prescriptions.Prescription, 0)
	for _, p := range r.byID {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *prescriptionRepo) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return prescriptions.ErrNotFound
	}
	p.Active = false
	r.byID[id] = p
	return nil
}
