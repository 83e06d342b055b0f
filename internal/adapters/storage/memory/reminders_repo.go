package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"rural-health-core/internal/domain/reminders"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Reminder),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return errors.New("reminder already exists")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) CreateBatch(ctx context.Context, rs []reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(rs))
	for _, rem := range rs {
		if strings.TrimSpace(rem.ID) == "" {
			return errors.New("reminder id required")
		}
		if _, exists := r.byID[rem.ID]; exists {
			return errors.New("reminder already exists")
		}
		if _, dup := seen[rem.ID]; dup {
			return errors.New("reminder already exists")
		}
		seen[rem.ID] = struct{}{}
	}
	for _, rem := range rs {
		r.byID[rem.ID] = rem
	}
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, nil
}

// CompleteAndSpawn hace el chequeo y las dos escrituras bajo el mismo lock.
func (r *reminderRepo) CompleteAndSpawn(ctx context.Context, id string, at time.Time, next *reminders.Reminder) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rem, ok := r.byID[id]
	if !ok {
		return false, reminders.ErrNotFound
	}
	if rem.Completed {
		return false, nil
	}
	if next != nil {
		if strings.TrimSpace(next.ID) == "" {
			return false, errors.New("reminder id required")
		}
		if _, exists := r.byID[next.ID]; exists {
			return false, errors.New("reminder already exists")
		}
	}

	rem.Completed = true
	rem.CompletedAt = &at
	r.byID[id] = rem
	if next != nil {
		r.byID[next.ID] = *next
	}
	return true, nil
}

func (r *reminderRepo) ListByPatient(ctx context.Context, patientID string, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.byID {
		if rem.PatientID == patientID {
			out = append(out, rem)
		}
	}

	// scheduled_at desc
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *reminderRepo) ListPendingBetween(ctx context.Context, patientID string, from, to time.Time) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.byID {
		if rem.Completed {
			continue
		}
		if patientID != "" && rem.PatientID != patientID {
			continue
		}
		if rem.ScheduledAt.Before(from) || rem.ScheduledAt.After(to) {
			continue
		}
		out = append(out, rem)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}
