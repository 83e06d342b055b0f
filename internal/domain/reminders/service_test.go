package reminders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Reminder

	// failSpawns hace fallar las próximas N inserciones de sucesor.
	failSpawns int
	failBatch  bool
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Reminder{}}
}

func (r *testRepo) Create(ctx context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rem.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[rem.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) CreateBatch(ctx context.Context, rs []Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failBatch {
		return errors.New("repo: batch failed")
	}
	for _, rem := range rs {
		if _, ok := r.byID[rem.ID]; ok {
			return errors.New("repo: already exists")
		}
	}
	for _, rem := range rs {
		r.byID[rem.ID] = rem
	}
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.byID[id]
	if !ok {
		return Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *testRepo) CompleteAndSpawn(ctx context.Context, id string, at time.Time, next *Reminder) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if rem.Completed {
		return false, nil
	}
	if next != nil && r.failSpawns > 0 {
		r.failSpawns--
		return false, errors.New("repo: insert failed")
	}
	rem.Completed = true
	rem.CompletedAt = &at
	r.byID[id] = rem
	if next != nil {
		r.byID[next.ID] = *next
	}
	return true, nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if rem.PatientID == patientID {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *testRepo) ListPendingBetween(ctx context.Context, patientID string, from, to time.Time) ([]Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if patientID != "" && rem.PatientID != patientID {
			continue
		}
		if rem.Completed || rem.ScheduledAt.Before(from) || rem.ScheduledAt.After(to) {
			continue
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *testRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestService_ScheduleInitialReminders_OnePerMedicine(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)

	got, err := svc.ScheduleInitialReminders(context.Background(), "patient-1", "rx-1", []Medicine{
		{Name: "Paracetamol", Dosage: "500mg", Frequency: "Twice daily", Instructions: "After food"},
		{Name: "ORS", Dosage: "1 sachet", Frequency: "once a day"},
	})
	if err != nil {
		t.Fatalf("ScheduleInitialReminders error: %v", err)
	}
	if len(got) != 2 || repo.count() != 2 {
		t.Fatalf("expected 2 reminders, got %d (repo %d)", len(got), repo.count())
	}

	p := got[0]
	if p.Kind != KindMedicine || p.Title != "Take Paracetamol" || p.Description != "500mg - After food" {
		t.Fatalf("unexpected reminder: %#v", p)
	}
	if !p.ScheduledAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected first dose at now+1h, got %s", p.ScheduledAt)
	}
	if p.RepeatInterval != "12h" || p.MedicineKey != "Paracetamol" || p.PrescriptionID != "rx-1" {
		t.Fatalf("unexpected recurrence fields: %#v", p)
	}
	if p.Completed {
		t.Fatalf("new reminder must be pending")
	}

	ors := got[1]
	if ors.RepeatInterval != "24h" || ors.Description != "1 sachet - As prescribed" {
		t.Fatalf("unexpected second reminder: %#v", ors)
	}
}

func TestService_ScheduleInitialReminders_RejectsBlankName(t *testing.T) {
	svc, _ := newTestService(time.Now())
	_, err := svc.ScheduleInitialReminders(context.Background(), "patient-1", "rx-1", []Medicine{{Name: "  "}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_ScheduleInitialReminders_EmptyFrequencyDefaultsDaily(t *testing.T) {
	svc, _ := newTestService(time.Now())

	got, err := svc.ScheduleInitialReminders(context.Background(), "patient-1", "rx-1", []Medicine{{Name: "Zinc", Frequency: ""}})
	if err != nil {
		t.Fatalf("empty frequency must be tolerated, got %v", err)
	}
	if len(got) != 1 || got[0].RepeatInterval != "24h" {
		t.Fatalf("expected 24h interval, got %#v", got)
	}
}

func TestService_ScheduleInitialReminders_AllOrNothing(t *testing.T) {
	svc, repo := newTestService(time.Now())

	// la segunda línea es inválida: tampoco queda la primera
	_, err := svc.ScheduleInitialReminders(context.Background(), "patient-1", "rx-1", []Medicine{
		{Name: "Zinc", Frequency: "daily"},
		{Name: " "},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("expected no reminders stored, got %d", repo.count())
	}

	repo.failBatch = true
	if _, err := svc.ScheduleInitialReminders(context.Background(), "patient-1", "rx-1", []Medicine{{Name: "Zinc"}, {Name: "ORS"}}); err == nil {
		t.Fatalf("expected storage error")
	}
	if repo.count() != 0 {
		t.Fatalf("expected no reminders stored after failed batch, got %d", repo.count())
	}
}

func TestService_Complete_SpawnsSuccessorOnce(t *testing.T) {
	T := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	completedAt := T.Add(3 * time.Hour) // tarde: no debe mover la cadencia
	svc, repo := newTestService(completedAt)

	_ = repo.Create(context.Background(), Reminder{
		ID:             "r1",
		PatientID:      "patient-1",
		Kind:           KindMedicine,
		Title:          "Take Amoxicillin",
		Description:    "250mg - As prescribed",
		ScheduledAt:    T,
		MedicineKey:    "Amoxicillin",
		RepeatInterval: "12h",
	})

	res, err := svc.Complete(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !res.Reminder.Completed {
		t.Fatalf("expected original to be completed")
	}
	if res.Next == nil {
		t.Fatalf("expected successor")
	}
	if !res.Next.ScheduledAt.Equal(T.Add(12 * time.Hour)) {
		t.Fatalf("expected successor at T+12h, got %s", res.Next.ScheduledAt)
	}
	if res.Next.Completed || res.Next.Title != "Take Amoxicillin" || res.Next.RepeatInterval != "12h" || res.Next.MedicineKey != "Amoxicillin" {
		t.Fatalf("unexpected successor: %#v", res.Next)
	}

	stored, _ := repo.GetByID(context.Background(), "r1")
	if !stored.Completed || stored.CompletedAt == nil || !stored.CompletedAt.Equal(completedAt) {
		t.Fatalf("expected stored original completed at %s, got %#v", completedAt, stored)
	}
	if repo.count() != 2 {
		t.Fatalf("expected 2 reminders after first completion, got %d", repo.count())
	}

	// idempotente
	res2, err := svc.Complete(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}
	if res2.Next != nil {
		t.Fatalf("second completion must not spawn")
	}
	if repo.count() != 2 {
		t.Fatalf("expected still 2 reminders, got %d", repo.count())
	}
}

func TestService_Complete_FailedSpawnKeepsReminderPending(t *testing.T) {
	T := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, repo := newTestService(T)
	repo.failSpawns = 1

	_ = repo.Create(context.Background(), Reminder{
		ID: "r1", PatientID: "p", Kind: KindMedicine, RepeatInterval: "12h", ScheduledAt: T,
	})

	if _, err := svc.Complete(context.Background(), "r1"); err == nil {
		t.Fatalf("expected error when successor insert fails")
	}

	stored, _ := repo.GetByID(context.Background(), "r1")
	if stored.Completed || stored.CompletedAt != nil {
		t.Fatalf("reminder must stay pending after failed completion, got %#v", stored)
	}
	if repo.count() != 1 {
		t.Fatalf("expected no successor after failure, got %d reminders", repo.count())
	}

	// el reintento completa y genera el sucesor
	res, err := svc.Complete(context.Background(), "r1")
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if res.Next == nil || !res.Next.ScheduledAt.Equal(T.Add(12*time.Hour)) {
		t.Fatalf("expected successor at T+12h on retry, got %#v", res.Next)
	}
	if repo.count() != 2 {
		t.Fatalf("expected 2 reminders after retry, got %d", repo.count())
	}
}

func TestService_Complete_NonRecurringDoesNotSpawn(t *testing.T) {
	svc, repo := newTestService(time.Now())

	// vacuna con intervalo: la regla de sucesor es solo para medicine
	_ = repo.Create(context.Background(), Reminder{ID: "v1", PatientID: "p", Kind: KindVaccine, RepeatInterval: "1m", ScheduledAt: time.Now()})
	// medicina sin intervalo
	_ = repo.Create(context.Background(), Reminder{ID: "m1", PatientID: "p", Kind: KindMedicine, ScheduledAt: time.Now()})

	for _, id := range []string{"v1", "m1"} {
		res, err := svc.Complete(context.Background(), id)
		if err != nil {
			t.Fatalf("Complete(%s) error: %v", id, err)
		}
		if res.Next != nil {
			t.Fatalf("Complete(%s) should not spawn", id)
		}
	}
	if repo.count() != 2 {
		t.Fatalf("expected no new reminders, got %d", repo.count())
	}
}

func TestService_Complete_NotFound(t *testing.T) {
	svc, repo := newTestService(time.Now())

	_, err := svc.Complete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("no partial mutation expected")
	}
}

func TestService_Complete_ConcurrentCallsSpawnExactlyOne(t *testing.T) {
	svc, repo := newTestService(time.Now())
	_ = repo.Create(context.Background(), Reminder{
		ID: "r1", PatientID: "p", Kind: KindMedicine, RepeatInterval: "8h", ScheduledAt: time.Now(),
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	spawned := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Complete(context.Background(), "r1")
			if err != nil {
				t.Errorf("Complete error: %v", err)
				return
			}
			if res.Next != nil {
				mu.Lock()
				spawned++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if spawned != 1 {
		t.Fatalf("expected exactly one successor, got %d", spawned)
	}
	if repo.count() != 2 {
		t.Fatalf("expected 2 reminders, got %d", repo.count())
	}
}

func TestService_CreateCustom(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	r, err := svc.CreateCustom(context.Background(), "p", CreateCustomInput{
		Kind:        KindCheckup,
		Title:       " BP check ",
		ScheduledAt: now.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCustom error: %v", err)
	}
	if r.Title != "BP check" || r.Completed || r.Recurring() {
		t.Fatalf("unexpected custom reminder: %#v", r)
	}

	if _, err := svc.CreateCustom(context.Background(), "p", CreateCustomInput{Kind: Kind("yoga"), Title: "x", ScheduledAt: now}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
	if _, err := svc.CreateCustom(context.Background(), "p", CreateCustomInput{Title: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero time, got %v", err)
	}
}

func TestService_CreateCustom_WithIntervalRecurs(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	r, err := svc.CreateCustom(context.Background(), "p", CreateCustomInput{
		Kind:           KindMedicine,
		Title:          "Iron tablet",
		ScheduledAt:    now,
		RepeatInterval: "1d",
	})
	if err != nil {
		t.Fatalf("CreateCustom error: %v", err)
	}

	res, err := svc.Complete(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if res.Next == nil || !res.Next.ScheduledAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("expected successor a day later, got %#v", res.Next)
	}
}

func TestService_Upcoming_WindowAndOrder(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)

	seed := []Reminder{
		{ID: "past", PatientID: "p", Kind: KindOther, ScheduledAt: now.Add(-time.Minute)},
		{ID: "late", PatientID: "p", Kind: KindOther, ScheduledAt: now.Add(20 * time.Hour)},
		{ID: "soon", PatientID: "p", Kind: KindOther, ScheduledAt: now.Add(time.Hour)},
		{ID: "done", PatientID: "p", Kind: KindOther, ScheduledAt: now.Add(2 * time.Hour), Completed: true},
		{ID: "far", PatientID: "p", Kind: KindOther, ScheduledAt: now.Add(25 * time.Hour)},
		{ID: "other", PatientID: "q", Kind: KindOther, ScheduledAt: now.Add(time.Hour)},
	}
	for _, r := range seed {
		_ = repo.Create(context.Background(), r)
	}

	got, err := svc.Upcoming(context.Background(), "p", 0)
	if err != nil {
		t.Fatalf("Upcoming error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "soon" || got[1].ID != "late" {
		t.Fatalf("unexpected upcoming: %#v", got)
	}
}

// -------------------------
// Sweeper
// -------------------------

type captureNotifier struct {
	got []Reminder
	err error
}

func (n *captureNotifier) NotifyDue(ctx context.Context, due []Reminder) error {
	n.got = append(n.got, due...)
	return n.err
}

func TestSweeper_NotifiesPendingInHorizon(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)
	_ = repo.Create(context.Background(), Reminder{ID: "a", PatientID: "p", ScheduledAt: now.Add(2 * time.Minute)})
	_ = repo.Create(context.Background(), Reminder{ID: "b", PatientID: "q", ScheduledAt: now.Add(4 * time.Minute)})
	_ = repo.Create(context.Background(), Reminder{ID: "c", PatientID: "q", ScheduledAt: now.Add(time.Hour)})

	n := &captureNotifier{}
	sw := NewSweeper(svc, n, 5*time.Minute, nil)

	count, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if count != 2 || len(n.got) != 2 || n.got[0].ID != "a" || n.got[1].ID != "b" {
		t.Fatalf("unexpected notified set: count=%d %#v", count, n.got)
	}
}

func TestSweeper_PropagatesNotifierError(t *testing.T) {
	now := time.Now()
	svc, repo := newTestService(now)
	_ = repo.Create(context.Background(), Reminder{ID: "a", PatientID: "p", ScheduledAt: now.Add(time.Minute)})

	sw := NewSweeper(svc, &captureNotifier{err: errors.New("broker down")}, 5*time.Minute, nil)
	if _, err := sw.Run(context.Background()); err == nil {
		t.Fatalf("expected notifier error")
	}
}
