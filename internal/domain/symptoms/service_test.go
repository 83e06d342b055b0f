package symptoms

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"rural-health-core/internal/domain/healthrecords"
	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/domain/villagestats"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	mu    sync.Mutex
	items []Submission
}

func (r *testRepo) Create(ctx context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, s)
	return nil
}

func (r *testRepo) ListByPatient(ctx context.Context, patientID string, limit int) ([]Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Submission, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].PatientID == patientID {
			out = append(out, r.items[i])
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStats struct {
	entries []villagestats.Entry
	err     error
}

func (f *fakeStats) Record(ctx context.Context, e villagestats.Entry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type fakeRecords struct {
	appended []healthrecords.AppendInput
}

func (f *fakeRecords) Append(ctx context.Context, patientID string, in healthrecords.AppendInput) (healthrecords.Record, error) {
	f.appended = append(f.appended, in)
	return healthrecords.Record{ID: "rec", PatientID: patientID, Type: in.Type}, nil
}

func newTestService() (*Service, *testRepo, *fakeStats, *fakeRecords) {
	repo := &testRepo{}
	stats := &fakeStats{}
	records := &fakeRecords{}
	svc := NewService(repo, records, stats, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC) }
	return svc, repo, stats, records
}

func ptr(f float64) *float64 { return &f }

// -------------------------
// Tests
// -------------------------

func TestSubmit_ClassifiesFromAnalysisAndForwardsStats(t *testing.T) {
	svc, repo, stats, records := newTestService()

	sub, err := svc.Submit(context.Background(), SubmitInput{
		PatientID: "p1",
		Village:   " Alto Verde ",
		Symptoms:  []string{"fever", " cough", "fever"},
		Severity:  "Moderate",
		Analysis:  "Symptoms look URGENT, seek care",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Urgency != triage.UrgencyEmergency {
		t.Fatalf("expected emergency, got %s", sub.Urgency)
	}
	if !reflect.DeepEqual(sub.Symptoms, []string{"fever", "cough"}) {
		t.Fatalf("unexpected symptoms: %v", sub.Symptoms)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected stored submission")
	}

	if len(stats.entries) != 1 {
		t.Fatalf("expected 1 stats entry, got %d", len(stats.entries))
	}
	e := stats.entries[0]
	if e.Village != "Alto Verde" || e.Day != "2026-03-10" || e.Urgency != triage.UrgencyEmergency || e.SubmissionID != sub.ID {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if len(records.appended) != 1 || records.appended[0].Type != healthrecords.TypeSymptomCheck {
		t.Fatalf("expected symptom_check record, got %+v", records.appended)
	}
}

func TestSubmit_StructuredFallback(t *testing.T) {
	cases := []struct {
		name     string
		severity string
		temp     *float64
		want     triage.Urgency
	}{
		{"mild", "mild", nil, triage.UrgencyLow},
		{"moderate", "moderate", nil, triage.UrgencyMedium},
		{"severe", "severe", nil, triage.UrgencyHigh},
		{"mild with high fever", "mild", ptr(103.5), triage.UrgencyHigh},
		{"mild below threshold", "mild", ptr(102.9), triage.UrgencyLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, _ := newTestService()
			sub, err := svc.Submit(context.Background(), SubmitInput{
				PatientID:    "p1",
				Village:      "A",
				Symptoms:     []string{"headache"},
				Severity:     tc.severity,
				TemperatureF: tc.temp,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sub.Urgency != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, sub.Urgency)
			}
		})
	}
}

func TestSubmit_InvalidInput(t *testing.T) {
	svc, repo, stats, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"no village", SubmitInput{PatientID: "p1", Symptoms: []string{"x"}, Severity: "mild"}},
		{"no symptoms", SubmitInput{PatientID: "p1", Village: "A", Symptoms: []string{" ", ""}, Severity: "mild"}},
		{"bad severity", SubmitInput{PatientID: "p1", Village: "A", Symptoms: []string{"x"}, Severity: "terrible"}},
		{"bad temperature", SubmitInput{PatientID: "p1", Village: "A", Symptoms: []string{"x"}, Severity: "mild", TemperatureF: ptr(40)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if len(repo.items) != 0 || len(stats.entries) != 0 {
		t.Fatalf("invalid submissions must not be stored nor counted")
	}
}

func TestSubmit_StatsFailureDoesNotFailSubmission(t *testing.T) {
	svc, repo, stats, _ := newTestService()
	stats.err = errors.New("broker down")

	if _, err := svc.Submit(context.Background(), SubmitInput{
		PatientID: "p1", Village: "A", Symptoms: []string{"cough"}, Severity: "mild",
	}); err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected stored submission")
	}
}

func TestSubmit_CustomClassifier(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, nil, nil, func(string) triage.Urgency { return triage.UrgencyHigh }, nil)

	sub, err := svc.Submit(context.Background(), SubmitInput{
		PatientID: "p1", Village: "A", Symptoms: []string{"cough"}, Severity: "mild", Analysis: "anything",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Urgency != triage.UrgencyHigh {
		t.Fatalf("expected injected classifier result, got %s", sub.Urgency)
	}
}

func TestHistory_NewestFirstLimited(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < HistoryLimit+5; i++ {
		if _, err := svc.Submit(ctx, SubmitInput{PatientID: "p1", Village: "A", Symptoms: []string{"cough"}, Severity: "mild"}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	items, err := svc.History(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != HistoryLimit {
		t.Fatalf("expected %d items, got %d", HistoryLimit, len(items))
	}
}
