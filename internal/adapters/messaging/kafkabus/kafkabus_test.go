package kafkabus

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"rural-health-core/internal/domain/reminders"
	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/domain/villagestats"

	"github.com/segmentio/kafka-go"
)

// -------------------------
// Fakes
// -------------------------

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader entrega msgs en orden y después bloquea hasta que ctx se cancele.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type fakeApplier struct {
	mu      sync.Mutex
	entries []villagestats.Entry
	fail    int
	done    chan struct{}
	want    int
}

func (a *fakeApplier) Record(ctx context.Context, e villagestats.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail > 0 {
		a.fail--
		return errors.New("db down")
	}
	a.entries = append(a.entries, e)
	if len(a.entries) == a.want && a.done != nil {
		close(a.done)
	}
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestStatsPublisher_KeyAndPayload(t *testing.T) {
	w := &fakeWriter{}
	p := NewStatsPublisher(w)

	e := villagestats.Entry{Village: "Alto", Day: "2026-03-10", Symptoms: []string{"fever"}, Urgency: triage.UrgencyHigh}
	if err := p.Record(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "Alto|2026-03-10" {
		t.Fatalf("unexpected key %q", w.msgs[0].Key)
	}

	var got villagestats.Entry
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !reflect.DeepEqual(got, e) {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

func TestStatsPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("no brokers")}
	if err := NewStatsPublisher(w).Record(context.Background(), villagestats.Entry{Village: "A", Day: "2026-03-10"}); err == nil {
		t.Fatalf("expected error")
	}
}

func entryMessage(t *testing.T, offset int64, e villagestats.Entry) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return kafka.Message{Offset: offset, Key: []byte(e.Key()), Value: b}
}

func TestStatsConsumer_AppliesAndCommits(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{
		entryMessage(t, 1, villagestats.Entry{Village: "A", Day: "2026-03-10", Symptoms: []string{"fever"}, Urgency: triage.UrgencyLow}),
		{Offset: 2, Value: []byte("{not json")},
		entryMessage(t, 3, villagestats.Entry{Village: "A", Day: "2026-03-10", Symptoms: []string{"cough"}, Urgency: triage.UrgencyEmergency}),
	}}
	a := &fakeApplier{fail: 1, done: make(chan struct{}), want: 2}

	c := NewStatsConsumer(r, a, nil)
	c.backoff = 0

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("consumer did not apply entries in time")
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}

	a.mu.Lock()
	if a.entries[1].Urgency != triage.UrgencyEmergency {
		t.Fatalf("unexpected applied entries: %+v", a.entries)
	}
	a.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !reflect.DeepEqual(r.committed, []int64{1, 2, 3}) {
		t.Fatalf("expected offsets 1,2,3 committed, got %v", r.committed)
	}
}

func TestStatsConsumer_GivesUpWithoutCommit(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{
		entryMessage(t, 7, villagestats.Entry{Village: "A", Day: "2026-03-10"}),
	}}
	a := &fakeApplier{fail: 100}

	c := NewStatsConsumer(r, a, nil)
	c.backoff = 0
	c.retries = 3

	if err := c.Run(context.Background()); err == nil {
		t.Fatalf("expected error after retries")
	}
	if len(r.committed) != 0 {
		t.Fatalf("failed message must not be committed, got %v", r.committed)
	}
}

func TestDuePublisher(t *testing.T) {
	w := &fakeWriter{}
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	err := NewDuePublisher(w).NotifyDue(context.Background(), []reminders.Reminder{
		{ID: "r1", PatientID: "p1", Kind: reminders.KindMedicine, Title: "Take Zinc", ScheduledAt: at},
		{ID: "r2", PatientID: "p2", Kind: reminders.KindCheckup, Title: "Control", ScheduledAt: at},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.msgs) != 2 || string(w.msgs[1].Key) != "p2" {
		t.Fatalf("unexpected messages: %+v", w.msgs)
	}

	var m DueReminderMessage
	_ = json.Unmarshal(w.msgs[0].Value, &m)
	if m.ReminderID != "r1" || !m.ScheduledAt.Equal(at) {
		t.Fatalf("unexpected payload: %+v", m)
	}

	if err := NewDuePublisher(w).NotifyDue(context.Background(), nil); err != nil {
		t.Fatalf("empty batch must be a no-op, got %v", err)
	}
}
