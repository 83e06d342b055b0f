package kafkabus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rural-health-core/internal/domain/reminders"

	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

// DueReminderMessage es lo que recibe el notificador externo (SMS, push).
type DueReminderMessage struct {
	ReminderID  string         `json:"reminder_id"`
	PatientID   string         `json:"patient_id"`
	Kind        reminders.Kind `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ScheduledAt time.Time      `json:"scheduled_at"`
}

// DuePublisher implementa reminders.DueNotifier.
type DuePublisher struct {
	w messageWriter
}

var _ reminders.DueNotifier = (*DuePublisher)(nil)

func NewDuePublisher(w messageWriter) *DuePublisher {
	return &DuePublisher{w: w}
}

func (p *DuePublisher) NotifyDue(ctx context.Context, due []reminders.Reminder) error {
	if len(due) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(due))
	for _, r := range due {
		value, err := json.Marshal(DueReminderMessage{
			ReminderID:  r.ID,
			PatientID:   r.PatientID,
			Kind:        r.Kind,
			Title:       r.Title,
			Description: r.Description,
			ScheduledAt: r.ScheduledAt,
		})
		if err != nil {
			return fmt.Errorf("marshal due reminder %s: %w", r.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.PatientID), Value: value})
	}

	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		ids := lo.Map(due, func(r reminders.Reminder, _ int) string { return r.ID })
		return fmt.Errorf("publish %d due reminders %v: %w", len(ids), ids, err)
	}
	return nil
}

func (p *DuePublisher) Close() error { return p.w.Close() }
