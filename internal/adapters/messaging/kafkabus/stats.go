package kafkabus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rural-health-core/internal/domain/symptoms"
	"rural-health-core/internal/domain/villagestats"
	"rural-health-core/internal/platform/logger"

	"github.com/segmentio/kafka-go"
)

// StatsPublisher implementa symptoms.StatsRecorder publicando la Entry.
// La key es "aldea|día" así un solo consumidor aplica los cambios de cada clave en orden.
type StatsPublisher struct {
	w messageWriter
}

var _ symptoms.StatsRecorder = (*StatsPublisher)(nil)

func NewStatsPublisher(w messageWriter) *StatsPublisher {
	return &StatsPublisher{w: w}
}

func (p *StatsPublisher) Record(ctx context.Context, e villagestats.Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal stats entry: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(e.Key()), Value: value}); err != nil {
		return fmt.Errorf("publish stats entry: %w", err)
	}
	return nil
}

func (p *StatsPublisher) Close() error { return p.w.Close() }

// EntryApplier es el Aggregator del lado consumidor.
type EntryApplier interface {
	Record(ctx context.Context, e villagestats.Entry) error
}

// StatsConsumer lee el topic de estadísticas y aplica cada Entry.
// Commit manual: un mensaje se confirma recién después de aplicarlo.
type StatsConsumer struct {
	r       messageReader
	apply   EntryApplier
	log     logger.Logger
	retries int
	backoff time.Duration
}

func NewStatsConsumer(r messageReader, apply EntryApplier, log logger.Logger) *StatsConsumer {
	if log == nil {
		log = logger.Nop()
	}
	return &StatsConsumer{
		r:       r,
		apply:   apply,
		log:     log.With(map[string]any{"component": "stats_consumer"}),
		retries: 5,
		backoff: 500 * time.Millisecond,
	}
}

// Run bloquea hasta que ctx se cancele (devuelve nil) o un mensaje no se pueda
// aplicar tras los reintentos (devuelve error sin commitear, se reentrega al reiniciar).
func (c *StatsConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch stats message: %w", err)
		}

		var e villagestats.Entry
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			// Mensaje corrupto: no se va a poder aplicar nunca.
			c.log.Error("drop malformed stats message", map[string]any{
				"partition": msg.Partition,
				"offset":    msg.Offset,
				"err":       err,
			})
			if err := c.r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				return fmt.Errorf("commit stats message: %w", err)
			}
			continue
		}

		if err := c.applyWithRetry(ctx, e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit stats message: %w", err)
		}
	}
}

func (c *StatsConsumer) applyWithRetry(ctx context.Context, e villagestats.Entry) error {
	var err error
	for attempt := 1; attempt <= c.retries; attempt++ {
		err = c.apply.Record(ctx, e)
		if err == nil {
			return nil
		}
		if errors.Is(err, villagestats.ErrInvalidInput) {
			c.log.Warn("skip invalid stats entry", map[string]any{"key": e.Key(), "err": err})
			return nil
		}

		c.log.Warn("apply stats entry failed", map[string]any{"key": e.Key(), "attempt": attempt, "err": err})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
	return fmt.Errorf("apply stats entry %s: %w", e.Key(), err)
}

func (c *StatsConsumer) Close() error { return c.r.Close() }
