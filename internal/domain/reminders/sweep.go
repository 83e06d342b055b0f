package reminders

import (
	"context"
	"time"

	"rural-health-core/internal/platform/logger"
)

// DueNotifier recibe los recordatorios que vencen en la ventana del sweep.
// El envío real (SMS, push) queda fuera de este servicio.
type DueNotifier interface {
	NotifyDue(ctx context.Context, due []Reminder) error
}

// Sweeper consulta los pendientes de la próxima ventana y los entrega a un DueNotifier.
// No programa nada por sí mismo: lo dispara quien lo invoque (cron del worker).
type Sweeper struct {
	svc      *Service
	notifier DueNotifier
	horizon  time.Duration
	log      logger.Logger
}

func NewSweeper(svc *Service, notifier DueNotifier, horizon time.Duration, log logger.Logger) *Sweeper {
	if horizon <= 0 {
		horizon = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{svc: svc, notifier: notifier, horizon: horizon, log: log}
}

// Run devuelve cuántos recordatorios se notificaron.
func (sw *Sweeper) Run(ctx context.Context) (int, error) {
	now := sw.svc.now()
	due, err := sw.svc.Due(ctx, now, now.Add(sw.horizon))
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	if err := sw.notifier.NotifyDue(ctx, due); err != nil {
		sw.log.Error("notify due reminders failed", map[string]any{"count": len(due), "err": err})
		return 0, err
	}

	sw.log.Info("due reminders notified", map[string]any{"count": len(due), "horizon": sw.horizon.String()})
	return len(due), nil
}
