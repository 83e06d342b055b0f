// Worker: barre los recordatorios por vencer (cron) y consume el topic de estadísticas por aldea.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rural-health-core/internal/adapters/messaging/kafkabus"
	mem "rural-health-core/internal/adapters/storage/memory"
	pg "rural-health-core/internal/adapters/storage/postgres"
	"rural-health-core/internal/bootstrap"
	"rural-health-core/internal/domain/reminders"
	"rural-health-core/internal/domain/villagestats"
	"rural-health-core/internal/platform/config"
	"rural-health-core/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrap.NewLogger(config.Config{}).Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}
	log := bootstrap.NewLogger(cfg).With(map[string]any{"process": "worker"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage", map[string]any{"err": err})
		os.Exit(1)
	}

	var (
		reminderRepo reminders.Repository
		statsRepo    villagestats.Repository
	)
	if store != nil {
		defer store.Close()
		reminderRepo = pg.NewRemindersRepo(store.DB)
		statsRepo = store.VillageStats
	} else {
		// Sin DB el worker no ve lo que escribe la api; solo sirve para probar el cableado.
		reminderRepo = mem.NewReminderRepo()
		statsRepo = mem.NewVillageStatRepo()
	}

	var wg sync.WaitGroup

	if len(cfg.KafkaBrokers) > 0 {
		dueWriter := kafkabus.NewWriter(cfg.KafkaBrokers, cfg.DueRemindersTopic)
		notifier := kafkabus.NewDuePublisher(dueWriter)
		defer notifier.Close()

		sweeper := reminders.NewSweeper(reminders.NewService(reminderRepo, log), notifier, cfg.DueSweepHorizon, log)
		if err := startSweep(ctx, cfg.DueSweepSpec, sweeper, log); err != nil {
			log.Error("schedule due sweep", map[string]any{"spec": cfg.DueSweepSpec, "err": err})
			os.Exit(1)
		}
	} else {
		log.Warn("KAFKA_BROKERS not set, due sweep disabled", nil)
	}

	if cfg.StatsTransport == config.StatsTransportKafka {
		consumer := kafkabus.NewStatsConsumer(
			kafkabus.NewReader(cfg.KafkaBrokers, cfg.StatsTopic, cfg.KafkaGroupID),
			villagestats.NewAggregator(statsRepo, log),
			log,
		)
		defer consumer.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil {
				log.Error("stats consumer stopped", map[string]any{"err": err})
				stop()
			}
		}()
		log.Info("stats consumer started", map[string]any{"topic": cfg.StatsTopic, "group": cfg.KafkaGroupID})
	}

	<-ctx.Done()
	wg.Wait()
	log.Info("worker stopped", nil)
}

// startSweep agenda el sweep y lo frena cuando ctx se cancela.
// Un sweep a la vez: si el anterior sigue corriendo se salta el tick.
func startSweep(ctx context.Context, spec string, sweeper *reminders.Sweeper, log logger.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		if _, err := sweeper.Run(ctx); err != nil {
			log.Error("due sweep failed", map[string]any{"err": err})
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	log.Info("due sweep scheduled", map[string]any{"spec": spec})

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
