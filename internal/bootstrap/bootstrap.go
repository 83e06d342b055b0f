// Package bootstrap arma las piezas que comparten cmd/api y cmd/worker.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"rural-health-core/internal/adapters/auth/jwtverifier"
	"rural-health-core/internal/adapters/auth/remote"
	pg "rural-health-core/internal/adapters/storage/postgres"
	"rural-health-core/internal/platform/config"
	"rural-health-core/internal/platform/logger"
	"rural-health-core/internal/ports/auth"
)

func NewLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

// NewAuthVerifier elige JWT local, identity remoto o nada (modo dev, nil).
func NewAuthVerifier(cfg config.Config, log logger.Logger) (auth.AuthVerifier, error) {
	switch {
	case cfg.JWTSecret != "":
		log.Info("auth: local jwt verifier", nil)
		return jwtverifier.New(cfg.JWTSecret)
	case cfg.AuthBaseURL != "":
		log.Info("auth: remote verifier", map[string]any{"base_url": cfg.AuthBaseURL})
		return remote.NewVerifier(remote.Config{
			BaseURL: cfg.AuthBaseURL,
			APIKey:  cfg.AuthAPIKey,
		})
	default:
		log.Warn("auth: no verifier configured, accepting X-Debug-User-ID", nil)
		return nil, nil
	}
}

// Storage es la conexión Postgres con el esquema aplicado.
type Storage struct {
	DB           *sql.DB
	VillageStats *pg.VillageStatsRepo
}

func (s *Storage) Close() error { return s.DB.Close() }

// OpenStorage devuelve nil (sin error) si no hay DB_DSN: el llamador cae a memoria.
func OpenStorage(ctx context.Context, cfg config.Config, log logger.Logger) (*Storage, error) {
	if cfg.DBDSN == "" {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
		return nil, nil
	}

	db, err := pg.Open(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pg.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	stats, err := pg.NewVillageStatsRepo(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open village stats repo: %w", err)
	}
	if err := stats.AutoMigrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate village stats: %w", err)
	}

	log.Info("postgres storage ready", nil)
	return &Storage{DB: db, VillageStats: stats}, nil
}
