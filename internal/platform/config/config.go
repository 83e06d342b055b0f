package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StatsTransportInline = "inline"
	StatsTransportKafka  = "kafka"
)

// Config agrupa todo lo que api y worker leen del entorno.
type Config struct {
	Port string

	DBDSN string

	LogLevel  string
	LogFormat string
	AppName   string

	// Auth: si JWTSecret está seteado se verifica localmente; si no, AuthBaseURL (identity remoto).
	// Sin ninguno => modo dev (X-Debug-User-ID).
	JWTSecret   string
	AuthBaseURL string
	AuthAPIKey  string

	KafkaBrokers      []string
	KafkaGroupID      string
	StatsTopic        string
	DueRemindersTopic string

	// inline: el agregador corre dentro del request. kafka: se publica y lo consume el worker.
	StatsTransport string

	DueSweepSpec    string
	DueSweepHorizon time.Duration
}

// Load lee un .env opcional (no falla si no existe) y luego variables de entorno.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load no pisa variables ya presentes en el entorno.
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "text"),
		AppName:           getenv("APP_NAME", "rural-health-core"),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AuthBaseURL:       strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
		AuthAPIKey:        strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		KafkaBrokers:      splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaGroupID:      getenv("KAFKA_GROUP_ID", "village-stats-aggregator"),
		StatsTopic:        getenv("STATS_TOPIC", "symptom-submissions"),
		DueRemindersTopic: getenv("DUE_REMINDERS_TOPIC", "reminders-due"),
		StatsTransport:    strings.ToLower(getenv("STATS_TRANSPORT", StatsTransportInline)),
		DueSweepSpec:      getenv("DUE_SWEEP_SPEC", "@every 5m"),
		DueSweepHorizon:   5 * time.Minute,
	}

	if v := strings.TrimSpace(os.Getenv("DUE_SWEEP_HORIZON")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: DUE_SWEEP_HORIZON must be a positive duration, got %q", v)
		}
		cfg.DueSweepHorizon = d
	}

	switch cfg.StatsTransport {
	case StatsTransportInline:
	case StatsTransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("config: STATS_TRANSPORT=kafka requires KAFKA_BROKERS")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STATS_TRANSPORT %q", cfg.StatsTransport)
	}

	return cfg, nil
}

// Addr devuelve la dirección de escucha para http.Server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
