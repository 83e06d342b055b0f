package router

import (
	"database/sql"
	"fmt"
	"net/http"

	_ "rural-health-core/docs"
	mem "rural-health-core/internal/adapters/storage/memory"
	pg "rural-health-core/internal/adapters/storage/postgres"
	"rural-health-core/internal/domain/healthrecords"
	"rural-health-core/internal/domain/patients"
	"rural-health-core/internal/domain/prescriptions"
	"rural-health-core/internal/domain/reminders"
	"rural-health-core/internal/domain/symptoms"
	"rural-health-core/internal/domain/villagestats"
	"rural-health-core/internal/middleware"
	"rural-health-core/internal/platform/logger"
	"rural-health-core/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	// Las migraciones las corre quien abre la conexión.
	DB *sql.DB

	// Opcional: repo de estadísticas ya abierto (gorm). Si falta y hay DB se abre acá.
	VillageStats villagestats.Repository

	// Opcional: destino de las estadísticas de cada envío (p.ej. publisher de Kafka).
	// Si es nil se agregan inline con el Aggregator.
	StatsRecorder symptoms.StatsRecorder

	Logger logger.Logger
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		patientRepo      patients.Repository
		reminderRepo     reminders.Repository
		prescriptionRepo prescriptions.Repository
		symptomRepo      symptoms.Repository
		recordRepo       healthrecords.Repository
		statsRepo        = opts.VillageStats
	)

	if db := opts.DB; db != nil {
		patientRepo = pg.NewPatientsRepo(db)
		reminderRepo = pg.NewRemindersRepo(db)
		prescriptionRepo = pg.NewPrescriptionsRepo(db)
		symptomRepo = pg.NewSymptomsRepo(db)
		recordRepo = pg.NewHealthRecordsRepo(db)
		if statsRepo == nil {
			repo, err := pg.NewVillageStatsRepo(db)
			if err != nil {
				return nil, fmt.Errorf("open village stats repo: %w", err)
			}
			statsRepo = repo
		}
	} else {
		patientRepo = mem.NewPatientRepo()
		reminderRepo = mem.NewReminderRepo()
		prescriptionRepo = mem.NewPrescriptionRepo()
		symptomRepo = mem.NewSymptomRepo()
		recordRepo = mem.NewHealthRecordRepo()
		if statsRepo == nil {
			statsRepo = mem.NewVillageStatRepo()
		}
	}

	stats := opts.StatsRecorder
	if stats == nil {
		stats = villagestats.NewAggregator(statsRepo, log)
	}

	// Services por módulo
	patientsSvc := patients.NewService(patientRepo)
	recordsSvc := healthrecords.NewService(recordRepo)
	remindersSvc := reminders.NewService(reminderRepo, log)
	prescriptionsSvc := prescriptions.NewService(prescriptionRepo, remindersSvc, recordsSvc, log)
	symptomsSvc := symptoms.NewService(symptomRepo, recordsSvc, stats, nil, log)
	reporter := villagestats.NewReporter(statsRepo)

	// Rutas por módulo
	patients.RegisterRoutes(r, patientsSvc)
	healthrecords.RegisterRoutes(r, recordsSvc, patientsSvc)
	reminders.RegisterRoutes(r, remindersSvc, patientsSvc)
	prescriptions.RegisterRoutes(r, prescriptionsSvc, patientsSvc)
	symptoms.RegisterRoutes(r, symptomsSvc, patientsSvc)
	villagestats.RegisterRoutes(r, reporter)

	return r, nil
}
