package postgres

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"rural-health-core/internal/domain/reminders"
	"rural-health-core/internal/domain/triage"
	"rural-health-core/internal/domain/villagestats"

	"github.com/google/uuid"
)

func TestSchemaDeclaresTables(t *testing.T) {
	for _, table := range []string{"patients", "reminders", "prescriptions", "symptom_submissions", "health_records"} {
		if !strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("schema missing table %s", table)
		}
	}
}

func TestVillageStatRow_NilSymptomsStoredAsEmpty(t *testing.T) {
	row := fromDomain(villagestats.DailyStat{Village: "A", Day: "2026-03-10", TotalCases: 1})
	if row.Symptoms == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if got := row.toDomain(); got.Village != "A" || got.Symptoms == nil {
		t.Fatalf("unexpected domain value: %+v", got)
	}
}

// Los tests contra una base real corren solo con TEST_DB_DSN.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	return dsn
}

func TestIntegration_StatsAndReminders(t *testing.T) {
	dsn := requireDSN(t)

	ctx := context.Background()
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	stats, err := NewVillageStatsRepo(db)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	if err := stats.AutoMigrate(ctx); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	village := "it-" + uuid.NewString()
	agg := villagestats.NewAggregator(stats, nil)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := agg.RecordSubmission(ctx, village, "2026-03-10", []string{"fever"}, triage.UrgencyEmergency); err != nil {
				t.Errorf("record: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := stats.Get(ctx, village, "2026-03-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalCases != n || got.EmergencyCases != n {
		t.Fatalf("unexpected stat: %+v", got)
	}

	rems := NewRemindersRepo(db)
	id := uuid.NewString()
	at := time.Now().UTC().Truncate(time.Second)
	if err := rems.Create(ctx, reminders.Reminder{ID: id, PatientID: "p", Kind: reminders.KindMedicine, Title: "Take x", ScheduledAt: at, CreatedAt: at}); err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	// sucesor con id repetido: el INSERT falla y el UPDATE se revierte
	dup := reminders.Reminder{ID: id, PatientID: "p", Kind: reminders.KindMedicine, Title: "Take x", ScheduledAt: at, CreatedAt: at}
	if _, err := rems.CompleteAndSpawn(ctx, id, at, &dup); err == nil {
		t.Fatalf("expected duplicate successor insert to fail")
	}
	if got, _ := rems.GetByID(ctx, id); got.Completed {
		t.Fatalf("failed spawn must roll back the completion")
	}

	next := reminders.Reminder{ID: uuid.NewString(), PatientID: "p", Kind: reminders.KindMedicine, Title: "Take x", ScheduledAt: at.Add(12 * time.Hour), CreatedAt: at}
	first, err := rems.CompleteAndSpawn(ctx, id, at, &next)
	if err != nil || !first {
		t.Fatalf("expected first completion to win, got %v %v", first, err)
	}
	second, err := rems.CompleteAndSpawn(ctx, id, at, nil)
	if err != nil || second {
		t.Fatalf("expected second completion to be a no-op, got %v %v", second, err)
	}
	if _, err := rems.GetByID(ctx, next.ID); err != nil {
		t.Fatalf("expected successor stored: %v", err)
	}
}
