package villagestats

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func seed(t *testing.T, repo *testRepo, stats ...DailyStat) {
	t.Helper()
	for _, s := range stats {
		if err := repo.Insert(context.Background(), s); err != nil {
			t.Fatalf("seed %s: %v", s.Day, err)
		}
	}
}

func TestTrends_Totals(t *testing.T) {
	repo := newTestRepo()
	seed(t, repo,
		DailyStat{Village: "A", Day: "2026-03-10", TotalCases: 5, EmergencyCases: 1},
		DailyStat{Village: "A", Day: "2026-03-09", TotalCases: 3, EmergencyCases: 0},
		DailyStat{Village: "A", Day: "2026-03-08", TotalCases: 2, EmergencyCases: 1},
	)

	sum, err := NewReporter(repo).Trends(context.Background(), "A", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum == nil {
		t.Fatalf("expected summary")
	}
	if sum.TotalCases != 10 || sum.TotalEmergencies != 2 || sum.AverageDailyCases != 3 || sum.EmergencyRate != 20 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.DaysCounted != 3 {
		t.Fatalf("expected 3 days, got %d", sum.DaysCounted)
	}
}

func TestTrends_NoDataIsNil(t *testing.T) {
	sum, err := NewReporter(newTestRepo()).Trends(context.Background(), "nowhere", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != nil {
		t.Fatalf("expected nil summary, got %+v", sum)
	}
}

func TestTrends_WindowLimitsRecords(t *testing.T) {
	repo := newTestRepo()
	seed(t, repo,
		DailyStat{Village: "A", Day: "2026-03-10", TotalCases: 4},
		DailyStat{Village: "A", Day: "2026-03-09", TotalCases: 4},
		DailyStat{Village: "A", Day: "2026-01-01", TotalCases: 100},
	)

	sum, err := NewReporter(repo).Trends(context.Background(), "A", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.TotalCases != 8 || sum.DaysCounted != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestSummarize_RoundHalfUp(t *testing.T) {
	// 5/2 = 2.5 -> 3 ; 100*1/8 = 12.5 -> 13
	sum := Summarize([]DailyStat{
		{TotalCases: 4, EmergencyCases: 1},
		{TotalCases: 1},
	})
	if sum.AverageDailyCases != 3 {
		t.Fatalf("expected average 3, got %d", sum.AverageDailyCases)
	}

	sum = Summarize([]DailyStat{{TotalCases: 8, EmergencyCases: 1}})
	if sum.EmergencyRate != 13 {
		t.Fatalf("expected rate 13, got %d", sum.EmergencyRate)
	}
}

func TestSummarize_ZeroCasesRateIsZero(t *testing.T) {
	sum := Summarize([]DailyStat{{TotalCases: 0}})
	if sum.EmergencyRate != 0 || sum.AverageDailyCases != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestSummarize_TopSymptomsRankingAndTies(t *testing.T) {
	// newest-first
	records := []DailyStat{
		{TotalCases: 1, Symptoms: []string{"cough", "fever"}},
		{TotalCases: 1, Symptoms: []string{"rash", "fever"}},
		{TotalCases: 1, Symptoms: []string{"chills", "rash", "headache", "nausea", "cough"}},
	}

	sum := Summarize(records)
	want := []SymptomCount{
		{Symptom: "cough", Count: 2},
		{Symptom: "fever", Count: 2},
		{Symptom: "rash", Count: 2},
		{Symptom: "chills", Count: 1},
		{Symptom: "headache", Count: 1},
	}
	if !reflect.DeepEqual(sum.TopSymptoms, want) {
		t.Fatalf("unexpected top symptoms:\n got  %+v\n want %+v", sum.TopSymptoms, want)
	}
}

func TestRecent_DefaultsAndOrder(t *testing.T) {
	repo := newTestRepo()
	for _, d := range []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07", "2026-03-08", "2026-03-09"} {
		seed(t, repo, DailyStat{Village: "A", Day: d, TotalCases: 1})
	}

	items, err := NewReporter(repo).Recent(context.Background(), "A", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != DefaultRecentDays {
		t.Fatalf("expected %d items, got %d", DefaultRecentDays, len(items))
	}
	if items[0].Day != "2026-03-09" {
		t.Fatalf("expected newest first, got %s", items[0].Day)
	}
}

func TestReporter_BlankVillage(t *testing.T) {
	r := NewReporter(newTestRepo())
	if _, err := r.Trends(context.Background(), " ", 30); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := r.Recent(context.Background(), "", 7); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
