package reminders

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	day := 24 * time.Hour
	cases := []struct {
		expr string
		want time.Duration
	}{
		{"12h", 12 * time.Hour},
		{"1h", time.Hour},
		{"7d", 7 * day},
		{"2w", 14 * day},
		{"1m", 30 * day},
		{"3m", 90 * day},
		{"every 3d", 3 * day},
		{"0h", 0},
		// inválidos => default 24h
		{"", DefaultInterval},
		{"daily", DefaultInterval},
		{"h", DefaultInterval},
		{"12", DefaultInterval},
		{"12y", DefaultInterval},
		{"99999999999999999999h", DefaultInterval},
		{"10000000000w", DefaultInterval},
	}
	for _, tc := range cases {
		if got := ParseInterval(tc.expr); got != tc.want {
			t.Fatalf("ParseInterval(%q) = %s, want %s", tc.expr, got, tc.want)
		}
	}
}

func TestIntervalHoursForFrequency(t *testing.T) {
	cases := []struct {
		freq string
		want int
	}{
		{"Twice daily", 12},
		{"2 times a day", 12},
		{"THRICE a day", 8},
		{"3 times daily", 8},
		{"four times a day", 6},
		{"4x", 6},
		{"once daily", 24},
		{"", 24},
		// primera coincidencia gana, aunque haya otras keywords
		{"twice or 3 times", 12},
		// contención literal: "12" contiene "2"
		{"every 12 hours", 12},
	}
	for _, tc := range cases {
		if got := IntervalHoursForFrequency(tc.freq); got != tc.want {
			t.Fatalf("IntervalHoursForFrequency(%q) = %d, want %d", tc.freq, got, tc.want)
		}
	}
}

func TestHoursInterval_RoundTrips(t *testing.T) {
	for _, h := range []int{6, 8, 12, 24} {
		if got := ParseInterval(HoursInterval(h)); got != time.Duration(h)*time.Hour {
			t.Fatalf("round trip %dh got %s", h, got)
		}
	}
}
