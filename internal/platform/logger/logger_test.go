package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"verbose": Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLogger_JSON_IncludesBaseAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, App: "rural-health-core", Out: &buf})

	l.With(map[string]any{"village": "A"}).Info("stat updated", map[string]any{
		"total_cases": 2,
		"err":         errors.New("boom"),
		"  ":          "ignored",
	})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "stat updated" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if entry["app"] != "rural-health-core" || entry["village"] != "A" {
		t.Fatalf("expected base fields, got %#v", entry)
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error as string, got %#v", entry["err"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", entry)
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Out: &buf})

	l.Info("hidden", nil)
	l.Warn("shown", nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
}
