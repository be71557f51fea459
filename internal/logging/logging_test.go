package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", true)
	l.Info("login", slog.String("email", "a@b.com"), slog.String("password", "hunter2"), slog.String("refreshToken", "xyz"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["password"] != "[REDACTED]" || rec["refreshToken"] != "[REDACTED]" {
		t.Fatalf("secrets leaked: %v", rec)
	}
	if rec["email"] != "a@b.com" {
		t.Fatalf("non-sensitive attribute altered: %v", rec)
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", false)
	l.Info("quiet")
	l.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("level filter not applied: %q", buf.String())
	}

	cases := map[string]slog.Level{"debug": slog.LevelDebug, "ERROR": slog.LevelError, "": slog.LevelInfo, "verbose": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}
