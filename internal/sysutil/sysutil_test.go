package sysutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogger_JSONAndGlobals(t *testing.T) {
	origLevel := zerolog.GlobalLevel()
	origLog := log.Logger
	origCtx := zerolog.DefaultContextLogger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLog
		zerolog.DefaultContextLogger = origCtx
	})

	var buf bytes.Buffer
	setupLogger(&buf, "warn", false)

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("global level = %v", zerolog.GlobalLevel())
	}
	if zerolog.DefaultContextLogger == nil {
		t.Fatal("default context logger not set")
	}

	log.Info().Msg("dropped")
	log.Warn().Str("k", "v").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %q", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(lines[0], &m); err != nil {
		t.Fatalf("json: %v", err)
	}
	if m["message"] != "kept" || m["k"] != "v" || m["service"] != "go-match-gateway" || m["time"] == nil {
		t.Fatalf("unexpected entry: %v", m)
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	origLog := log.Logger
	origCtx := zerolog.DefaultContextLogger
	origLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = origLog
		zerolog.DefaultContextLogger = origCtx
		zerolog.SetGlobalLevel(origLevel)
	})

	var buf bytes.Buffer
	l := setupLogger(&buf, "info", true)
	l.Info().Msg("hello console")

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("hello console")) {
		t.Fatalf("missing message: %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("pretty output should not be JSON: %q", out)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(blanks) = %q", got)
	}
	if got := FirstNonEmpty("   ", "  9876543210  ", "x"); got != "9876543210" {
		t.Fatalf("FirstNonEmpty should trim, got %q", got)
	}
}
