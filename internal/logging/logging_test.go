package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewWriterDropsEmptyAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, true, slog.LevelInfo)
	logger.Info("saved", "form", "f-1", "note", "", "dirty", false)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "saved") || !strings.Contains(out, "form=f-1") {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.Contains(out, "note=") || strings.Contains(out, "dirty=") || strings.Contains(out, "hidden") {
		t.Fatalf("empty attrs or debug line leaked: %q", out)
	}
}
