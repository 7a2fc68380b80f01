package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})

	logger.Info().Str("stage", "extract").Msg("starting")

	out := buf.String()
	if !strings.Contains(out, `"service":"museum-provenance"`) {
		t.Errorf("Expected service field in output, got %s", out)
	}
	if !strings.Contains(out, `"stage":"extract"`) {
		t.Errorf("Expected stage field in output, got %s", out)
	}
	if !strings.Contains(out, "starting") {
		t.Errorf("Expected message in output, got %s", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("also hidden")
	logger.Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug and info to be filtered at warn level, got %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("Expected warn message to pass the filter, got %s", out)
	}
}

func TestNop_Discards(t *testing.T) {
	logger := Nop()
	// Must not panic and must not emit anywhere observable.
	logger.Error().Msg("dropped")
}
