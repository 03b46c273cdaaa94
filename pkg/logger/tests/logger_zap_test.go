package tests

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/prime-portal/chat-service/pkg/logger"
)

func TestInit_ProdZap_JSONOutPut(t *testing.T) {
	out := captureStdOut(func() {
		logger.Init(logger.Config{
			Service:          "chat-gw",
			Version:          "2.4.0",
			InstanceID:       "gw-test-1",
			Env:              logger.EnvProd,
			Backend:          logger.BackendZap,
			Level:            slog.LevelInfo,
			SampleInitial:    100000,
			SampleThereafter: 100000,
		})
		slog.Info("sweep finished", slog.Int("delivered", 3))
		slog.Debug("should be filtered out")
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d: %s", len(lines), out)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON line, got %s, err=%v", lines[0], err)
	}

	for key, want := range map[string]any{
		"msg":         "sweep finished",
		"level":       "INFO",
		"service":     "chat-gw",
		"env":         "prod",
		"version":     "2.4.0",
		"instance_id": "gw-test-1",
		"delivered":   float64(3),
	} {
		if got := rec[key]; got != want {
			t.Errorf("field %q: got %v, want %v", key, got, want)
		}
	}
	if _, ok := rec["ts"]; !ok {
		t.Errorf("timestamp field ts missing: %v", rec)
	}
}
