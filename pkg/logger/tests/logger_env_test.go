package tests

import (
	"testing"

	"github.com/prime-portal/chat-service/pkg/logger"
)

func TestDetectEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if got := logger.DetectEnv(); got != logger.EnvDev {
		t.Fatalf("default should be dev, got %q", got)
	}

	t.Setenv("APP_ENV", "stage")
	if got := logger.DetectEnv(); got != logger.EnvStage {
		t.Fatalf("expected stage, got %q", got)
	}

	t.Setenv("APP_ENV", "prod")
	if got := logger.DetectEnv(); got != logger.EnvProd {
		t.Fatalf("expected prod, got %q", got)
	}

	t.Setenv("APP_ENV", "Production")
	if got := logger.DetectEnv(); got != logger.EnvProd {
		t.Fatalf("expected prod for 'Production', got %q", got)
	}
}
