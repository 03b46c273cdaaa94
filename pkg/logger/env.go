package logger

import (
	"os"
	"strings"
)

type Env string

const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

var envAliases = map[string]Env{
	"prod": EnvProd, "production": EnvProd,
	"stage": EnvStage, "staging": EnvStage, "preprod": EnvStage, "pre-production": EnvStage,
}

// DetectEnv читает APP_ENV; всё нераспознанное считается dev.
func DetectEnv() Env {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env, ok := envAliases[raw]; ok {
		return env
	}
	return EnvDev
}
