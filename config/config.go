package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // chat-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Chat struct {
	// Timezone — единая каноническая зона для всех расписаний.
	Timezone      string `yaml:"timezone"`
	PendingTTL    string `yaml:"pendingTTL"`    // default 168h
	TypingTTL     string `yaml:"typingTTL"`     // default 10s
	SweepInterval string `yaml:"sweepInterval"` // default 1m
}

type Moderation struct {
	BaseURL string `yaml:"baseURL"`
	Timeout string `yaml:"timeout"` // default 3s
}

type Config struct {
	HTTP       HTTP       `yaml:"http"`
	Logging    Logging    `yaml:"logging"`
	Postgres   Postgres   `yaml:"postgres"`
	Chat       Chat       `yaml:"chat"`
	Moderation Moderation `yaml:"moderation"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Moderation.BaseURL == "" {
		return errors.New("moderation.baseURL is required")
	}
	if c.Chat.Timezone != "" {
		if _, err := time.LoadLocation(c.Chat.Timezone); err != nil {
			return fmt.Errorf("chat.timezone: %w", err)
		}
	}
	// дефолты, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "chat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

// Location — каноническая зона; UTC, если не настроена.
func (c *Config) Location() *time.Location {
	if c.Chat.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Chat.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) PendingTTL() time.Duration {
	return parseDurationOr(7*24*time.Hour, c.Chat.PendingTTL)
}

func (c *Config) TypingTTL() time.Duration {
	return parseDurationOr(10*time.Second, c.Chat.TypingTTL)
}

func (c *Config) SweepInterval() time.Duration {
	return parseDurationOr(time.Minute, c.Chat.SweepInterval)
}

func (c *Config) ModerationTimeout() time.Duration {
	return parseDurationOr(3*time.Second, c.Moderation.Timeout)
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
