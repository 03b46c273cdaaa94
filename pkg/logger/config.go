package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // текстовый вывод для локальной разработки
	BackendZap Backend = "zap" // JSON через slog-zap, с сэмплированием
)

type Config struct {
	// Идентификация процесса в логах
	Service    string
	Version    string
	InstanceID string

	Env     Env
	Backend Backend // пусто = std в dev, zap в stage/prod
	Level   slog.Level
	Debug   bool // Debug при нулевом Level опускает порог до debug

	AddSource bool

	// Порог сэмплирования zap-бекенда (записей в секунду)
	SampleInitial    int
	SampleThereafter int
}

// normalize заполняет незаданные поля значениями по умолчанию.
func (c Config) normalize() Config {
	if c.Env == "" {
		c.Env = DetectEnv()
	}
	if c.Service == "" {
		c.Service = "chat-service"
	}
	if c.Backend == "" {
		if c.Env == EnvDev {
			c.Backend = BackendStd
		} else {
			c.Backend = BackendZap
		}
	}
	if c.Debug && c.Level == 0 {
		c.Level = slog.LevelDebug
	}
	c.InstanceID = ensureInstanceID(c.InstanceID)
	return c
}
