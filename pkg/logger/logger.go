// Package logger — единая точка настройки slog для всех бинарей сервиса:
// текстовый вывод в dev, zap JSON с сэмплированием в stage/prod.
package logger

import "log/slog"

var def *slog.Logger

// Init настраивает и ставит глобальный slog-логгер.
func Init(cfg Config) {
	cfg = cfg.normalize()

	var h slog.Handler
	if cfg.Backend == BackendZap {
		h = newZapHandler(cfg)
	} else {
		h = newStdHandler(cfg)
	}
	h = h.WithAttrs(commonAttrs(cfg))

	def = slog.New(h)
	slog.SetDefault(def)
}

// L возвращает настроенный логгер; до Init — логгер с дефолтной конфигурацией.
func L() *slog.Logger {
	if def == nil {
		Init(Config{})
	}
	return def
}
