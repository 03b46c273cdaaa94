package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// ensureInstanceID — hostname + короткий uuid, чтобы различать экземпляры в агрегаторе.
func ensureInstanceID(v string) string {
	if v != "" {
		return v
	}
	hn, err := os.Hostname()
	if err != nil || hn == "" {
		hn = "unknown"
	}
	return hn + "-" + uuid.NewString()[:8]
}

// commonAttrs вешается на каждую запись любого бекенда.
func commonAttrs(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("instance_id", cfg.InstanceID),
		slog.Time("started_at", time.Now()),
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	return attrs
}
