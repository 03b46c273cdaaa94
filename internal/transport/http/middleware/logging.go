package httpmw

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prime-portal/chat-service/pkg/logger"

	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger пишет строку на каждый завершённый запрос.
// При активном спане добавляет trace_id/span_id.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middlewareChi.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		attrs := append(logger.AttrsFromCtx(r.Context()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("took", time.Since(start)),
		)
		slog.LogAttrs(r.Context(), slog.LevelInfo, "http request", attrs...)
	})
}
