package http

import (
	"net/http"
	"time"

	httpmw "github.com/prime-portal/chat-service/internal/transport/http/middleware"
	"github.com/prime-portal/chat-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httpmw.RequestLogger)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint: одно соединение на комнату
	r.Get("/chat/{room_id}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware)
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/rooms/{id}", func(rr chi.Router) {
			rr.Get("/messages", h.GetChatHistory)
			rr.Get("/participants", h.GetParticipants)
			rr.Get("/pending", h.ListPending)
		})

		pr.Post("/pending/{id}/deliver", h.DeliverPending)
		pr.Post("/pending/{id}/retry", h.DeliverPending)
		pr.Post("/sweep", h.RunSweep)
		pr.Put("/availability", h.PutSchedule)
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
