package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prime-portal/chat-service/config"
	"github.com/prime-portal/chat-service/internal/moderation"
	"github.com/prime-portal/chat-service/internal/postgres"
	"github.com/prime-portal/chat-service/internal/schedule"
	"github.com/prime-portal/chat-service/internal/service"
	httpx "github.com/prime-portal/chat-service/internal/transport/http"
	"github.com/prime-portal/chat-service/internal/transport/ws"
	"github.com/prime-portal/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	memberRepo := postgres.NewMemberRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)
	pendingRepo := postgres.NewPendingRepository(db.Pool)
	scheduleRepo := postgres.NewScheduleRepository(db.Pool)
	userRepo := postgres.NewUserRepository(db.Pool)

	// --- fan-out и эфемерное состояние ---
	hub := ws.NewHub()
	typing := service.NewTypingTracker(cfg.TypingTTL())

	// --- services ---
	calc := schedule.NewCalculator(cfg.Location())
	classifier := moderation.NewHTTPClient(cfg.Moderation.BaseURL, cfg.ModerationTimeout())
	notifier := service.LogNotifier{}

	chatSvc := service.NewChatService(service.ChatServiceDeps{
		Rooms:      roomRepo,
		Members:    memberRepo,
		Messages:   messageRepo,
		Pending:    pendingRepo,
		Schedules:  scheduleRepo,
		Users:      userRepo,
		Classifier: classifier,
		Calculator: calc,
		Publisher:  hub,
		Notifier:   notifier,
		PendingTTL: cfg.PendingTTL(),
	})

	sweeper := service.NewSweeper(service.SweeperDeps{
		Pending:    pendingRepo,
		Rooms:      roomRepo,
		Schedules:  scheduleRepo,
		Users:      userRepo,
		Calculator: calc,
		Publisher:  hub,
		Notifier:   notifier,
	})

	// --- фоновые задачи ---
	go sweeper.Start(ctx, cfg.SweepInterval())
	go typing.StartJanitor(ctx, cfg.TypingTTL()/2)

	// --- HTTP + WS ---
	wsServer := ws.NewServer(hub, chatSvc, memberRepo, userRepo, typing)
	handler := httpx.NewHandler(chatSvc, sweeper, memberRepo, userRepo)
	router := httpx.NewRouter(handler, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
