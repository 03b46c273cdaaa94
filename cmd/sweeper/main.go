// Пакетный запуск sweeper-а: разовая сверка очереди отложенных сообщений.
// Живые клиенты этого процесса не видят, поэтому fan-out здесь пустой:
// доставленные сообщения окажутся в истории, а онлайн-клиенты получат их
// от периодического sweeper-а внутри сервера.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/prime-portal/chat-service/config"
	"github.com/prime-portal/chat-service/internal/postgres"
	"github.com/prime-portal/chat-service/internal/schedule"
	"github.com/prime-portal/chat-service/internal/service"
	"github.com/prime-portal/chat-service/internal/transport/ws"
	"github.com/prime-portal/chat-service/pkg/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report only, no writes")
	forceAll := flag.Bool("force-all", false, "deliver every pending row regardless of schedules")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:     logger.Env(cfg.Logging.Env),
		Service: cfg.Logging.Service + "-sweeper",
		Version: cfg.Logging.Version,
		Backend: logger.Backend(cfg.Logging.Backend),
		Debug:   cfg.Logging.Debug,
	})

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		// недоступность стораджа целиком — фатальная ситуация, не per-message
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	sweeper := service.NewSweeper(service.SweeperDeps{
		Pending:    postgres.NewPendingRepository(db.Pool),
		Rooms:      postgres.NewRoomRepository(db.Pool),
		Schedules:  postgres.NewScheduleRepository(db.Pool),
		Users:      postgres.NewUserRepository(db.Pool),
		Calculator: schedule.NewCalculator(cfg.Location()),
		Publisher:  ws.NewHub(),
	})

	opts := service.SweepOptions{DryRun: *dryRun, ForceAll: *forceAll}
	if opts.DryRun {
		fmt.Println("DRY RUN - no messages will be delivered")
	}
	if opts.ForceAll {
		fmt.Println("FORCE MODE - delivering all pending messages regardless of schedules")
	}

	sum, err := sweeper.Run(ctx, opts)
	if err != nil {
		slog.Error("sweep failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("delivered:     %d\n", sum.Delivered)
	fmt.Printf("expired:       %d\n", sum.Expired)
	fmt.Printf("failed:        %d\n", sum.Failed)
	fmt.Printf("still pending: %d\n", sum.StillPending)
}
