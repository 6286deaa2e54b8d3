package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/volunteer-scheduler/internal/application"
	"github.com/example/volunteer-scheduler/internal/config"
	"github.com/example/volunteer-scheduler/internal/logging"
	"github.com/example/volunteer-scheduler/internal/persistence/sqlite"
)

func main() {
	classID := flag.String("class", "", "publish a single class instead of sweeping all unpublished classes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	publisher := application.NewPublishServiceWithLogger(
		sqlite.NewClassRepository(db),
		sqlite.NewTermRepository(db),
		sqlite.NewScheduleRepository(db),
		db,
		uuid.NewString,
		time.Now,
		logger,
	)

	if *classID != "" {
		if err := publisher.PublishClass(ctx, *classID); err != nil {
			logger.Error("publish failed", "class_id", *classID, "error", err, "kind", application.ErrorKind(err))
			os.Exit(1)
		}
		logger.Info("publish complete", "class_id", *classID)
		return
	}

	outcomes, err := publisher.PublishAllUnpublished(ctx)
	if err != nil {
		logger.Error("publish sweep failed", "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			continue
		}
		logger.Info("class published", "class_id", outcome.ClassID, "shifts", outcome.ShiftCount)
	}
	if failed > 0 {
		logger.Error("publish sweep finished with failures", "failed", failed, "total", len(outcomes))
		os.Exit(1)
	}
}
