package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/config"
	"github.com/mkarayel/loan-ledger/internal/repository"
	"github.com/mkarayel/loan-ledger/internal/service"
	"github.com/mkarayel/loan-ledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	dayCloseService := service.NewDayCloseService(repository.NewDayCloseRepository(db), zlog)

	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.SchedulerLocation()))

	// Nightly automatic day close.
	_, err = c.AddFunc(cfg.Scheduler.DayCloseSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := dayCloseService.Close(ctx, "scheduled day close"); err != nil {
			zlog.Error("scheduled day close failed", zap.Error(err))
		}
	})
	if err != nil {
		zlog.Fatal("Failed to schedule day close job", zap.Error(err))
	}

	c.Start()
	zlog.Info("scheduler started", zap.String("day_close_spec", cfg.Scheduler.DayCloseSpec))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down scheduler")
	c.Stop()
	zlog.Info("scheduler stopped")
}
