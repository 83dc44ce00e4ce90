package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/plant-healthcheck/planthealth/internal/config"
	"github.com/plant-healthcheck/planthealth/internal/database"
	"github.com/plant-healthcheck/planthealth/internal/logging"
	"github.com/plant-healthcheck/planthealth/internal/queue"
	"github.com/plant-healthcheck/planthealth/internal/repository"
	"github.com/plant-healthcheck/planthealth/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logging.New("worker", "info")
		log.Fatal().Err(err).Msg("load config")
	}
	log := logging.New("worker", cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	equipments := repository.NewEquipmentRepository(pool)
	checklists := repository.NewChecklistRepository(pool)
	alerts := repository.NewAlertRepository(pool)
	processor := worker.NewProcessor(equipments, checklists, alerts, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register(cfg.OverdueScanInterval, asynq.NewTask(queue.OverdueScanTask, nil)); err != nil {
		log.Fatal().Err(err).Msg("register overdue scan")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}
	defer scheduler.Shutdown()

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Info().
		Int("concurrency", cfg.WorkerConcurrency).
		Str("overdue_scan", cfg.OverdueScanInterval).
		Msg("worker starting")
	if err := server.Run(processor.Handler()); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}
