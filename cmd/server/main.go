package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/infra"
	"retailpos/internal/repository"
	"retailpos/internal/router"
	"retailpos/internal/service"
	"retailpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	productRepo := repository.NewProductRepository(db)
	deps := router.Deps{}
	var pool *worker.Pool

	switch cfg.EventBroker {
	case "redis":
		rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		// Worker handlers are wired here (composition root) so the pool has
		// access to every infrastructure dependency.
		dispatcher := worker.NewDispatcher(rdb, nil)
		lowStock := worker.NewLowStockWorker(productRepo, dispatcher, cfg.LowStockThreshold)

		pool = worker.NewPool(rdb)
		pool.Handle(service.TopicOrderCreated, lowStock.Process)
		pool.Handle(service.TopicOrderRefunded, lowStock.ProcessRefund)
		if mailer := infra.NewMailer(cfg); mailer.Enabled() {
			pool.Handle(worker.JobLowStockAlert, worker.NewEmailWorker(mailer, cfg.SystemOwnerEmail).Process)
		} else {
			log.Warn().Msg("SMTP_HOST not set; low-stock alerts will be parked in the DLQ")
		}
		pool.Start(ctx, cfg.WorkerPoolSize)

		deps.Events = dispatcher
		deps.HealthChecks = append(deps.HealthChecks, handler.RedisCheck(rdb))

	case "amqp":
		pub, err := infra.NewAMQPPublisher(cfg.AMQPURL, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer pub.Close()

		deps.Events = pub
		deps.HealthChecks = append(deps.HealthChecks, handler.HealthCheck{
			Name: "amqp",
			Ping: func(context.Context) error { return pub.Ping() },
		})

	default:
		log.Warn().Msg("EVENT_BROKER=none; order events are dropped")
		deps.Events = service.NoopPublisher{}
	}

	worker.StartStockSweep(ctx, worker.StockSweepConfig{
		Products:  productRepo,
		Threshold: cfg.LowStockThreshold,
		Interval:  cfg.StockSweepInterval,
	})

	r, err := router.New(cfg, db, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("broker", cfg.EventBroker).Msgf("retailpos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	log.Info().Msg("server exited")
}
