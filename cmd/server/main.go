package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestionstock/internal/config"
	"gestionstock/internal/infra"
	"gestionstock/internal/receipt"
	"gestionstock/internal/repository"
	"gestionstock/internal/router"
	"gestionstock/internal/service"
	"gestionstock/internal/store"
	"gestionstock/internal/store/memstore"
	"gestionstock/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		st  store.Store
		db  *gorm.DB
		rdb *redis.Client
	)
	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("memory backend: data is lost on restart")
		st = memstore.New()
	default:
		db, err = infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		st = repository.NewStore(db, infra.NewRedisNotifier(rdb))
	}

	// ── Receipts ─────────────────────────────────────────────────────────────
	layout := receipt.DefaultLayout()
	layout.StoreName = cfg.StoreName
	layout.Footer = cfg.ReceiptFooter
	layout.Currency = cfg.Currency
	layout.Location = cfg.Location()

	printerCB := infra.NewCircuitBreaker(infra.PrinterCBConfig())
	link := receipt.NewNetworkLink(5 * time.Second)
	emitter := receipt.NewPrinterEmitter(link, cfg.PrinterAddr, layout, printerCB, cfg.PrinterTimeoutDuration())

	// Post-commit hooks. With Redis, receipts go through the worker pool
	// (print, PDF archive, email); without it they are printed in-process.
	var hooks []service.SaleHook
	if rdb != nil {
		mailer := infra.NewMailer(cfg)
		dispatcher := worker.NewDispatcher(rdb)
		handlers := worker.WorkerHandlers{
			Receipt: worker.NewReceiptWorker(emitter, layout, cfg.PDFStoragePath, mailer, dispatcher),
			Email:   worker.NewEmailWorker(mailer, dispatcher),
		}
		worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
		hooks = append(hooks, dispatcher)
	} else {
		hooks = append(hooks, service.ReceiptHook{Emitter: emitter})
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := infra.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka publisher close")
			}
		}()
		hooks = append(hooks, service.EventHook{Publisher: publisher})
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("sale events enabled")
	}

	r := router.New(ctx, cfg, router.Deps{
		Store:     st,
		DB:        db,
		Redis:     rdb,
		PrinterCB: printerCB,
		Hooks:     hooks,
	})

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: /v1/stream responses stay open
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("backend", cfg.StoreBackend).Msgf("gestionstock listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	// stop sessions, workers and open streams
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
