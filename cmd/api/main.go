package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stockroom/internal/config"
	"stockroom/internal/httpx"
	"stockroom/internal/kafkax"
	"stockroom/internal/postgres"
	"stockroom/internal/redisx"
	"stockroom/internal/service"
	"stockroom/internal/stock"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()
	log.Logger = log.With().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for lifecycle events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, stock.TopicInventoryEvents, 1024)
	prod.Start(ctx)

	coord := service.NewCoordinator(
		&postgres.InventoryStore{Pool: db},
		&postgres.ReservationStore{Pool: db},
		&postgres.TxManager{Pool: db},
		&redisx.Cache{Client: rdb},
		&kafkax.Publisher{Producer: prod, Service: cfg.ServiceName},
		cfg.ReservationTTL,
	)
	sweeper := &service.Sweeper{Coordinator: coord, Interval: cfg.SweepInterval}

	router := httpx.NewRouter()
	h := &httpx.InventoryHandler{Svc: coord, LowStockThreshold: cfg.LowStockThreshold}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("service exited with error")
		prod.Close()
		prod.WaitClosed()
		os.Exit(1)
	}

	prod.Close() // flush pending events, then stop the writer
	prod.WaitClosed()
	log.Info().Msg("shutdown complete")
}
