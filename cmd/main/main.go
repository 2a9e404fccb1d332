package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Asif12as/wsm-warehouse/internal/catalog"
	"github.com/Asif12as/wsm-warehouse/internal/config"
	"github.com/Asif12as/wsm-warehouse/internal/ingest"
	recHnd "github.com/Asif12as/wsm-warehouse/internal/reconcile/handler"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/model"
	"github.com/Asif12as/wsm-warehouse/internal/reconcile/service"
	serverhttp "github.com/Asif12as/wsm-warehouse/server/http"
)

// store — всё, что нужно сервису от хранилища (SQLite или память).
type store interface {
	service.Catalog
	ingest.Store
	recHnd.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)

	st, closer, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open store")
	}
	defer closer.Close()

	mapper := service.New(st, model.Options{
		Threshold:   cfg.FuzzyThreshold,
		Workers:     cfg.BatchWorkers,
		FuzzyBudget: cfg.FuzzyBudget,
	}, logger)
	processor := ingest.NewProcessor(mapper, st, logger)
	h := recHnd.New(mapper, st, processor, cfg.MaxUploadBytes(), logger)

	r := serverhttp.NewRouter(cfg, logger, h)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().
		Str("addr", cfg.Addr()).
		Str("store", cfg.Store).
		Int("fuzzy_threshold", cfg.FuzzyThreshold).
		Int("batch_workers", cfg.BatchWorkers).
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	h.Wait() // фоновые задачи обработки файлов
	logger.Info().Msg("bye")
}

func openStore(cfg config.Config) (store, io.Closer, error) {
	if cfg.Store == "memory" {
		return catalog.NewMemory(), io.NopCloser(nil), nil
	}
	db, err := catalog.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return db, db, nil
}
