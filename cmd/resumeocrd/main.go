package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/minhlq/resume-ocr/internal/common"
	"github.com/minhlq/resume-ocr/internal/export"
	"github.com/minhlq/resume-ocr/internal/extract"
	"github.com/minhlq/resume-ocr/internal/pipeline"
	"github.com/minhlq/resume-ocr/internal/rasterize"
	"github.com/minhlq/resume-ocr/internal/repository"
	"github.com/minhlq/resume-ocr/internal/server"
	"github.com/minhlq/resume-ocr/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, driver, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open history store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close history store", "error", cerr)
		}
	}()

	history := repository.NewSQLHistory(db, driver, logger)
	if err := history.Migrate(ctx); err != nil {
		logger.Error("migrate history store", "error", err)
		os.Exit(1)
	}

	rasterizer := rasterize.New(cfg.Raster, logger)
	recognizer := vision.NewClient(cfg.Vision, logger)
	extractor := extract.NewExtractor(extract.DefaultLabels, logger)
	processor := pipeline.NewProcessor(logger, rasterizer, recognizer, extractor, history)
	exporter := export.NewService(history, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(cfg.Server, processor, history, exporter, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
