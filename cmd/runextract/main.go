package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/minhlq/resume-ocr/internal/common"
	"github.com/minhlq/resume-ocr/internal/extract"
	"github.com/minhlq/resume-ocr/internal/pipeline"
	"github.com/minhlq/resume-ocr/internal/rasterize"
	"github.com/minhlq/resume-ocr/internal/vision"
)

// runextract runs the extraction pipeline on a local file and prints the
// result JSON, without the HTTP server or the history store.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <file>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot stat input file", "path", path, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if cfg.Vision.APIKey == "" {
		logger.Error("GOOGLE_VISION_API_KEY required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rasterizer := rasterize.New(cfg.Raster, logger)
	recognizer := vision.NewClient(cfg.Vision, logger)
	extractor := extract.NewExtractor(extract.DefaultLabels, logger)
	p := pipeline.NewProcessor(logger, rasterizer, recognizer, extractor, nil)

	start := time.Now()
	res, err := p.ProcessFile(ctx, path, path)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
