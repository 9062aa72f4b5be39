package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/minhlq/resume-ocr/constants"
	"github.com/minhlq/resume-ocr/internal/common"
	"github.com/minhlq/resume-ocr/internal/entity"
	"github.com/minhlq/resume-ocr/internal/extract"
	"github.com/minhlq/resume-ocr/internal/rasterize"
	"github.com/minhlq/resume-ocr/internal/repository"
	"github.com/minhlq/resume-ocr/internal/vision"
)

// Processor coordinates one document end to end: rasterize, OCR each page
// in order, merge the recognized text, extract fields. Pages are processed
// sequentially on the calling goroutine; any page's OCR failure fails the
// whole document. Rendered intermediates are released on every exit path.
type Processor struct {
	logger     *slog.Logger
	rasterizer *rasterize.Rasterizer
	recognizer vision.Recognizer
	extractor  *extract.Extractor
	history    repository.HistoryRepository // optional; recording is best-effort
	schema     map[string]any
}

func NewProcessor(
	logger *slog.Logger,
	r *rasterize.Rasterizer,
	rec vision.Recognizer,
	ex *extract.Extractor,
	history repository.HistoryRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:     logger,
		rasterizer: r,
		recognizer: rec,
		extractor:  ex,
		history:    history,
		schema:     extract.BuildResultJSONSchema(),
	}
}

// ProcessFile runs the pipeline for the document at path. filename is the
// client-declared name, used for format detection and the history record.
// Exactly one ExtractionResult is produced per document; fields are
// extracted from the merged whole-document text, not per page.
func (p *Processor) ProcessFile(ctx context.Context, path, filename string) (entity.ExtractionResult, error) {
	start := time.Now()
	jobID := requestUUID(ctx)

	ext := constants.NormalizeExt(filepath.Ext(filename))
	format := constants.MapExtToFormat(ext)

	p.recordStart(ctx, jobID, filename, format, start)

	// The credential is verified up front so a misconfigured deployment
	// fails before any page is rendered or submitted.
	if cc, ok := p.recognizer.(vision.CredentialChecker); ok {
		if err := cc.CheckCredentials(); err != nil {
			return p.fail(ctx, jobID, start, err)
		}
	}

	if format == "" {
		return p.fail(ctx, jobID, start, fmt.Errorf("%w: extension %q", common.ErrUnsupportedFormat, ext))
	}

	pages, release, err := p.rasterizer.Pages(ctx, path)
	if err != nil {
		release()
		return p.fail(ctx, jobID, start, err)
	}
	defer release()

	var lines []string
	for _, pg := range pages {
		pageLines, err := p.recognizer.Recognize(ctx, pg.Path)
		if err != nil {
			p.logger.Error("pipeline.ocr.failed", "job_id", jobID, "page", pg.Index, "error", err)
			return p.fail(ctx, jobID, start, fmt.Errorf("page %d: %w", pg.Index, err))
		}
		lines = append(lines, pageLines...)
	}
	p.logger.Info("pipeline.ocr.ok", "job_id", jobID, "pages", len(pages), "lines", len(lines))

	res := p.extractor.Extract(lines)

	raw, err := json.Marshal(res)
	if err != nil {
		return p.fail(ctx, jobID, start, fmt.Errorf("encode result: %w", err))
	}
	// A schema violation here is a bug in the rule set, not a request
	// failure; the best-effort result is still returned.
	if err := extract.ValidateJSONAgainstSchema(p.schema, raw); err != nil {
		p.logger.Warn("pipeline.result.schema_violation", "job_id", jobID, "error", err)
	}

	p.recordSuccess(ctx, jobID, len(pages), raw, start)
	p.logger.Info("pipeline.extract.ok",
		"job_id", jobID,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) fail(ctx context.Context, jobID uuid.UUID, start time.Time, err error) (entity.ExtractionResult, error) {
	p.recordFailure(ctx, jobID, err, start)
	return entity.ExtractionResult{}, err
}

func (p *Processor) recordStart(ctx context.Context, jobID uuid.UUID, filename string, format constants.Format, start time.Time) {
	if p.history == nil {
		return
	}
	job := entity.ExtractionJob{
		ID:        jobID,
		Filename:  filename,
		Format:    string(format),
		Status:    string(constants.JobStatusRunning),
		StartedAt: start,
	}
	if err := p.history.Start(ctx, job); err != nil {
		p.logger.Warn("pipeline.history.start_failed", "job_id", jobID, "error", err)
	}
}

func (p *Processor) recordSuccess(ctx context.Context, jobID uuid.UUID, pages int, result []byte, start time.Time) {
	if p.history == nil {
		return
	}
	now := time.Now()
	if err := p.history.FinishSuccess(ctx, jobID, pages, result, now, now.Sub(start).Milliseconds()); err != nil {
		p.logger.Warn("pipeline.history.finish_failed", "job_id", jobID, "error", err)
	}
}

func (p *Processor) recordFailure(ctx context.Context, jobID uuid.UUID, cause error, start time.Time) {
	if p.history == nil {
		return
	}
	now := time.Now()
	if err := p.history.FinishFailure(ctx, jobID, cause.Error(), now, now.Sub(start).Milliseconds()); err != nil {
		p.logger.Warn("pipeline.history.finish_failed", "job_id", jobID, "error", err)
	}
}

// requestUUID reuses the request ID from context when it parses as a UUID,
// so the history row and the HTTP logs share one identifier.
func requestUUID(ctx context.Context) uuid.UUID {
	if id, err := uuid.Parse(common.RequestIDFromContext(ctx)); err == nil {
		return id
	}
	return uuid.New()
}
