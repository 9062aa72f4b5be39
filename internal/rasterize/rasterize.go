package rasterize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/minhlq/resume-ocr/constants"
	"github.com/minhlq/resume-ocr/internal/common"
)

// Page is one rasterized page image, in ascending page order (Index 0 =
// first page).
type Page struct {
	Index int
	Path  string
}

// Rasterizer turns an input document into an ordered sequence of page
// images suitable for OCR submission. Images pass through unchanged; PDFs
// are rendered one PNG per page via pdftoppm.
type Rasterizer struct {
	cfg    common.RasterConfig
	runner Runner
	logger *slog.Logger
}

func New(cfg common.RasterConfig, logger *slog.Logger) *Rasterizer {
	return NewWithRunner(cfg, execRunner{}, logger)
}

// NewWithRunner is New with the command runner injected, for tests.
func NewWithRunner(cfg common.RasterConfig, runner Runner, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Rasterizer{cfg: cfg, runner: runner, logger: logger}
}

func noopRelease() {}

// Pages returns the ordered page images for path plus a release func that
// removes any rendered intermediates. The release func is never nil and
// must be called on every exit path, including when err is non-nil.
func (r *Rasterizer) Pages(ctx context.Context, path string) ([]Page, func(), error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.IMAGE:
		return []Page{{Index: 0, Path: path}}, noopRelease, nil
	case constants.PDF:
		return r.renderPDF(ctx, path)
	default:
		r.logger.Error("unsupported document extension", "path", path, "ext", ext)
		return nil, noopRelease, fmt.Errorf("%w: extension %q", common.ErrUnsupportedFormat, ext)
	}
}

func (r *Rasterizer) renderPDF(ctx context.Context, path string) ([]Page, func(), error) {
	tmpDir, err := os.MkdirTemp("", "ro-pages-*")
	if err != nil {
		return nil, noopRelease, err
	}
	release := func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove page dir", "dir", tmpDir, "error", rmErr)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, release, fmt.Errorf("%w: pdftoppm: %v: %s", common.ErrCorruptDocument, err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...); pdftoppm
	// zero-pads page numbers to a uniform width, so a lexical sort keeps
	// ascending page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, release, fmt.Errorf("%w: no pages rendered", common.ErrCorruptDocument)
	}

	pages := make([]Page, 0, len(matches))
	for i, m := range matches {
		pages = append(pages, Page{Index: i, Path: m})
	}
	r.logger.Debug("rendered pdf pages", "path", path, "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, release, nil
}
