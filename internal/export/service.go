package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/minhlq/resume-ocr/internal/entity"
	"github.com/minhlq/resume-ocr/internal/repository"
)

// Service is a tiny façade over the history repository that produces XLSX
// bytes for exports.
type Service struct {
	history repository.HistoryRepository
	logger  *slog.Logger
}

func NewService(history repository.HistoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{history: history, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook (as bytes) of the most recent
// extraction jobs, one row per request, newest first.
func (s *Service) ExportJobsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	jobs, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query extraction jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Started At",
		"File",
		"Format",
		"Pages",
		"Status",
		"Name",
		"Phone",
		"Birth Date",
		"Duration (ms)",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range jobs {
		var res entity.ExtractionResult
		if len(j.ResultJSON) > 0 {
			// best effort; an undecodable row still exports its metadata
			_ = json.Unmarshal(j.ResultJSON, &res)
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, j.StartedAt.UTC().Format(time.RFC3339))
		write(2, j.Filename)
		write(3, j.Format)
		write(4, j.Pages)
		write(5, j.Status)
		write(6, strOrEmpty(res.Name))
		write(7, strOrEmpty(res.Phone))
		write(8, strOrEmpty(res.BirthDate))
		write(9, j.DurationMs)
		write(10, truncate(strOrEmpty(j.ErrorMessage), 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 22) // started at
	_ = f.SetColWidth(sheet, "B", "B", 36) // file
	_ = f.SetColWidth(sheet, "F", "F", 28) // name
	_ = f.SetColWidth(sheet, "G", "H", 16) // phone, birth date
	_ = f.SetColWidth(sheet, "J", "J", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
