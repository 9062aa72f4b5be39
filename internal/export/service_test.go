package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/minhlq/resume-ocr/internal/entity"
)

type cannedHistory struct {
	jobs []entity.ExtractionJob
	err  error
}

func (h *cannedHistory) Start(ctx context.Context, job entity.ExtractionJob) error { return nil }

func (h *cannedHistory) FinishSuccess(ctx context.Context, id uuid.UUID, pages int, result []byte, finishedAt time.Time, durationMs int64) error {
	return nil
}

func (h *cannedHistory) FinishFailure(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time, durationMs int64) error {
	return nil
}

func (h *cannedHistory) List(ctx context.Context, limit int) ([]entity.ExtractionJob, error) {
	return h.jobs, h.err
}

func TestExportJobsXLSX(t *testing.T) {
	started := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
	errMsg := "corrupt document: pdftoppm: exit status 1"
	hist := &cannedHistory{jobs: []entity.ExtractionJob{
		{
			ID:         uuid.New(),
			Filename:   "cv.pdf",
			Format:     "PDF",
			Pages:      2,
			Status:     "SUCCEEDED",
			ResultJSON: []byte(`{"name":"Nguyễn Thị Lượn","phone":"0901234567","birth_date":"27.1.1990","experience":[]}`),
			StartedAt:  started,
			DurationMs: 2450,
		},
		{
			ID:           uuid.New(),
			Filename:     "broken.pdf",
			Format:       "PDF",
			Status:       "FAILED",
			ErrorMessage: &errMsg,
			StartedAt:    started.Add(-time.Minute),
			DurationMs:   120,
		},
	}}

	svc := NewService(hist, nil)
	data, err := svc.ExportJobsXLSX(context.Background(), 50)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Extractions"

	cell := func(ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Started At", cell("A1"))
	assert.Equal(t, "Error", cell("J1"))

	assert.Equal(t, "2026-08-30T10:15:00Z", cell("A2"))
	assert.Equal(t, "cv.pdf", cell("B2"))
	assert.Equal(t, "PDF", cell("C2"))
	assert.Equal(t, "2", cell("D2"))
	assert.Equal(t, "SUCCEEDED", cell("E2"))
	assert.Equal(t, "Nguyễn Thị Lượn", cell("F2"))
	assert.Equal(t, "0901234567", cell("G2"))
	assert.Equal(t, "27.1.1990", cell("H2"))
	assert.Equal(t, "2450", cell("I2"))
	assert.Empty(t, cell("J2"))

	assert.Equal(t, "broken.pdf", cell("B3"))
	assert.Equal(t, "FAILED", cell("E3"))
	assert.Empty(t, cell("F3"))
	assert.Contains(t, cell("J3"), "pdftoppm")
}

func TestExportJobsXLSXEmptyHistory(t *testing.T) {
	svc := NewService(&cannedHistory{}, nil)

	data, err := svc.ExportJobsXLSX(context.Background(), 10)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extractions")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestExportJobsXLSXListError(t *testing.T) {
	svc := NewService(&cannedHistory{err: errors.New("db gone")}, nil)

	_, err := svc.ExportJobsXLSX(context.Background(), 10)
	assert.ErrorContains(t, err, "db gone")
}
