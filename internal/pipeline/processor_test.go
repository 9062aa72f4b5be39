package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhlq/resume-ocr/constants"
	"github.com/minhlq/resume-ocr/internal/common"
	"github.com/minhlq/resume-ocr/internal/entity"
	"github.com/minhlq/resume-ocr/internal/extract"
	"github.com/minhlq/resume-ocr/internal/rasterize"
)

// fakeRecognizer returns canned lines keyed by image path, or failErr for
// paths in failOn. calls counts Recognize invocations.
type fakeRecognizer struct {
	lines   map[string][]string
	failOn  map[string]error
	calls   int
	credErr error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, imagePath string) ([]string, error) {
	f.calls++
	if err, ok := f.failOn[imagePath]; ok {
		return nil, err
	}
	return f.lines[imagePath], nil
}

func (f *fakeRecognizer) CheckCredentials() error { return f.credErr }

// fakeHistory records the repository calls the processor makes.
type fakeHistory struct {
	started   []entity.ExtractionJob
	succeeded []uuid.UUID
	failed    []string
	lastPages int
	lastJSON  []byte
	startErr  error
}

func (f *fakeHistory) Start(ctx context.Context, job entity.ExtractionJob) error {
	f.started = append(f.started, job)
	return f.startErr
}

func (f *fakeHistory) FinishSuccess(ctx context.Context, id uuid.UUID, pages int, result []byte, finishedAt time.Time, durationMs int64) error {
	f.succeeded = append(f.succeeded, id)
	f.lastPages = pages
	f.lastJSON = result
	return nil
}

func (f *fakeHistory) FinishFailure(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time, durationMs int64) error {
	f.failed = append(f.failed, errorMessage)
	return nil
}

func (f *fakeHistory) List(ctx context.Context, limit int) ([]entity.ExtractionJob, error) {
	return nil, nil
}

// pdfRunner is a pdftoppm stand-in producing n numbered page PNGs.
type pdfRunner struct{ pages int }

func (p pdfRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	prefix := args[len(args)-1]
	for i := 1; i <= p.pages; i++ {
		if err := os.WriteFile(fmt.Sprintf("%s-%02d.png", prefix, i), []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o644))
	return path
}

func TestProcessFileSingleImage(t *testing.T) {
	path := writeImage(t, "scan.jpg")

	rec := &fakeRecognizer{lines: map[string][]string{
		path: {"Họ tên: Nguyễn Thị Lượn", "Số điện thoại: 0901234567", "Ngày sinh: 27.1.1990"},
	}}
	hist := &fakeHistory{}
	p := NewProcessor(nil, rasterize.New(common.RasterConfig{}, nil), rec, extract.NewExtractor(extract.DefaultLabels, nil), hist)

	res, err := p.ProcessFile(context.Background(), path, "scan.jpg")
	require.NoError(t, err)

	require.NotNil(t, res.Name)
	assert.Equal(t, "Nguyễn Thị Lượn", *res.Name)
	require.NotNil(t, res.Phone)
	assert.Equal(t, "0901234567", *res.Phone)
	require.NotNil(t, res.BirthDate)
	assert.Equal(t, "27.1.1990", *res.BirthDate)
	assert.NotNil(t, res.Experience)
	assert.Empty(t, res.Experience)

	assert.Equal(t, 1, rec.calls)
	require.Len(t, hist.started, 1)
	assert.Equal(t, string(constants.JobStatusRunning), hist.started[0].Status)
	assert.Equal(t, "scan.jpg", hist.started[0].Filename)
	require.Len(t, hist.succeeded, 1)
	assert.Equal(t, hist.started[0].ID, hist.succeeded[0])
	assert.Equal(t, 1, hist.lastPages)
	assert.JSONEq(t,
		`{"name":"Nguyễn Thị Lượn","phone":"0901234567","birth_date":"27.1.1990","experience":[]}`,
		string(hist.lastJSON))
}

func TestProcessFileMergesPDFPages(t *testing.T) {
	hist := &fakeHistory{}
	r := rasterize.NewWithRunner(common.RasterConfig{}, pdfRunner{pages: 2}, nil)

	// canned lines are keyed by call order: rendered page paths aren't
	// known up front
	byCall := [][]string{
		{"Họ tên: Trần Văn An"},
		{"Số điện thoại: 0912345678"},
	}
	calls := 0
	seq := recognizerFunc(func(ctx context.Context, imagePath string) ([]string, error) {
		lines := byCall[calls]
		calls++
		return lines, nil
	})
	p := NewProcessor(nil, r, seq, extract.NewExtractor(extract.DefaultLabels, nil), hist)

	res, err := p.ProcessFile(context.Background(), "cv.pdf", "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Trần Văn An", *res.Name)
	require.NotNil(t, res.Phone)
	assert.Equal(t, "0912345678", *res.Phone)
	assert.Equal(t, 2, hist.lastPages)
}

type recognizerFunc func(ctx context.Context, imagePath string) ([]string, error)

func (f recognizerFunc) Recognize(ctx context.Context, imagePath string) ([]string, error) {
	return f(ctx, imagePath)
}

func TestProcessFilePageErrorFailsDocument(t *testing.T) {
	r := rasterize.NewWithRunner(common.RasterConfig{}, pdfRunner{pages: 3}, nil)
	hist := &fakeHistory{}

	calls := 0
	ocrErr := fmt.Errorf("%w: boom", common.ErrProviderRequest)
	seq := recognizerFunc(func(ctx context.Context, imagePath string) ([]string, error) {
		calls++
		if calls == 2 {
			return nil, ocrErr
		}
		return []string{"gì đó"}, nil
	})
	p := NewProcessor(nil, r, seq, extract.NewExtractor(extract.DefaultLabels, nil), hist)

	_, err := p.ProcessFile(context.Background(), "cv.pdf", "cv.pdf")
	require.ErrorIs(t, err, common.ErrProviderRequest)
	assert.Contains(t, err.Error(), "page 1")
	assert.Equal(t, 2, calls, "pages after the failed one must not be submitted")
	require.Len(t, hist.failed, 1)
	assert.Empty(t, hist.succeeded)
}

func TestProcessFileCredentialCheckedFirst(t *testing.T) {
	path := writeImage(t, "scan.png")
	rec := &fakeRecognizer{credErr: errors.New("no key"), lines: map[string][]string{}}
	hist := &fakeHistory{}
	p := NewProcessor(nil, rasterize.New(common.RasterConfig{}, nil), rec, extract.NewExtractor(extract.DefaultLabels, nil), hist)

	_, err := p.ProcessFile(context.Background(), path, "scan.png")
	require.Error(t, err)
	assert.Equal(t, 0, rec.calls, "no page may reach the provider without a credential")
	require.Len(t, hist.failed, 1)
}

func TestProcessFileUnsupportedFilename(t *testing.T) {
	rec := &fakeRecognizer{}
	p := NewProcessor(nil, rasterize.New(common.RasterConfig{}, nil), rec, extract.NewExtractor(extract.DefaultLabels, nil), nil)

	_, err := p.ProcessFile(context.Background(), "whatever.bin", "resume.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Equal(t, 0, rec.calls)
}

func TestProcessFileWithoutHistory(t *testing.T) {
	path := writeImage(t, "scan.jpg")
	rec := &fakeRecognizer{lines: map[string][]string{path: {"Họ tên: Lê Thị Mai"}}}
	p := NewProcessor(nil, rasterize.New(common.RasterConfig{}, nil), rec, extract.NewExtractor(extract.DefaultLabels, nil), nil)

	res, err := p.ProcessFile(context.Background(), path, "scan.jpg")
	require.NoError(t, err)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Lê Thị Mai", *res.Name)
}

func TestProcessFileReusesRequestID(t *testing.T) {
	path := writeImage(t, "scan.jpg")
	rec := &fakeRecognizer{lines: map[string][]string{path: {"Họ tên: Lê Thị Mai"}}}
	hist := &fakeHistory{}
	p := NewProcessor(nil, rasterize.New(common.RasterConfig{}, nil), rec, extract.NewExtractor(extract.DefaultLabels, nil), hist)

	id := uuid.New()
	ctx := common.WithRequestID(context.Background(), id.String())
	_, err := p.ProcessFile(ctx, path, "scan.jpg")
	require.NoError(t, err)
	require.Len(t, hist.started, 1)
	assert.Equal(t, id, hist.started[0].ID)
}
