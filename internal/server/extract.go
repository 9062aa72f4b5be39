package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/minhlq/resume-ocr/internal/common"
)

// handleExtract accepts one multipart upload ("file" field), runs the
// pipeline, and returns the unified extraction result. The uploaded file
// is removed before the handler returns on every path; rendered page
// intermediates are released inside the pipeline.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.New().String()
	ctx := common.WithRequestID(r.Context(), reqID)

	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, reqID, fmt.Errorf("%w: multipart field %q", common.ErrNoFileProvided, "file"))
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("http.upload_close_failed", "req_id", reqID, "error", cerr)
		}
	}()

	s.logger.Info("http.extract.request",
		"req_id", reqID,
		"filename", header.Filename,
		"bytes", header.Size,
	)

	path, err := s.saveUpload(reqID, header.Filename, file)
	if err != nil {
		s.writeError(w, reqID, common.WrapError(err, "persist upload"))
		return
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("http.upload_remove_failed", "req_id", reqID, "path", path, "error", rmErr)
		}
	}()

	res, err := s.processor.ProcessFile(ctx, path, header.Filename)
	if err != nil {
		s.writeError(w, reqID, err)
		return
	}

	s.logger.Info("http.extract.ok",
		"req_id", reqID,
		"filename", header.Filename,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, res)
}

// saveUpload copies the upload into the scratch dir under a request-unique
// name, keeping the original extension for format detection.
func (s *Server) saveUpload(reqID, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.ScratchDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(s.cfg.ScratchDir, reqID+filepath.Ext(filename))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}
