package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/minhlq/resume-ocr/internal/common"
	"github.com/minhlq/resume-ocr/internal/export"
	"github.com/minhlq/resume-ocr/internal/pipeline"
	"github.com/minhlq/resume-ocr/internal/repository"
)

// Server wires the HTTP surface over the extraction pipeline.
type Server struct {
	cfg       common.ServerConfig
	processor *pipeline.Processor
	history   repository.HistoryRepository // optional
	exporter  *export.Service              // optional
	logger    *slog.Logger
}

func New(cfg common.ServerConfig, p *pipeline.Processor, history repository.HistoryRepository, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		processor: p,
		history:   history,
		exporter:  exporter,
		logger:    logger,
	}
}

// Routes returns the service mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extract-resume/", s.handleExtract)
	mux.HandleFunc("GET /extractions", s.handleListExtractions)
	mux.HandleFunc("GET /extractions/export", s.handleExportExtractions)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps pipeline sentinels to HTTP statuses. Anything
// unclassified is an internal error.
func (s *Server) writeError(w http.ResponseWriter, reqID string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNoFileProvided),
		errors.Is(err, common.ErrUnsupportedFormat):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrCorruptDocument):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrProviderAuth),
		errors.Is(err, common.ErrProviderRequest):
		status = http.StatusBadGateway
	}

	s.logger.Error("http.request_failed", "req_id", reqID, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
