package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history store disabled", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	jobs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("http.extractions.list_failed", "error", err)
		http.Error(w, "failed to list extractions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"extractions": jobs})
}

func (s *Server) handleExportExtractions(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		http.Error(w, "export disabled", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	data, err := s.exporter.ExportJobsXLSX(r.Context(), limit)
	if err != nil {
		s.logger.Error("http.extractions.export_failed", "error", err)
		http.Error(w, "failed to export extractions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="extractions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("http.extractions.export_write_failed", "error", err)
	}
}
