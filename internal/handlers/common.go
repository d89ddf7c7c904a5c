package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modaworks/curator/internal/pipeline"
	"github.com/modaworks/curator/internal/storage"
)

type Handler struct {
	jobStore *storage.JobStore
	pipeline *pipeline.Pipeline
}

func New(p *pipeline.Pipeline) *Handler {
	return &Handler{
		jobStore: storage.New(),
		pipeline: p,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}
