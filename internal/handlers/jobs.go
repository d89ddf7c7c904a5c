package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modaworks/curator/internal/models"
)

type createJobRequest struct {
	ProductDir string `json:"product_dir"`
}

// HandleJobs serves GET /api/jobs (list) and POST /api/jobs (submit a
// product directory for classification).
func (h *Handler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, http.StatusOK, h.jobStore.List())
	case "POST":
		h.handleCreateJob(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleJobDetail serves GET /api/jobs/{id}.
func (h *Handler) HandleJobDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	job, exists := h.jobStore.Get(jobID)
	if !exists {
		h.writeError(w, "Job not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProductDir == "" {
		h.writeError(w, "product_dir is required", http.StatusBadRequest)
		return
	}
	if info, err := os.Stat(req.ProductDir); err != nil || !info.IsDir() {
		h.writeError(w, "product_dir is not a directory: "+req.ProductDir, http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &models.Job{
		ID:         uuid.NewString(),
		ProductDir: req.ProductDir,
		Status:     models.JobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	h.jobStore.Set(job)

	go h.runJob(job.ID, req.ProductDir)

	h.writeJSON(w, http.StatusAccepted, job)
}

// runJob executes the pipeline for one submitted job. The job record carries
// the outcome; a failed product never takes the server down.
func (h *Handler) runJob(jobID, productDir string) {
	h.jobStore.SetStatus(jobID, models.JobRunning, "")
	slog.Info("Classification job started", "job_id", jobID, "dir", productDir)

	result, err := h.pipeline.RunProduct(context.Background(), productDir)
	if err != nil {
		slog.Error("Classification job failed", "job_id", jobID, "error", err)
		h.jobStore.SetStatus(jobID, models.JobFailed, err.Error())
		return
	}

	h.jobStore.AttachResult(jobID, result)
	h.jobStore.SetStatus(jobID, models.JobSucceeded, "")
	slog.Info("Classification job finished", "job_id", jobID, "sno", result.ProductSno)
}
