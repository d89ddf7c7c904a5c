package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modaworks/curator/internal/models"
	"github.com/modaworks/curator/internal/pipeline"
	"github.com/modaworks/curator/internal/providers"
)

type stubProvider struct{}

func (stubProvider) ClassifyImage(_ context.Context, _ providers.Config, _ providers.Image) (string, error) {
	return `{"category": "worn_front", "color": "블랙", "confidence": 0.9}`, nil
}

func newTestHandler() *Handler {
	return New(pipeline.New(stubProvider{}, pipeline.Options{Model: "test-model"}))
}

func TestHandleJobsListEmpty(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/jobs", nil)
	rec := httptest.NewRecorder()
	h.HandleJobs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var jobs []models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("Expected empty job list, got %d", len(jobs))
	}
}

func TestHandleJobsRejectsBadRequests(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing product_dir", `{}`, http.StatusBadRequest},
		{"nonexistent product_dir", `{"product_dir": "/does/not/exist"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/jobs", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.HandleJobs(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestHandleJobsRejectsUnknownMethod(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("DELETE", "/api/jobs", nil)
	rec := httptest.NewRecorder()
	h.HandleJobs(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleJobDetailNotFound(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("GET", "/api/jobs/nope", nil)
	rec := httptest.NewRecorder()
	h.HandleJobDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestCreateJobRunsToCompletion(t *testing.T) {
	h := newTestHandler()

	productDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(productDir, "001.jpg"), []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]string{"product_dir": productDir})
	req := httptest.NewRequest("POST", "/api/jobs", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	h.HandleJobs(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var job models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if job.ID == "" || job.Status != models.JobQueued {
		t.Fatalf("Unexpected job %+v", job)
	}

	// The job runs asynchronously; poll until it settles.
	deadline := time.Now().Add(5 * time.Second)
	for {
		stored, exists := h.jobStore.Get(job.ID)
		if !exists {
			t.Fatal("Job vanished from the store")
		}
		if stored.Status == models.JobSucceeded {
			if stored.Result == nil || stored.Result.TotalImages != 1 {
				t.Fatalf("Unexpected result %+v", stored.Result)
			}
			break
		}
		if stored.Status == models.JobFailed {
			t.Fatalf("Job failed: %s", stored.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job stuck in status %s", stored.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
