package storage

import (
	"testing"
	"time"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/models"
)

func newJob(id string, createdAt time.Time) *models.Job {
	return &models.Job{
		ID:         id,
		ProductDir: "/products/" + id,
		Status:     models.JobQueued,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestJobStoreSetAndGet(t *testing.T) {
	store := New()
	job := newJob("job-1", time.Now())

	store.Set(job)

	got, exists := store.Get("job-1")
	if !exists {
		t.Fatal("Expected job to exist")
	}
	if got.ID != "job-1" || got.Status != models.JobQueued {
		t.Errorf("Unexpected job %+v", got)
	}

	// The store hands out copies; mutating them must not leak back in.
	got.Status = models.JobFailed
	again, _ := store.Get("job-1")
	if again.Status != models.JobQueued {
		t.Error("Mutation of a returned job leaked into the store")
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	store := New()
	if _, exists := store.Get("nope"); exists {
		t.Error("Expected missing job")
	}
}

func TestJobStoreLifecycle(t *testing.T) {
	store := New()
	store.Set(newJob("job-1", time.Now()))

	store.SetStatus("job-1", models.JobRunning, "")
	job, _ := store.Get("job-1")
	if job.Status != models.JobRunning {
		t.Errorf("Expected running, got %s", job.Status)
	}
	if !job.UpdatedAt.After(job.CreatedAt) && !job.UpdatedAt.Equal(job.CreatedAt) {
		t.Error("Expected UpdatedAt touched")
	}

	result := &classify.Result{ProductSno: "7", TotalImages: 3}
	store.AttachResult("job-1", result)
	store.SetStatus("job-1", models.JobSucceeded, "")

	job, _ = store.Get("job-1")
	if job.Status != models.JobSucceeded {
		t.Errorf("Expected succeeded, got %s", job.Status)
	}
	if job.Result == nil || job.Result.ProductSno != "7" {
		t.Errorf("Expected attached result, got %+v", job.Result)
	}
}

func TestJobStoreFailureRecordsError(t *testing.T) {
	store := New()
	store.Set(newJob("job-1", time.Now()))

	store.SetStatus("job-1", models.JobFailed, "no images supplied for product")

	job, _ := store.Get("job-1")
	if job.Status != models.JobFailed {
		t.Errorf("Expected failed, got %s", job.Status)
	}
	if job.Error != "no images supplied for product" {
		t.Errorf("Expected error message recorded, got %q", job.Error)
	}
}

func TestJobStoreListNewestFirst(t *testing.T) {
	store := New()
	base := time.Now()
	store.Set(newJob("old", base.Add(-2*time.Hour)))
	store.Set(newJob("mid", base.Add(-1*time.Hour)))
	store.Set(newJob("new", base))

	jobs := store.List()
	if len(jobs) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(jobs))
	}
	want := []string{"new", "mid", "old"}
	for i, job := range jobs {
		if job.ID != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, job.ID)
		}
	}
}

func TestJobStoreDelete(t *testing.T) {
	store := New()
	store.Set(newJob("job-1", time.Now()))

	store.Delete("job-1")

	if _, exists := store.Get("job-1"); exists {
		t.Error("Expected job deleted")
	}
}
