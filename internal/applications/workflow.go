// Package applications implements the application lifecycle: creation with
// duplicate prevention, status changes, and listings. Applications are not
// cached per-user or per-job; status changes must be visible immediately to
// both sides. Only the aggregate listing goes through the cache.
package applications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"job-board/internal/blob"
	"job-board/internal/cache"
	"job-board/internal/models"
	"job-board/internal/store"
	"job-board/internal/telemetry"
)

// Store is the record-store port the workflow needs.
type Store interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
	CreateApplication(ctx context.Context, userID, jobID string) (models.Application, error)
	FindApplication(ctx context.Context, userID, jobID string) (models.Application, error)
	GetApplication(ctx context.Context, id string) (models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	ListApplicationsByUser(ctx context.Context, userID string) ([]models.ApplicationWithJob, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]models.ApplicationWithUser, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) (models.Application, error)
	SetApplicationResume(ctx context.Context, id, key string) (models.Application, error)
}

// Workflow coordinates application operations against the record store.
type Workflow struct {
	store   Store
	cache   *cache.Facade
	resumes blob.Uploader
}

// NewWorkflow builds the workflow. resumes may be nil when no blob storage is
// configured; AttachResume then reports Unavailable.
func NewWorkflow(st Store, c *cache.Facade, resumes blob.Uploader) *Workflow {
	return &Workflow{store: st, cache: c, resumes: resumes}
}

// Apply creates an application in the Applied state for (userID, jobID).
// The existence pre-check is a latency optimization only: two concurrent
// applies can both pass it, and the store's unique index on (user_id, job_id)
// is what actually guarantees at most one row per pair.
func (w *Workflow) Apply(ctx context.Context, userID, jobID string) (*models.Application, error) {
	if err := models.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	if err := models.ValidateID("job_id", jobID); err != nil {
		return nil, err
	}

	if _, err := w.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
		}
		return nil, err
	}
	job, err := w.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, models.ErrNotFound)
		}
		return nil, err
	}
	if job.ApplicationEnds != nil && time.Now().After(*job.ApplicationEnds) {
		return nil, models.NewValidationError("job_id", "applications for this job have closed")
	}

	if _, err := w.store.FindApplication(ctx, userID, jobID); err == nil {
		telemetry.DuplicateApplications.Inc()
		return nil, models.ErrAlreadyApplied
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	app, err := w.store.CreateApplication(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			telemetry.DuplicateApplications.Inc()
			return nil, models.ErrAlreadyApplied
		}
		return nil, fmt.Errorf("create application: %w", err)
	}
	telemetry.ApplicationsCreated.Inc()
	w.cache.InvalidateApplicationList(ctx)
	return &app, nil
}

// ListAll returns every application, newest first, read-through on the
// aggregate listing key.
func (w *Workflow) ListAll(ctx context.Context) ([]models.Application, error) {
	if apps, ok := w.cache.GetApplicationList(ctx); ok {
		return apps, nil
	}
	apps, err := w.store.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	w.cache.SetApplicationList(ctx, apps)
	return apps, nil
}

// ListByUser returns a candidate's applications, newest first, each with a
// bounded job projection.
func (w *Workflow) ListByUser(ctx context.Context, userID string) ([]models.ApplicationWithJob, error) {
	if err := models.ValidateID("user_id", userID); err != nil {
		return nil, err
	}
	return w.store.ListApplicationsByUser(ctx, userID)
}

// ListByJob returns a posting's applications, newest first, each with a
// bounded applicant projection.
func (w *Workflow) ListByJob(ctx context.Context, jobID string) ([]models.ApplicationWithUser, error) {
	if err := models.ValidateID("job_id", jobID); err != nil {
		return nil, err
	}
	return w.store.ListApplicationsByJob(ctx, jobID)
}

// SetStatus overwrites an application's status. Any status can be set from
// any other; transition ordering is intentionally not enforced.
func (w *Workflow) SetStatus(ctx context.Context, id, status string) (*models.Application, error) {
	if err := models.ValidateID("id", id); err != nil {
		return nil, err
	}
	if !models.ValidApplicationStatus(status) {
		return nil, models.NewValidationError("status", fmt.Sprintf("must be one of: %s", strings.Join(models.ApplicationStatuses, ", ")))
	}
	app, err := w.store.UpdateApplicationStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	w.cache.InvalidateApplicationList(ctx)
	return &app, nil
}

// AttachResume stores a resume document for an application and records its
// object key. Requires blob storage to be configured.
func (w *Workflow) AttachResume(ctx context.Context, id, filename string, body io.Reader) (*models.Application, error) {
	if err := models.ValidateID("id", id); err != nil {
		return nil, err
	}
	if w.resumes == nil {
		return nil, fmt.Errorf("resume storage not configured: %w", models.ErrUnavailable)
	}

	app, err := w.store.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("resumes/%s/%s", app.ID, sanitizeFilename(filename))
	if err := w.resumes.Upload(ctx, key, body); err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	updated, err := w.store.SetApplicationResume(ctx, id, key)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "resume"
	}
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, "\\", "_")
}
