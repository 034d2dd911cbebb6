// Package jobs implements the job repository: validated writes to the record
// store with read-through caching of the detail and listing key families.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"job-board/internal/cache"
	"job-board/internal/models"
	"job-board/internal/tags"
	"job-board/internal/telemetry"
)

// Store is the record-store port the repository needs.
type Store interface {
	CreateJob(ctx context.Context, j models.Job) (models.Job, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	UpdateJob(ctx context.Context, j models.Job) (models.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// Repository mediates all job reads and writes. Mutations invalidate the
// affected cache keys before returning; reads go through the facade.
type Repository struct {
	store    Store
	cache    *cache.Facade
	validate *validator.Validate
}

// NewRepository builds a repository over the given store and cache facade.
func NewRepository(store Store, c *cache.Facade) *Repository {
	return &Repository{
		store:    store,
		cache:    c,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateInput carries the fields accepted when posting a job. Tags take any
// of the recognized wire shapes (see the tags package).
type CreateInput struct {
	Title           string          `json:"title" validate:"required"`
	Company         string          `json:"company" validate:"required"`
	JobType         string          `json:"job_type" validate:"required"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
	Tags            json.RawMessage `json:"tags,omitempty"`
	Openings        *int            `json:"openings,omitempty"`
	ApplicationEnds *time.Time      `json:"application_ends,omitempty"`
	PostedBy        string          `json:"posted_by,omitempty"`
}

// UpdateInput is a patch: nil fields are left untouched. Touched constrained
// fields are re-validated.
type UpdateInput struct {
	Title           *string         `json:"title,omitempty"`
	Company         *string         `json:"company,omitempty"`
	JobType         *string         `json:"job_type,omitempty"`
	Location        *string         `json:"location,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Tags            json.RawMessage `json:"tags,omitempty"`
	Openings        *int            `json:"openings,omitempty"`
	ApplicationEnds *time.Time      `json:"application_ends,omitempty"`
}

// Create validates, normalizes tags, persists, and invalidates the listing
// key. The fresh listing is rebuilt lazily on the next GetAll miss.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*models.Job, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, asValidationError(err)
	}
	if !models.ValidJobType(in.JobType) {
		return nil, models.NewValidationError("job_type", fmt.Sprintf("must be one of: %s", strings.Join(models.JobTypes, ", ")))
	}
	if in.Openings != nil && *in.Openings <= 0 {
		return nil, models.NewValidationError("openings", "must be a positive integer")
	}
	if in.ApplicationEnds != nil && !in.ApplicationEnds.After(time.Now()) {
		return nil, models.NewValidationError("application_ends", "must be in the future")
	}
	if in.PostedBy != "" {
		if err := models.ValidateID("posted_by", in.PostedBy); err != nil {
			return nil, err
		}
	}

	job := models.Job{
		Title:           in.Title,
		Company:         in.Company,
		JobType:         in.JobType,
		Location:        in.Location,
		Description:     in.Description,
		Tags:            tags.Normalize(tags.FromJSON(in.Tags)),
		Openings:        in.Openings,
		ApplicationEnds: in.ApplicationEnds,
		PostedBy:        in.PostedBy,
	}

	created, err := r.store.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	telemetry.JobsCreated.Inc()
	r.cache.InvalidateJobList(ctx)
	return &created, nil
}

// GetAll returns every job, read-through on the listing key.
func (r *Repository) GetAll(ctx context.Context) ([]models.Job, error) {
	if jobs, ok := r.cache.GetJobList(ctx); ok {
		return jobs, nil
	}
	jobs, err := r.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	r.cache.SetJobList(ctx, jobs)
	return jobs, nil
}

// GetByID returns one job, read-through on the detail key.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	if err := models.ValidateID("id", id); err != nil {
		return nil, err
	}
	if job, ok := r.cache.GetJob(ctx, id); ok {
		return job, nil
	}
	job, err := r.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetJob(ctx, &job)
	return &job, nil
}

// Update applies a patch, re-validating touched constrained fields, and drops
// both the detail and listing keys. A job's attributes can surface in the
// listing view, so both are invalidated rather than patched in place.
func (r *Repository) Update(ctx context.Context, id string, in UpdateInput) (*models.Job, error) {
	if err := models.ValidateID("id", id); err != nil {
		return nil, err
	}

	job, err := r.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("title", "must not be empty")
		}
		job.Title = *in.Title
	}
	if in.Company != nil {
		if strings.TrimSpace(*in.Company) == "" {
			return nil, models.NewValidationError("company", "must not be empty")
		}
		job.Company = *in.Company
	}
	if in.JobType != nil {
		if !models.ValidJobType(*in.JobType) {
			return nil, models.NewValidationError("job_type", fmt.Sprintf("must be one of: %s", strings.Join(models.JobTypes, ", ")))
		}
		job.JobType = *in.JobType
	}
	if in.Location != nil {
		job.Location = *in.Location
	}
	if in.Description != nil {
		job.Description = *in.Description
	}
	if in.Tags != nil {
		job.Tags = tags.Normalize(tags.FromJSON(in.Tags))
	}
	if in.Openings != nil {
		if *in.Openings <= 0 {
			return nil, models.NewValidationError("openings", "must be a positive integer")
		}
		job.Openings = in.Openings
	}
	if in.ApplicationEnds != nil {
		if !in.ApplicationEnds.After(time.Now()) {
			return nil, models.NewValidationError("application_ends", "must be in the future")
		}
		job.ApplicationEnds = in.ApplicationEnds
	}

	updated, err := r.store.UpdateJob(ctx, job)
	if err != nil {
		return nil, err
	}
	r.cache.InvalidateJob(ctx, id)
	r.cache.InvalidateJobList(ctx)
	return &updated, nil
}

// Delete removes the job and drops both cache keys.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := models.ValidateID("id", id); err != nil {
		return err
	}
	if err := r.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	r.cache.InvalidateJob(ctx, id)
	r.cache.InvalidateJobList(ctx)
	return nil
}

// asValidationError converts validator/v10 output into the field-specific
// InvalidArgument form the HTTP layer reports.
func asValidationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return models.NewValidationError(field, "is required")
		default:
			return models.NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
		}
	}
	return err
}
