package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"job-board/internal/models"
	"job-board/internal/telemetry"
)

// Key families. Repository and workflow code never builds raw cache keys;
// everything goes through the facade.
const (
	jobKeyPrefix       = "job_"
	allJobsKey         = "all_jobs"
	allApplicationsKey = "all_applications"
)

// TTL policy per key family. Individual jobs change less often than the
// aggregate listings are invalidated, so details live longer.
const (
	JobDetailTTL = 5 * time.Minute
	ListingTTL   = 60 * time.Second
)

// Facade centralizes key naming, TTL policy, and serialization on top of a
// Store. Read failures degrade to a miss and write failures are logged and
// swallowed: the record store stays the source of truth, a failed
// invalidation only risks staleness until the TTL runs out.
type Facade struct {
	store Store
}

// NewFacade wraps the selected backend.
func NewFacade(store Store) *Facade {
	return &Facade{store: store}
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

// GetJob returns the cached job detail, or ok=false on miss or backend error.
func (f *Facade) GetJob(ctx context.Context, id string) (*models.Job, bool) {
	var job models.Job
	if !f.get(ctx, jobKey(id), &job) {
		return nil, false
	}
	return &job, true
}

// SetJob caches a job detail entry.
func (f *Facade) SetJob(ctx context.Context, job *models.Job) {
	f.set(ctx, jobKey(job.ID), job, JobDetailTTL)
}

// GetJobList returns the cached all-jobs listing.
func (f *Facade) GetJobList(ctx context.Context) ([]models.Job, bool) {
	var jobs []models.Job
	if !f.get(ctx, allJobsKey, &jobs) {
		return nil, false
	}
	return jobs, true
}

// SetJobList caches the all-jobs listing.
func (f *Facade) SetJobList(ctx context.Context, jobs []models.Job) {
	f.set(ctx, allJobsKey, jobs, ListingTTL)
}

// GetApplicationList returns the cached all-applications listing.
func (f *Facade) GetApplicationList(ctx context.Context) ([]models.Application, bool) {
	var apps []models.Application
	if !f.get(ctx, allApplicationsKey, &apps) {
		return nil, false
	}
	return apps, true
}

// SetApplicationList caches the all-applications listing.
func (f *Facade) SetApplicationList(ctx context.Context, apps []models.Application) {
	f.set(ctx, allApplicationsKey, apps, ListingTTL)
}

// InvalidateJob drops the detail entry for id.
func (f *Facade) InvalidateJob(ctx context.Context, id string) {
	f.invalidate(ctx, jobKey(id))
}

// InvalidateJobList drops the all-jobs listing.
func (f *Facade) InvalidateJobList(ctx context.Context) {
	f.invalidate(ctx, allJobsKey)
}

// InvalidateApplicationList drops the all-applications listing.
func (f *Facade) InvalidateApplicationList(ctx context.Context) {
	f.invalidate(ctx, allApplicationsKey)
}

func (f *Facade) get(ctx context.Context, key string, out any) bool {
	data, err := f.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache: read %s failed, treating as miss: %v", key, err)
		}
		telemetry.CacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("cache: corrupt entry at %s, treating as miss: %v", key, err)
		telemetry.CacheMisses.Inc()
		return false
	}
	telemetry.CacheHits.Inc()
	return true
}

func (f *Facade) set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: marshal for %s failed: %v", key, err)
		return
	}
	if err := f.store.Set(ctx, key, data, ttl); err != nil {
		log.Printf("cache: write %s failed: %v", key, err)
	}
}

func (f *Facade) invalidate(ctx context.Context, key string) {
	if _, err := f.store.Delete(ctx, key); err != nil {
		log.Printf("cache: invalidate %s failed: %v", key, err)
	}
}
