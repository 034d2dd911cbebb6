package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"job-board/internal/cache"
	"job-board/internal/jobs"
	"job-board/internal/models"
	"job-board/internal/store"
)

func newRepo() (*jobs.Repository, *store.Memory) {
	st := store.NewMemory()
	facade := cache.NewFacade(cache.NewLocal())
	return jobs.NewRepository(st, facade), st
}

func validInput() jobs.CreateInput {
	return jobs.CreateInput{
		Title:       "Engineer",
		Company:     "Acme",
		JobType:     models.JobTypeFullTime,
		Location:    "Remote",
		Description: "build things",
	}
}

func TestCreate_ValidationBoundaries(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	zero := 0

	tests := []struct {
		name   string
		mutate func(*jobs.CreateInput)
	}{
		{"unknown job type", func(in *jobs.CreateInput) { in.JobType = "Freelance" }},
		{"zero openings", func(in *jobs.CreateInput) { in.Openings = &zero }},
		{"past deadline", func(in *jobs.CreateInput) { in.ApplicationEnds = &past }},
		{"missing title", func(in *jobs.CreateInput) { in.Title = "" }},
		{"missing company", func(in *jobs.CreateInput) { in.Company = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := repo.Create(ctx, in)
			if !models.IsInvalidArgument(err) {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestCreate_Valid(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	in := validInput()
	openings := 3
	future := time.Now().Add(48 * time.Hour)
	in.Openings = &openings
	in.ApplicationEnds = &future
	in.Tags = json.RawMessage(`"go, backend, go"`)

	job, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if len(job.Tags) != 2 || job.Tags["go"] != "go" || job.Tags["backend"] != "backend" {
		t.Fatalf("expected normalized tag set, got %v", job.Tags)
	}
}

func TestGetAll_ReadThrough(t *testing.T) {
	repo, st := newRepo()
	ctx := context.Background()

	if _, err := repo.Create(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := repo.GetAll(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("expected one job, got %v err=%v", first, err)
	}

	// A direct store write bypassing the repository is invisible while the
	// listing entry is cached.
	if _, err := st.CreateJob(ctx, models.Job{Title: "Hidden", Company: "X", JobType: models.JobTypePartTime}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cached, err := repo.GetAll(ctx)
	if err != nil || len(cached) != 1 {
		t.Fatalf("expected cached listing of one job, got %d err=%v", len(cached), err)
	}

	// A repository mutation invalidates the listing, so the next read sees
	// both rows.
	if _, err := repo.Create(ctx, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	fresh, err := repo.GetAll(ctx)
	if err != nil || len(fresh) != 3 {
		t.Fatalf("expected fresh listing of three jobs, got %d err=%v", len(fresh), err)
	}
}

func TestUpdate_InvalidatesDetailAndListing(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	job, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Prime both cache entries.
	if _, err := repo.GetByID(ctx, job.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := repo.GetAll(ctx); err != nil {
		t.Fatalf("getAll: %v", err)
	}

	title := "Staff Engineer"
	if _, err := repo.Update(ctx, job.ID, jobs.UpdateInput{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Title != "Staff Engineer" {
		t.Fatalf("stale detail served after update: %+v", got)
	}
	list, err := repo.GetAll(ctx)
	if err != nil || len(list) != 1 || list[0].Title != "Staff Engineer" {
		t.Fatalf("stale listing served after update: %+v err=%v", list, err)
	}
}

func TestUpdate_RevalidatesTouchedFields(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	job, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "Freelance"
	if _, err := repo.Update(ctx, job.ID, jobs.UpdateInput{JobType: &bad}); !models.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument for bad job type, got %v", err)
	}
	zero := 0
	if _, err := repo.Update(ctx, job.ID, jobs.UpdateInput{Openings: &zero}); !models.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument for zero openings, got %v", err)
	}
}

func TestDelete_RemovesAndInvalidates(t *testing.T) {
	repo, _ := newRepo()
	ctx := context.Background()

	job, err := repo.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.GetByID(ctx, job.ID); err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := repo.Delete(ctx, job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, job.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestGetByID_MalformedID(t *testing.T) {
	repo, _ := newRepo()
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !models.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument for malformed id, got %v", err)
	}
}

func TestGetByID_Absent(t *testing.T) {
	repo, _ := newRepo()
	if _, err := repo.GetByID(context.Background(), "67f9a4a5-51a4-4b7e-9e43-0d7c2f6b8a11"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
