package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"job-board/internal/models"
)

func seed(t *testing.T) (*Memory, models.User, models.Job) {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()

	u, err := m.CreateUser(ctx, models.User{Email: "a@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	j, err := m.CreateJob(ctx, models.Job{Title: "Engineer", Company: "Acme", JobType: models.JobTypeFullTime})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return m, u, j
}

func TestMemory_ApplicationUniqueness(t *testing.T) {
	m, u, j := seed(t)
	ctx := context.Background()

	if _, err := m.CreateApplication(ctx, u.ID, j.ID); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := m.CreateApplication(ctx, u.ID, j.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemory_DuplicateEmail(t *testing.T) {
	m, _, _ := seed(t)
	if _, err := m.CreateUser(context.Background(), models.User{Email: "a@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
}

func TestMemory_FindApplication(t *testing.T) {
	m, u, j := seed(t)
	ctx := context.Background()

	if _, err := m.FindApplication(ctx, u.ID, j.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected NotFound before insert, got %v", err)
	}
	created, err := m.CreateApplication(ctx, u.ID, j.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	found, err := m.FindApplication(ctx, u.ID, j.ID)
	if err != nil || found.ID != created.ID {
		t.Fatalf("expected to find %s, got %+v err=%v", created.ID, found, err)
	}
}

func TestMemory_ListApplicationsNewestFirst(t *testing.T) {
	m, u, j := seed(t)
	ctx := context.Background()

	j2, err := m.CreateJob(ctx, models.Job{Title: "Analyst", Company: "Beta", JobType: models.JobTypePartTime})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	first, err := m.CreateApplication(ctx, u.ID, j.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := m.CreateApplication(ctx, u.ID, j2.ID)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	apps, err := m.ListApplications(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 || apps[0].ID != second.ID || apps[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", apps)
	}
}

func TestMemory_DeleteJobCascades(t *testing.T) {
	m, u, j := seed(t)
	ctx := context.Background()

	if _, err := m.CreateApplication(ctx, u.ID, j.ID); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	apps, err := m.ListApplications(ctx)
	if err != nil || len(apps) != 0 {
		t.Fatalf("expected applications removed with job, got %+v err=%v", apps, err)
	}
}
