package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"job-board/internal/models"
)

// Memory is an in-memory store mirroring the Postgres behavior, used by tests
// and cache-less local development. The (user, job) uniqueness check happens
// under the mutex, so concurrent duplicate applies resolve to exactly one
// insert, matching the database unique index.
type Memory struct {
	mu    sync.Mutex
	users map[string]models.User
	jobs  map[string]models.Job
	apps  map[string]models.Application
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]models.User),
		jobs:  make(map[string]models.Job),
		apps:  make(map[string]models.Application),
	}
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return models.User{}, ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = models.RoleCandidate
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) GetUser(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

// --- jobs ---

func (m *Memory) CreateJob(_ context.Context, j models.Job) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j.ID = uuid.New().String()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	m.jobs[j.ID] = j
	return j, nil
}

func (m *Memory) GetJob(_ context.Context, id string) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return models.Job{}, models.ErrNotFound
	}
	return j, nil
}

func (m *Memory) ListJobs(_ context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]models.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if u, ok := m.users[j.PostedBy]; ok {
			summary := u.Summary()
			j.Poster = &summary
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	return jobs, nil
}

func (m *Memory) UpdateJob(_ context.Context, j models.Job) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.jobs[j.ID]
	if !ok {
		return models.Job{}, models.ErrNotFound
	}
	j.CreatedAt = existing.CreatedAt
	j.PostedBy = existing.PostedBy
	j.UpdatedAt = time.Now().UTC()
	m.jobs[j.ID] = j
	return j, nil
}

func (m *Memory) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.jobs, id)
	for appID, app := range m.apps {
		if app.JobID == id {
			delete(m.apps, appID)
		}
	}
	return nil
}

// --- applications ---

func (m *Memory) CreateApplication(_ context.Context, userID, jobID string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, app := range m.apps {
		if app.UserID == userID && app.JobID == jobID {
			return models.Application{}, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	app := models.Application{
		ID:        uuid.New().String(),
		UserID:    userID,
		JobID:     jobID,
		Status:    models.StatusApplied,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.apps[app.ID] = app
	return app, nil
}

func (m *Memory) FindApplication(_ context.Context, userID, jobID string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, app := range m.apps {
		if app.UserID == userID && app.JobID == jobID {
			return app, nil
		}
	}
	return models.Application{}, models.ErrNotFound
}

func (m *Memory) GetApplication(_ context.Context, id string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, models.ErrNotFound
	}
	return app, nil
}

func (m *Memory) ListApplications(_ context.Context) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := make([]models.Application, 0, len(m.apps))
	for _, app := range m.apps {
		apps = append(apps, app)
	}
	sortApplications(apps)
	return apps, nil
}

func (m *Memory) ListApplicationsByUser(_ context.Context, userID string) ([]models.ApplicationWithJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []models.Application{}
	for _, app := range m.apps {
		if app.UserID == userID {
			matched = append(matched, app)
		}
	}
	sortApplications(matched)

	out := make([]models.ApplicationWithJob, 0, len(matched))
	for _, app := range matched {
		entry := models.ApplicationWithJob{Application: app}
		if j, ok := m.jobs[app.JobID]; ok {
			entry.Job = j.Summary()
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *Memory) ListApplicationsByJob(_ context.Context, jobID string) ([]models.ApplicationWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []models.Application{}
	for _, app := range m.apps {
		if app.JobID == jobID {
			matched = append(matched, app)
		}
	}
	sortApplications(matched)

	out := make([]models.ApplicationWithUser, 0, len(matched))
	for _, app := range matched {
		entry := models.ApplicationWithUser{Application: app}
		if u, ok := m.users[app.UserID]; ok {
			entry.User = u.Summary()
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *Memory) UpdateApplicationStatus(_ context.Context, id, status string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, models.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	m.apps[id] = app
	return app, nil
}

func (m *Memory) SetApplicationResume(_ context.Context, id, key string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, models.ErrNotFound
	}
	app.ResumeKey = key
	app.UpdatedAt = time.Now().UTC()
	m.apps[id] = app
	return app, nil
}

func sortApplications(apps []models.Application) {
	sort.Slice(apps, func(i, k int) bool {
		if apps[i].CreatedAt.Equal(apps[k].CreatedAt) {
			return apps[i].ID < apps[k].ID
		}
		return apps[i].CreatedAt.After(apps[k].CreatedAt)
	})
}
