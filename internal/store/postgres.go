// Package store persists jobs, users, and applications. Postgres is the
// production backend; Memory mirrors its behavior for tests and cache-less
// local development. The unique index on applications (user_id, job_id) is
// the authoritative duplicate-application guard.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"job-board/internal/models"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("store: duplicate key")

const uniqueViolation = "23505"

// Postgres wraps pgxpool for persistence.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a pooled connection to Postgres.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// --- users ---

// CreateUser inserts a user row. Duplicate emails yield ErrDuplicate.
func (s *Postgres) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = models.RoleCandidate
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, role, email, name, company, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, u.ID, u.Role, u.Email, u.Name, u.Company, u.PasswordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser fetches a user by id.
func (s *Postgres) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, role, email, name, company, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id)

	var u models.User
	err := row.Scan(&u.ID, &u.Role, &u.Email, &u.Name, &u.Company, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// --- jobs ---

// CreateJob inserts a job row, assigning id and timestamps.
func (s *Postgres) CreateJob(ctx context.Context, j models.Job) (models.Job, error) {
	j.ID = uuid.New().String()
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	tagsJSON, err := marshalTags(j.Tags)
	if err != nil {
		return models.Job{}, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO jobs (id, title, company, job_type, location, description, tags, openings, application_ends, posted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, j.ID, j.Title, j.Company, j.JobType, j.Location, j.Description, tagsJSON, j.Openings, j.ApplicationEnds, emptyToNil(j.PostedBy), now)
	if err != nil {
		return models.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

const jobColumns = `j.id, j.title, j.company, j.job_type, j.location, j.description, j.tags, j.openings, j.application_ends, j.posted_by, j.created_at, j.updated_at`

// GetJob fetches a job by id.
func (s *Postgres) GetJob(ctx context.Context, id string) (models.Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, models.ErrNotFound
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("scan job: %w", err)
	}
	return job, nil
}

// ListJobs returns every job, newest first, with the poster resolved to a
// minimal projection.
func (s *Postgres) ListJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`, u.id, u.name, u.email
		FROM jobs j
		LEFT JOIN users u ON u.id = j.posted_by
		ORDER BY j.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var (
			job      models.Job
			tagsJSON []byte
			openings pgtype.Int4
			ends     pgtype.Timestamptz
			postedBy pgtype.Text
			uID      pgtype.Text
			uName    pgtype.Text
			uEmail   pgtype.Text
		)
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.JobType, &job.Location, &job.Description,
			&tagsJSON, &openings, &ends, &postedBy, &job.CreatedAt, &job.UpdatedAt,
			&uID, &uName, &uEmail); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		if err := applyJobNullables(&job, tagsJSON, openings, ends, postedBy); err != nil {
			return nil, err
		}
		if uID.Valid {
			job.Poster = &models.UserSummary{ID: uID.String, Name: uName.String, Email: uEmail.String}
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob overwrites the mutable columns of a job row.
func (s *Postgres) UpdateJob(ctx context.Context, j models.Job) (models.Job, error) {
	tagsJSON, err := marshalTags(j.Tags)
	if err != nil {
		return models.Job{}, err
	}
	j.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET title = $2, company = $3, job_type = $4, location = $5, description = $6,
		    tags = $7, openings = $8, application_ends = $9, updated_at = $10
		WHERE id = $1
	`, j.ID, j.Title, j.Company, j.JobType, j.Location, j.Description, tagsJSON, j.Openings, j.ApplicationEnds, j.UpdatedAt)
	if err != nil {
		return models.Job{}, fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Job{}, models.ErrNotFound
	}
	return j, nil
}

// DeleteJob removes a job row.
func (s *Postgres) DeleteJob(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- applications ---

// CreateApplication inserts an application in the Applied state. A concurrent
// or repeated insert for the same (user, job) pair trips the unique index and
// returns ErrDuplicate; callers treat their own pre-check as an optimization.
func (s *Postgres) CreateApplication(ctx context.Context, userID, jobID string) (models.Application, error) {
	app := models.Application{
		ID:     uuid.New().String(),
		UserID: userID,
		JobID:  jobID,
		Status: models.StatusApplied,
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO applications (id, user_id, job_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, app.ID, app.UserID, app.JobID, app.Status, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Application{}, ErrDuplicate
		}
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

const appColumns = `a.id, a.user_id, a.job_id, a.status, a.resume_key, a.created_at, a.updated_at`

// FindApplication looks up the application for a (user, job) pair.
func (s *Postgres) FindApplication(ctx context.Context, userID, jobID string) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM applications a WHERE a.user_id = $1 AND a.job_id = $2`, userID, jobID)
	return scanApplication(row)
}

// GetApplication fetches an application by id.
func (s *Postgres) GetApplication(ctx context.Context, id string) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM applications a WHERE a.id = $1`, id)
	return scanApplication(row)
}

// ListApplications returns every application, newest first.
func (s *Postgres) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+appColumns+` FROM applications a ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ListApplicationsByUser returns a user's applications, newest first, each
// with a bounded projection of the job.
func (s *Postgres) ListApplicationsByUser(ctx context.Context, userID string) ([]models.ApplicationWithJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appColumns+`, j.id, j.title, j.company, j.job_type, j.location
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query applications by user: %w", err)
	}
	defer rows.Close()

	out := []models.ApplicationWithJob{}
	for rows.Next() {
		var entry models.ApplicationWithJob
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.JobID, &entry.Status, &entry.ResumeKey,
			&entry.CreatedAt, &entry.UpdatedAt,
			&entry.Job.ID, &entry.Job.Title, &entry.Job.Company, &entry.Job.JobType, &entry.Job.Location); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// ListApplicationsByJob returns a job's applications, newest first, each with
// a bounded projection of the applicant.
func (s *Postgres) ListApplicationsByJob(ctx context.Context, jobID string) ([]models.ApplicationWithUser, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+appColumns+`, u.id, u.name, u.email
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query applications by job: %w", err)
	}
	defer rows.Close()

	out := []models.ApplicationWithUser{}
	for rows.Next() {
		var entry models.ApplicationWithUser
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.JobID, &entry.Status, &entry.ResumeKey,
			&entry.CreatedAt, &entry.UpdatedAt,
			&entry.User.ID, &entry.User.Name, &entry.User.Email); err != nil {
			return nil, fmt.Errorf("scan application row: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// UpdateApplicationStatus overwrites the status of an application.
func (s *Postgres) UpdateApplicationStatus(ctx context.Context, id, status string) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE applications SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, job_id, status, resume_key, created_at, updated_at
	`, id, status)
	return scanApplication(row)
}

// SetApplicationResume records the blob key of an uploaded resume.
func (s *Postgres) SetApplicationResume(ctx context.Context, id, key string) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE applications SET resume_key = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, job_id, status, resume_key, created_at, updated_at
	`, id, key)
	return scanApplication(row)
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	err := row.Scan(&app.ID, &app.UserID, &app.JobID, &app.Status, &app.ResumeKey, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Application{}, models.ErrNotFound
	}
	if err != nil {
		return models.Application{}, fmt.Errorf("scan application: %w", err)
	}
	return app, nil
}

func scanJob(row rowScanner) (models.Job, error) {
	var (
		job      models.Job
		tagsJSON []byte
		openings pgtype.Int4
		ends     pgtype.Timestamptz
		postedBy pgtype.Text
	)
	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.JobType, &job.Location, &job.Description,
		&tagsJSON, &openings, &ends, &postedBy, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return models.Job{}, err
	}
	if err := applyJobNullables(&job, tagsJSON, openings, ends, postedBy); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

func applyJobNullables(job *models.Job, tagsJSON []byte, openings pgtype.Int4, ends pgtype.Timestamptz, postedBy pgtype.Text) error {
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &job.Tags); err != nil {
			return fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if len(job.Tags) == 0 {
		job.Tags = nil
	}
	if openings.Valid {
		n := int(openings.Int32)
		job.Openings = &n
	}
	if ends.Valid {
		t := ends.Time
		job.ApplicationEnds = &t
	}
	if postedBy.Valid {
		job.PostedBy = postedBy.String
	}
	return nil
}

func marshalTags(tags map[string]string) ([]byte, error) {
	if tags == nil {
		tags = map[string]string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func emptyToNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
