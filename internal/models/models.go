package models

import (
	"time"
)

// JobType enumerates the accepted employment types for a posting.
const (
	JobTypeFullTime   = "Full Time"
	JobTypePartTime   = "Part Time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"
	JobTypeRemote     = "Remote"
)

// JobTypes lists every valid job type.
var JobTypes = []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

// ValidJobType reports whether t is a member of the job type enum.
func ValidJobType(t string) bool {
	for _, v := range JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ApplicationStatus values. Offered and Rejected are terminal in the expected
// lifecycle, but SetStatus does not enforce ordering.
const (
	StatusApplied      = "Applied"
	StatusInterviewing = "Interviewing"
	StatusOffered      = "Offered"
	StatusRejected     = "Rejected"
)

// ApplicationStatuses lists every valid application status.
var ApplicationStatuses = []string{StatusApplied, StatusInterviewing, StatusOffered, StatusRejected}

// ValidApplicationStatus reports whether s is a member of the status enum.
func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// User roles.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// Job is a posting persisted in the record store. Tags are stored as a
// string-keyed map with key == value so the store can index individual tags.
type Job struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Company         string            `json:"company"`
	JobType         string            `json:"job_type"`
	Location        string            `json:"location"`
	Description     string            `json:"description"`
	Tags            map[string]string `json:"tags,omitempty"`
	Openings        *int              `json:"openings,omitempty"`
	ApplicationEnds *time.Time        `json:"application_ends,omitempty"`
	PostedBy        string            `json:"posted_by,omitempty"`
	Poster          *UserSummary      `json:"poster,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// User is owned by the auth subsystem; the core only resolves it by id.
type User struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Company      string    `json:"company,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Application links a user to a job. At most one row may exist per
// (user, job) pair; the record store enforces this with a unique index.
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	ResumeKey string    `json:"resume_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the bounded projection of a user attached to listings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// JobSummary is the bounded projection of a job attached to a candidate's
// application listing.
type JobSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	JobType  string `json:"job_type"`
	Location string `json:"location"`
}

// ApplicationWithJob is the candidate-facing listing entry.
type ApplicationWithJob struct {
	Application
	Job JobSummary `json:"job"`
}

// ApplicationWithUser is the recruiter-facing listing entry.
type ApplicationWithUser struct {
	Application
	User UserSummary `json:"user"`
}

// Summary returns the bounded projection of a job.
func (j Job) Summary() JobSummary {
	return JobSummary{ID: j.ID, Title: j.Title, Company: j.Company, JobType: j.JobType, Location: j.Location}
}

// Summary returns the bounded projection of a user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
