package domain

import (
	"fmt"
	"time"
)

var (
	// ErrApplicationNotFound is returned when looking up a non-existent application.
	ErrApplicationNotFound = fmt.Errorf("%w: application not found", ErrNotFound)
	// ErrAlreadyApplied is returned when a job seeker applies twice to the same job.
	ErrAlreadyApplied = fmt.Errorf("%w: already applied to this job", ErrConflict)
	// ErrNoJobSeekerProfile is returned when a job seeker applies before creating a profile.
	ErrNoJobSeekerProfile = fmt.Errorf("%w: create job seeker profile first", ErrPrecondition)
	// ErrInvalidApplicationStatus is returned for a status outside the known set.
	ErrInvalidApplicationStatus = fmt.Errorf("%w: invalid status", ErrValidation)
)

// ApplicationStatus is the lifecycle state of an Application.
// Any status may follow any other; only membership in the set is checked.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusReviewing   ApplicationStatus = "reviewing"
	ApplicationStatusInterviewed ApplicationStatus = "interviewed"
	ApplicationStatusOffered     ApplicationStatus = "offered"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusAccepted    ApplicationStatus = "accepted"
)

//nolint:gochecknoglobals
var applicationStatuses = map[ApplicationStatus]struct{}{
	ApplicationStatusPending:     {},
	ApplicationStatusReviewing:   {},
	ApplicationStatusInterviewed: {},
	ApplicationStatusOffered:     {},
	ApplicationStatusRejected:    {},
	ApplicationStatusAccepted:    {},
}

// Valid reports whether s is one of the six known statuses.
func (s ApplicationStatus) Valid() bool {
	_, ok := applicationStatuses[s]

	return ok
}

// ParseApplicationStatus converts s into an ApplicationStatus.
// Returns ErrInvalidApplicationStatus if s is not a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidApplicationStatus, s)
	}

	return status, nil
}

// Application is a job seeker's application to a job. At most one exists per
// (JobID, JobSeekerID) pair.
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"jobId"`
	JobSeekerID int64             `json:"jobSeekerId"`
	Status      ApplicationStatus `json:"status"`
	CoverLetter *string           `json:"coverLetter"`
	AppliedAt   time.Time         `json:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ApplicationJobSummary is the job view nested in a job seeker's application listing.
type ApplicationJobSummary struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Type     string          `json:"type"`
	Salary   *string         `json:"salary"`
	Company  *CompanySummary `json:"company"`
}

// JobSummary is the job view nested in an employer's application listing.
type JobSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

// JobSeekerApplication is an application as listed for the job seeker who sent it.
// Job is nil when the job has been deleted.
type JobSeekerApplication struct {
	Application
	Job *ApplicationJobSummary `json:"job"`
}

// EmployerApplication is an application as listed for the employer who received it.
type EmployerApplication struct {
	Application
	Job       *JobSummary       `json:"job"`
	JobSeeker *JobSeekerSummary `json:"jobSeeker"`
}
