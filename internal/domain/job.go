package domain

import (
	"fmt"
	"strings"
	"time"
)

var (
	// ErrJobNotFound is returned when looking up a non-existent job.
	ErrJobNotFound = fmt.Errorf("%w: job not found", ErrNotFound)
	// ErrNoCompanyProfile is returned when an employer acts on jobs before creating a company profile.
	ErrNoCompanyProfile = fmt.Errorf("%w: create company profile first", ErrPrecondition)
)

// Job is a posting owned by a CompanyProfile.
type Job struct {
	ID           int64      `json:"id"`
	CompanyID    int64      `json:"companyId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Type         string     `json:"type"`
	Salary       *string    `json:"salary"`
	Requirements *string    `json:"requirements"`
	Benefits     *string    `json:"benefits"`
	Skills       []string   `json:"skills"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	IsActive     bool       `json:"isActive"`
}

// JobPatch holds the fields to change on a Job. Nil fields are left untouched.
// The owning company cannot be changed.
type JobPatch struct {
	Title        *string    `json:"title" validate:"omitnil,min=1,max=200"`
	Description  *string    `json:"description" validate:"omitnil,min=1"`
	Location     *string    `json:"location" validate:"omitnil,min=1,max=200"`
	Type         *string    `json:"type" validate:"omitnil,min=1,max=50"`
	Salary       *string    `json:"salary" validate:"omitempty,max=100"`
	Requirements *string    `json:"requirements"`
	Benefits     *string    `json:"benefits"`
	Skills       *[]string  `json:"skills" validate:"omitempty,dive,min=1,max=100"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	IsActive     *bool      `json:"isActive"`
}

// Apply copies the set fields of the patch onto job.
func (p JobPatch) Apply(job *Job) {
	setIfNotNil(&job.Title, p.Title)
	setIfNotNil(&job.Description, p.Description)
	setIfNotNil(&job.Location, p.Location)
	setIfNotNil(&job.Type, p.Type)
	setOptional(&job.Salary, p.Salary)
	setOptional(&job.Requirements, p.Requirements)
	setOptional(&job.Benefits, p.Benefits)
	setOptional(&job.ExpiresAt, p.ExpiresAt)
	setIfNotNil(&job.IsActive, p.IsActive)

	if p.Skills != nil {
		job.Skills = append([]string(nil), (*p.Skills)...)
	}
}

// JobFilter narrows a job listing. Zero-valued fields impose no constraint;
// set fields compose with logical AND.
type JobFilter struct {
	// Query matches title or description, case-insensitively, as a substring.
	Query string
	// Location matches the job location, case-insensitively, as a substring.
	Location string
	// Type matches the job type exactly.
	Type string
	// CompanyID matches the owning company exactly.
	CompanyID int64
}

// Matches reports whether job satisfies every set constraint of the filter.
func (f JobFilter) Matches(job Job) bool {
	if f.Query != "" {
		query := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(job.Title), query) &&
			!strings.Contains(strings.ToLower(job.Description), query) {
			return false
		}
	}

	if f.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(f.Location)) {
		return false
	}

	if f.Type != "" && job.Type != f.Type {
		return false
	}

	if f.CompanyID != 0 && job.CompanyID != f.CompanyID {
		return false
	}

	return true
}

// JobWithCompany is a search result: the job plus a soft-joined company summary.
type JobWithCompany struct {
	Job
	Company *CompanySummary `json:"company"`
}

// JobDetail is a job with its full company and the number of applications received.
type JobDetail struct {
	Job
	Company          *CompanyProfile `json:"company"`
	ApplicationCount int             `json:"applicationCount"`
}
