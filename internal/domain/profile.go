package domain

import (
	"encoding/json"
	"fmt"
)

var (
	// ErrProfileAlreadyExists is returned when a user already owns a profile of the requested kind.
	ErrProfileAlreadyExists = fmt.Errorf("%w: profile already exists", ErrConflict)
	// ErrProfileNotFound is returned when looking up a non-existent profile.
	ErrProfileNotFound = fmt.Errorf("%w: profile not found", ErrNotFound)
	// ErrCompanyNotFound is returned when a job references a company that no longer exists.
	ErrCompanyNotFound = fmt.Errorf("%w: company not found", ErrNotFound)
)

// JobSeekerProfile is the job seeker extension of a User. One per user.
type JobSeekerProfile struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Title      *string         `json:"title"`
	Bio        *string         `json:"bio"`
	Location   *string         `json:"location"`
	Skills     []string        `json:"skills"`
	Experience json.RawMessage `json:"experience"`
	Education  json.RawMessage `json:"education"`
	ResumeURL  *string         `json:"resumeUrl"`
	AvatarURL  *string         `json:"avatarUrl"`
}

// DisplayName returns the name shown to conversation partners.
func (p JobSeekerProfile) DisplayName() string {
	return p.FirstName + " " + p.LastName
}

// Summary returns the short form embedded in employer application listings.
func (p JobSeekerProfile) Summary() JobSeekerSummary {
	return JobSeekerSummary{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Title:     p.Title,
		AvatarURL: p.AvatarURL,
	}
}

// JobSeekerProfilePatch holds the fields to change on a JobSeekerProfile.
// Nil fields are left untouched.
type JobSeekerProfilePatch struct {
	FirstName  *string         `json:"firstName" validate:"omitnil,min=1,max=100"`
	LastName   *string         `json:"lastName" validate:"omitnil,min=1,max=100"`
	Title      *string         `json:"title" validate:"omitempty,max=200"`
	Bio        *string         `json:"bio" validate:"omitempty,max=5000"`
	Location   *string         `json:"location" validate:"omitempty,max=200"`
	Skills     *[]string       `json:"skills" validate:"omitempty,dive,min=1,max=100"`
	Experience json.RawMessage `json:"experience"`
	Education  json.RawMessage `json:"education"`
	ResumeURL  *string         `json:"resumeUrl" validate:"omitempty,max=2048"`
	AvatarURL  *string         `json:"avatarUrl" validate:"omitempty,max=2048"`
}

// Apply copies the set fields of the patch onto profile.
func (p JobSeekerProfilePatch) Apply(profile *JobSeekerProfile) {
	setIfNotNil(&profile.FirstName, p.FirstName)
	setIfNotNil(&profile.LastName, p.LastName)
	setOptional(&profile.Title, p.Title)
	setOptional(&profile.Bio, p.Bio)
	setOptional(&profile.Location, p.Location)
	setOptional(&profile.ResumeURL, p.ResumeURL)
	setOptional(&profile.AvatarURL, p.AvatarURL)

	if p.Skills != nil {
		profile.Skills = append([]string(nil), (*p.Skills)...)
	}

	if p.Experience != nil {
		profile.Experience = append(json.RawMessage(nil), p.Experience...)
	}

	if p.Education != nil {
		profile.Education = append(json.RawMessage(nil), p.Education...)
	}
}

// CompanyProfile is the employer extension of a User. One per user.
type CompanyProfile struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	LogoURL     *string `json:"logoUrl"`
	Size        *string `json:"size"`
}

// Summary returns the short form joined onto job listings.
func (c CompanyProfile) Summary() CompanySummary {
	return CompanySummary{
		ID:      c.ID,
		Name:    c.Name,
		LogoURL: c.LogoURL,
	}
}

// CompanyProfilePatch holds the fields to change on a CompanyProfile.
// Nil fields are left untouched.
type CompanyProfilePatch struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Industry    *string `json:"industry" validate:"omitempty,max=200"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Website     *string `json:"website" validate:"omitempty,max=2048"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,max=2048"`
	Size        *string `json:"size" validate:"omitempty,max=50"`
}

// Apply copies the set fields of the patch onto profile.
func (p CompanyProfilePatch) Apply(profile *CompanyProfile) {
	setIfNotNil(&profile.Name, p.Name)
	setOptional(&profile.Description, p.Description)
	setOptional(&profile.Industry, p.Industry)
	setOptional(&profile.Location, p.Location)
	setOptional(&profile.Website, p.Website)
	setOptional(&profile.LogoURL, p.LogoURL)
	setOptional(&profile.Size, p.Size)
}

// CompanySummary is the minimal company view {id, name, logoUrl}.
type CompanySummary struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl"`
}

// JobSeekerSummary is the minimal job seeker view shown to employers.
type JobSeekerSummary struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Title     *string `json:"title"`
	AvatarURL *string `json:"avatarUrl"`
}

func setIfNotNil[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setOptional[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
