package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
)

// Timestamps are stored as unix microseconds, which both engines keep exactly.

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

func toMicrosPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}

	us := toMicros(*t)

	return &us
}

func fromMicrosPtr(us *int64) *time.Time {
	if us == nil {
		return nil
	}

	t := fromMicros(*us)

	return &t
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}

	buf, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}

	return string(buf), nil
}

func decodeSkills(raw string) ([]string, error) {
	skills := []string{}

	if raw == "" {
		return skills, nil
	}

	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}

	return skills, nil
}

func encodeRaw(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}

	s := string(raw)

	return &s
}

func decodeRaw(s *string) json.RawMessage {
	if s == nil {
		return nil
	}

	return json.RawMessage(*s)
}

const userColumns = `id, username, email, password_hash, user_type, created_at`

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash []byte `db:"password_hash"`
	UserType     string `db:"user_type"`
	CreatedAt    int64  `db:"created_at"`
}

func (row userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		UserType:     domain.UserType(row.UserType),
		CreatedAt:    fromMicros(row.CreatedAt),
	}
}

const jobSeekerProfileColumns = `id, user_id, first_name, last_name, title, bio, location, skills, ` +
	`experience, education, resume_url, avatar_url`

type jobSeekerProfileRow struct {
	ID         int64   `db:"id"`
	UserID     int64   `db:"user_id"`
	FirstName  string  `db:"first_name"`
	LastName   string  `db:"last_name"`
	Title      *string `db:"title"`
	Bio        *string `db:"bio"`
	Location   *string `db:"location"`
	Skills     string  `db:"skills"`
	Experience *string `db:"experience"`
	Education  *string `db:"education"`
	ResumeURL  *string `db:"resume_url"`
	AvatarURL  *string `db:"avatar_url"`
}

func newJobSeekerProfileRow(p domain.JobSeekerProfile) (jobSeekerProfileRow, error) {
	skills, err := encodeSkills(p.Skills)
	if err != nil {
		return jobSeekerProfileRow{}, err
	}

	return jobSeekerProfileRow{
		ID:         p.ID,
		UserID:     p.UserID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Title:      p.Title,
		Bio:        p.Bio,
		Location:   p.Location,
		Skills:     skills,
		Experience: encodeRaw(p.Experience),
		Education:  encodeRaw(p.Education),
		ResumeURL:  p.ResumeURL,
		AvatarURL:  p.AvatarURL,
	}, nil
}

func (row jobSeekerProfileRow) toDomain() (*domain.JobSeekerProfile, error) {
	skills, err := decodeSkills(row.Skills)
	if err != nil {
		return nil, err
	}

	return &domain.JobSeekerProfile{
		ID:         row.ID,
		UserID:     row.UserID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Title:      row.Title,
		Bio:        row.Bio,
		Location:   row.Location,
		Skills:     skills,
		Experience: decodeRaw(row.Experience),
		Education:  decodeRaw(row.Education),
		ResumeURL:  row.ResumeURL,
		AvatarURL:  row.AvatarURL,
	}, nil
}

func (row jobSeekerProfileRow) values() []any {
	return []any{
		row.FirstName, row.LastName, row.Title, row.Bio, row.Location, row.Skills,
		row.Experience, row.Education, row.ResumeURL, row.AvatarURL,
	}
}

const companyProfileColumns = `id, user_id, name, description, industry, location, website, logo_url, size`

type companyProfileRow struct {
	ID          int64   `db:"id"`
	UserID      int64   `db:"user_id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Industry    *string `db:"industry"`
	Location    *string `db:"location"`
	Website     *string `db:"website"`
	LogoURL     *string `db:"logo_url"`
	Size        *string `db:"size"`
}

func newCompanyProfileRow(p domain.CompanyProfile) companyProfileRow {
	return companyProfileRow(p)
}

func (row companyProfileRow) toDomain() *domain.CompanyProfile {
	p := domain.CompanyProfile(row)

	return &p
}

func (row companyProfileRow) values() []any {
	return []any{row.Name, row.Description, row.Industry, row.Location, row.Website, row.LogoURL, row.Size}
}

const jobColumns = `id, company_id, title, description, location, type, salary, requirements, benefits, ` +
	`skills, created_at, expires_at, is_active`

type jobRow struct {
	ID           int64   `db:"id"`
	CompanyID    int64   `db:"company_id"`
	Title        string  `db:"title"`
	Description  string  `db:"description"`
	Location     string  `db:"location"`
	Type         string  `db:"type"`
	Salary       *string `db:"salary"`
	Requirements *string `db:"requirements"`
	Benefits     *string `db:"benefits"`
	Skills       string  `db:"skills"`
	CreatedAt    int64   `db:"created_at"`
	ExpiresAt    *int64  `db:"expires_at"`
	IsActive     bool    `db:"is_active"`
}

func newJobRow(j domain.Job) (jobRow, error) {
	skills, err := encodeSkills(j.Skills)
	if err != nil {
		return jobRow{}, err
	}

	return jobRow{
		ID:           j.ID,
		CompanyID:    j.CompanyID,
		Title:        j.Title,
		Description:  j.Description,
		Location:     j.Location,
		Type:         j.Type,
		Salary:       j.Salary,
		Requirements: j.Requirements,
		Benefits:     j.Benefits,
		Skills:       skills,
		CreatedAt:    toMicros(j.CreatedAt),
		ExpiresAt:    toMicrosPtr(j.ExpiresAt),
		IsActive:     j.IsActive,
	}, nil
}

func (row jobRow) toDomain() (*domain.Job, error) {
	skills, err := decodeSkills(row.Skills)
	if err != nil {
		return nil, err
	}

	return &domain.Job{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		Title:        row.Title,
		Description:  row.Description,
		Location:     row.Location,
		Type:         row.Type,
		Salary:       row.Salary,
		Requirements: row.Requirements,
		Benefits:     row.Benefits,
		Skills:       skills,
		CreatedAt:    fromMicros(row.CreatedAt),
		ExpiresAt:    fromMicrosPtr(row.ExpiresAt),
		IsActive:     row.IsActive,
	}, nil
}

func (row jobRow) values() []any {
	return []any{
		row.Title, row.Description, row.Location, row.Type, row.Salary, row.Requirements,
		row.Benefits, row.Skills, row.ExpiresAt, row.IsActive,
	}
}

const applicationColumns = `id, job_id, job_seeker_id, status, cover_letter, applied_at, updated_at`

type applicationRow struct {
	ID          int64   `db:"id"`
	JobID       int64   `db:"job_id"`
	JobSeekerID int64   `db:"job_seeker_id"`
	Status      string  `db:"status"`
	CoverLetter *string `db:"cover_letter"`
	AppliedAt   int64   `db:"applied_at"`
	UpdatedAt   int64   `db:"updated_at"`
}

func (row applicationRow) toDomain() domain.Application {
	return domain.Application{
		ID:          row.ID,
		JobID:       row.JobID,
		JobSeekerID: row.JobSeekerID,
		Status:      domain.ApplicationStatus(row.Status),
		CoverLetter: row.CoverLetter,
		AppliedAt:   fromMicros(row.AppliedAt),
		UpdatedAt:   fromMicros(row.UpdatedAt),
	}
}

const messageColumns = `id, from_user_id, to_user_id, related_to_application_id, content, is_read, sent_at`

type messageRow struct {
	ID                     int64  `db:"id"`
	FromUserID             int64  `db:"from_user_id"`
	ToUserID               int64  `db:"to_user_id"`
	RelatedToApplicationID *int64 `db:"related_to_application_id"`
	Content                string `db:"content"`
	IsRead                 bool   `db:"is_read"`
	SentAt                 int64  `db:"sent_at"`
}

func (row messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:                     row.ID,
		FromUserID:             row.FromUserID,
		ToUserID:               row.ToUserID,
		RelatedToApplicationID: row.RelatedToApplicationID,
		Content:                row.Content,
		IsRead:                 row.IsRead,
		SentAt:                 fromMicros(row.SentAt),
	}
}
