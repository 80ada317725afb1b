// Package store persists the job board entities. It offers an in-memory
// implementation for tests and development and an SQL implementation for
// sqlite and postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
)

// ErrUnknownDriver is returned for a store driver other than memory, sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown store driver")

// UserRepository stores accounts. Usernames and emails are unique.
type UserRepository interface {
	// CreateUser assigns an id and persists the user.
	// Returns domain.ErrUserAlreadyExists if the username or email is taken.
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, bool, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)
}

// JobSeekerProfileRepository stores job seeker profiles, at most one per user.
type JobSeekerProfileRepository interface {
	// CreateJobSeekerProfile returns domain.ErrProfileAlreadyExists if the
	// user already has one.
	CreateJobSeekerProfile(ctx context.Context, profile domain.JobSeekerProfile) (*domain.JobSeekerProfile, error)
	GetJobSeekerProfile(ctx context.Context, id int64) (*domain.JobSeekerProfile, bool, error)
	GetJobSeekerProfileByUserID(ctx context.Context, userID int64) (*domain.JobSeekerProfile, bool, error)
	// UpdateJobSeekerProfile returns domain.ErrProfileNotFound if id is absent.
	UpdateJobSeekerProfile(
		ctx context.Context,
		id int64,
		patch domain.JobSeekerProfilePatch,
	) (*domain.JobSeekerProfile, error)
}

// CompanyProfileRepository stores company profiles, at most one per user.
type CompanyProfileRepository interface {
	CreateCompanyProfile(ctx context.Context, profile domain.CompanyProfile) (*domain.CompanyProfile, error)
	GetCompanyProfile(ctx context.Context, id int64) (*domain.CompanyProfile, bool, error)
	GetCompanyProfileByUserID(ctx context.Context, userID int64) (*domain.CompanyProfile, bool, error)
	ListCompanyProfiles(ctx context.Context) ([]domain.CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, id int64, patch domain.CompanyProfilePatch) (*domain.CompanyProfile, error)
}

// JobRepository stores job postings.
type JobRepository interface {
	CreateJob(ctx context.Context, job domain.Job) (*domain.Job, error)
	GetJob(ctx context.Context, id int64) (*domain.Job, bool, error)
	// ListJobs returns the jobs matching filter ordered by id.
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error)
	// UpdateJob returns domain.ErrJobNotFound if id is absent.
	UpdateJob(ctx context.Context, id int64, patch domain.JobPatch) (*domain.Job, error)
	// DeleteJob reports whether a job existed and was removed.
	DeleteJob(ctx context.Context, id int64) (bool, error)
}

// ApplicationRepository stores applications, at most one per (job, job seeker).
type ApplicationRepository interface {
	// CreateApplication returns domain.ErrAlreadyApplied if the pair exists.
	CreateApplication(ctx context.Context, application domain.Application) (*domain.Application, error)
	GetApplication(ctx context.Context, id int64) (*domain.Application, bool, error)
	ListApplicationsByJobSeeker(ctx context.Context, jobSeekerID int64) ([]domain.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID int64) ([]domain.Application, error)
	ListApplicationsByJobs(ctx context.Context, jobIDs []int64) ([]domain.Application, error)
	CountApplicationsByJob(ctx context.Context, jobID int64) (int, error)
	// UpdateApplicationStatus returns domain.ErrApplicationNotFound if id is absent.
	UpdateApplicationStatus(
		ctx context.Context,
		id int64,
		status domain.ApplicationStatus,
		updatedAt time.Time,
	) (*domain.Application, error)
}

// MessageRepository stores direct messages. Message lists are ordered by
// (SentAt, ID).
type MessageRepository interface {
	CreateMessage(ctx context.Context, message domain.Message) (*domain.Message, error)
	GetMessage(ctx context.Context, id int64) (*domain.Message, bool, error)
	// ListMessagesByParticipant returns every message sent or received by userID.
	ListMessagesByParticipant(ctx context.Context, userID int64) ([]domain.Message, error)
	// ListConversation returns the messages exchanged between the two users.
	ListConversation(ctx context.Context, userID, partnerID int64) ([]domain.Message, error)
	// MarkMessageRead returns domain.ErrMessageNotFound if id is absent.
	MarkMessageRead(ctx context.Context, id int64) (*domain.Message, error)
	// MarkConversationRead marks every unread message from senderID to
	// recipientID read and returns how many changed.
	MarkConversationRead(ctx context.Context, recipientID, senderID int64) (int, error)
}

// Repository is the storage contract of the job board.
type Repository interface {
	UserRepository
	JobSeekerProfileRepository
	CompanyProfileRepository
	JobRepository
	ApplicationRepository
	MessageRepository

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// Config selects and configures the storage backend.
type Config struct {
	// Driver is "memory", "sqlite" or "postgres"
	Driver string `env:"DRIVER" default:"sqlite"`
	// DSN is the sqlite database path or the postgres connection string
	DSN string `env:"DSN" default:"var/storage/jobboard.db"`
}

// NewRepositoryFactory returns a factory for the backend selected by cfg.
func NewRepositoryFactory(cfg Config) (RepositoryFactory, error) {
	switch cfg.Driver {
	case "memory":
		return func(context.Context) (Repository, error) {
			return NewMemoryRepository(), nil
		}, nil
	case DriverSQLite, DriverPostgres:
		return func(ctx context.Context) (Repository, error) {
			return OpenSQLRepository(ctx, cfg.Driver, cfg.DSN)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
