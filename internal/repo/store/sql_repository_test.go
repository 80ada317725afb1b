package store_test

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/repo/store"
)

var errDBDown = errors.New("db down")

func newMockRepo(t *testing.T) (*store.SQLRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return store.NewSQLRepository(sqlx.NewDb(db, store.DriverPostgres)), mock
}

func TestSQLCreateUserUniqueViolation(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO users (username, email, password_hash, user_type, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
	)).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.CreateUser(context.Background(), domain.User{
		Username: "alice", Email: "a@example.com", PasswordHash: []byte("x"), UserType: domain.UserTypeEmployer,
	})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestSQLCreateJobOtherErrorIsNotConflict(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO jobs .* RETURNING id`).
		WillReturnError(&pq.Error{Code: "23502", Message: "null value in column"})

	_, err := repo.CreateJob(context.Background(), domain.Job{Title: "Engineer"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestSQLListJobsPropagatesErrors(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE type = $1 AND company_id = $2 ORDER BY id`)).
		WithArgs("Full-time", int64(4)).
		WillReturnError(errDBDown)

	_, err := repo.ListJobs(context.Background(), domain.JobFilter{Type: "Full-time", CompanyID: 4})
	require.ErrorIs(t, err, errDBDown)
}

func TestSQLListJobsEscapesQuery(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM jobs WHERE (LOWER(title) LIKE $1 ESCAPE '\' OR LOWER(description) LIKE $2 ESCAPE '\') ORDER BY id`,
	)).
		WithArgs(`%50\% off\_%`, `%50\% off\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	jobs, err := repo.ListJobs(context.Background(), domain.JobFilter{Query: "50% OFF_"})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSQLUpdateJobNotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.UpdateJob(context.Background(), 5, domain.JobPatch{})
	require.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestSQLListApplicationsByJobsExpandsIDs(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "job_id", "job_seeker_id", "status", "cover_letter", "applied_at", "updated_at",
	}).
		AddRow(1, 3, 9, "pending", nil, 1_700_000_000_000_000, 1_700_000_000_000_000).
		AddRow(2, 4, 9, "offered", "Hi", 1_700_000_000_000_000, 1_700_000_360_000_000)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM applications WHERE job_id IN ($1, $2) ORDER BY id`)).
		WithArgs(int64(3), int64(4)).
		WillReturnRows(rows)

	apps, err := repo.ListApplicationsByJobs(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Nil(t, apps[0].CoverLetter)
	assert.Equal(t, "Hi", *apps[1].CoverLetter)
	assert.Equal(t, domain.ApplicationStatusOffered, apps[1].Status)
	assert.Equal(t, int64(1_700_000_360), apps[1].UpdatedAt.Unix())
}

func TestSQLMarkConversationRead(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE messages SET is_read = $1 WHERE to_user_id = $2 AND from_user_id = $3 AND is_read = $4`,
	)).
		WithArgs(true, int64(2), int64(1), false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.MarkConversationRead(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

//nolint:paralleltest
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()

	repo, err := store.OpenSQLRepository(ctx, store.DriverPostgres, dsn)
	require.NoError(t, err)

	defer repo.Close()

	admin, err := sqlx.Connect(store.DriverPostgres, dsn)
	require.NoError(t, err)

	defer admin.Close()

	_, err = admin.ExecContext(ctx,
		`TRUNCATE users, job_seeker_profiles, company_profiles, jobs, applications, messages RESTART IDENTITY`)
	require.NoError(t, err)

	user, err := repo.CreateUser(ctx, domain.User{
		Username: "acme", Email: "hr@acme.example", PasswordHash: []byte("x"), UserType: domain.UserTypeEmployer,
		CreatedAt: epoch,
	})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, domain.User{
		Username: "acme", Email: "other@acme.example", PasswordHash: []byte("x"), UserType: domain.UserTypeEmployer,
		CreatedAt: epoch,
	})
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	company, err := repo.CreateCompanyProfile(ctx, domain.CompanyProfile{UserID: user.ID, Name: "Acme"})
	require.NoError(t, err)

	job, err := repo.CreateJob(ctx, domain.Job{
		CompanyID: company.ID, Title: "Engineer", Description: "Build", Location: "Remote", Type: "Full-time",
		CreatedAt: epoch, IsActive: true,
	})
	require.NoError(t, err)

	jobs, err := repo.ListJobs(ctx, domain.JobFilter{Query: "ENGINEER", Location: "rem"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.True(t, jobs[0].IsActive)

	_, err = repo.CreateApplication(ctx, domain.Application{
		JobID: job.ID, JobSeekerID: 1, Status: domain.ApplicationStatusPending, AppliedAt: epoch, UpdatedAt: epoch,
	})
	require.NoError(t, err)

	_, err = repo.CreateApplication(ctx, domain.Application{
		JobID: job.ID, JobSeekerID: 1, Status: domain.ApplicationStatusPending, AppliedAt: epoch, UpdatedAt: epoch,
	})
	require.ErrorIs(t, err, domain.ErrAlreadyApplied)
}
