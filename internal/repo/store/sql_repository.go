package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
)

const pqUniqueViolation = "23505"

// SQLRepository implements Repository on top of database/sql. It supports the
// sqlite (modernc.org/sqlite) and postgres (lib/pq) drivers.
type SQLRepository struct {
	db        *sqlx.DB
	dialect   dialect
	log       logging.Logger
	writeLock sync.Mutex
}

var _ Repository = (*SQLRepository)(nil)

// OpenSQLRepository connects to the database, creates the schema if needed
// and returns the repository.
func OpenSQLRepository(ctx context.Context, driverName, dsn string) (*SQLRepository, error) {
	if driverName == DriverSQLite {
		var err error

		if dsn, err = prepareSQLite(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driverName == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	repo := NewSQLRepository(db)

	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return repo, nil
}

// prepareSQLite creates the parent directory of the database file and sets
// a busy timeout on every connection.
func prepareSQLite(dsn string) (string, error) {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")

	if path != "" && !strings.Contains(path, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return "", fmt.Errorf("create db dir: %w", err)
		}
	}

	if strings.Contains(dsn, "busy_timeout") {
		return dsn, nil
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_pragma=busy_timeout(5000)", nil
}

// NewSQLRepository wraps an open database. The dialect follows the driver
// name of db. The schema is not touched; call Migrate for that.
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	d := dialectFor(db.DriverName())

	return &SQLRepository{
		db:      db,
		dialect: d,
		log:     logging.GetLogger("repo.store.sql").With(logging.Group("db", "driver", d.name)),
	}
}

// Migrate creates the tables and indexes that do not exist yet.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range r.dialect.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	r.log.DebugContext(ctx, "schema ready")

	return nil
}

// Close implements Repository by closing the database connection.
func (r *SQLRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// lockWrites serializes writers for engines that do not support concurrent writes.
func (r *SQLRepository) lockWrites() func() {
	if !r.dialect.serializeWrites {
		return func() {}
	}

	r.writeLock.Lock()

	return r.writeLock.Unlock
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	return false
}

// insert runs an INSERT ... RETURNING id statement. Unique violations are
// reported as conflict.
func (r *SQLRepository) insert(ctx context.Context, conflict error, query string, args ...any) (int64, error) {
	defer r.lockWrites()()

	var id int64

	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		if conflict != nil && isUniqueViolation(err) {
			return 0, errors.Join(conflict, err)
		}

		return 0, fmt.Errorf("insert: %w", err)
	}

	return id, nil
}

// get scans a single row into dest and reports whether it existed.
func (r *SQLRepository) get(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	if err := r.db.GetContext(ctx, dest, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("query: %w", err)
	}

	return true, nil
}

func (r *SQLRepository) selectRows(ctx context.Context, dest any, query string, args ...any) error {
	if err := r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("query: %w", err)
	}

	return nil
}

// update reads a row with the dialect's row lock, lets modify change it and
// runs the returned statement, all in one transaction.
func (r *SQLRepository) update(
	ctx context.Context,
	notFound error,
	dest any,
	selectQuery string,
	id int64,
	modify func() (string, []any, error),
) (err error) {
	defer r.lockWrites()()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := tx.GetContext(ctx, dest, tx.Rebind(selectQuery+r.dialect.forUpdate), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}

		return fmt.Errorf("query: %w", err)
	}

	query, args, err := modify()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// CreateUser implements UserRepository.
func (r *SQLRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	id, err := r.insert(ctx, domain.ErrUserAlreadyExists,
		`INSERT INTO users (username, email, password_hash, user_type, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, string(user.UserType), toMicros(user.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = fromMicros(toMicros(user.CreatedAt))

	return &user, nil
}

// GetUser implements UserRepository.
func (r *SQLRepository) GetUser(ctx context.Context, id int64) (*domain.User, bool, error) {
	var row userRow

	ok, err := r.get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil || !ok {
		return nil, false, err
	}

	return row.toDomain(), true, nil
}

// GetUserByUsername implements UserRepository.
func (r *SQLRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	var row userRow

	ok, err := r.get(ctx, &row, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil || !ok {
		return nil, false, err
	}

	return row.toDomain(), true, nil
}

// CreateJobSeekerProfile implements JobSeekerProfileRepository.
func (r *SQLRepository) CreateJobSeekerProfile(
	ctx context.Context,
	profile domain.JobSeekerProfile,
) (*domain.JobSeekerProfile, error) {
	row, err := newJobSeekerProfileRow(profile)
	if err != nil {
		return nil, err
	}

	id, err := r.insert(ctx, domain.ErrProfileAlreadyExists,
		`INSERT INTO job_seeker_profiles (user_id, first_name, last_name, title, bio, location, skills, `+
			`experience, education, resume_url, avatar_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{row.UserID}, row.values()...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("create job seeker profile: %w", err)
	}

	row.ID = id

	return row.toDomain()
}

// GetJobSeekerProfile implements JobSeekerProfileRepository.
func (r *SQLRepository) GetJobSeekerProfile(ctx context.Context, id int64) (*domain.JobSeekerProfile, bool, error) {
	return r.getJobSeekerProfile(ctx, `id`, id)
}

// GetJobSeekerProfileByUserID implements JobSeekerProfileRepository.
func (r *SQLRepository) GetJobSeekerProfileByUserID(
	ctx context.Context,
	userID int64,
) (*domain.JobSeekerProfile, bool, error) {
	return r.getJobSeekerProfile(ctx, `user_id`, userID)
}

func (r *SQLRepository) getJobSeekerProfile(
	ctx context.Context,
	column string,
	value int64,
) (*domain.JobSeekerProfile, bool, error) {
	var row jobSeekerProfileRow

	ok, err := r.get(ctx, &row, `SELECT `+jobSeekerProfileColumns+` FROM job_seeker_profiles WHERE `+column+` = ?`, value)
	if err != nil || !ok {
		return nil, false, err
	}

	profile, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}

	return profile, true, nil
}

// UpdateJobSeekerProfile implements JobSeekerProfileRepository.
func (r *SQLRepository) UpdateJobSeekerProfile(
	ctx context.Context,
	id int64,
	patch domain.JobSeekerProfilePatch,
) (*domain.JobSeekerProfile, error) {
	var (
		row     jobSeekerProfileRow
		updated *domain.JobSeekerProfile
	)

	err := r.update(ctx, domain.ErrProfileNotFound, &row,
		`SELECT `+jobSeekerProfileColumns+` FROM job_seeker_profiles WHERE id = ?`, id,
		func() (string, []any, error) {
			profile, err := row.toDomain()
			if err != nil {
				return "", nil, err
			}

			patch.Apply(profile)
			updated = profile

			next, err := newJobSeekerProfileRow(*profile)
			if err != nil {
				return "", nil, err
			}

			return `UPDATE job_seeker_profiles SET first_name = ?, last_name = ?, title = ?, bio = ?, ` +
					`location = ?, skills = ?, experience = ?, education = ?, resume_url = ?, avatar_url = ? ` +
					`WHERE id = ?`,
				append(next.values(), id), nil
		})
	if err != nil {
		return nil, fmt.Errorf("update job seeker profile: %w", err)
	}

	return updated, nil
}

// CreateCompanyProfile implements CompanyProfileRepository.
func (r *SQLRepository) CreateCompanyProfile(
	ctx context.Context,
	profile domain.CompanyProfile,
) (*domain.CompanyProfile, error) {
	row := newCompanyProfileRow(profile)

	id, err := r.insert(ctx, domain.ErrProfileAlreadyExists,
		`INSERT INTO company_profiles (user_id, name, description, industry, location, website, logo_url, size) `+
			`VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{row.UserID}, row.values()...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("create company profile: %w", err)
	}

	row.ID = id

	return row.toDomain(), nil
}

// GetCompanyProfile implements CompanyProfileRepository.
func (r *SQLRepository) GetCompanyProfile(ctx context.Context, id int64) (*domain.CompanyProfile, bool, error) {
	return r.getCompanyProfile(ctx, `id`, id)
}

// GetCompanyProfileByUserID implements CompanyProfileRepository.
func (r *SQLRepository) GetCompanyProfileByUserID(
	ctx context.Context,
	userID int64,
) (*domain.CompanyProfile, bool, error) {
	return r.getCompanyProfile(ctx, `user_id`, userID)
}

func (r *SQLRepository) getCompanyProfile(
	ctx context.Context,
	column string,
	value int64,
) (*domain.CompanyProfile, bool, error) {
	var row companyProfileRow

	ok, err := r.get(ctx, &row, `SELECT `+companyProfileColumns+` FROM company_profiles WHERE `+column+` = ?`, value)
	if err != nil || !ok {
		return nil, false, err
	}

	return row.toDomain(), true, nil
}

// ListCompanyProfiles implements CompanyProfileRepository.
func (r *SQLRepository) ListCompanyProfiles(ctx context.Context) ([]domain.CompanyProfile, error) {
	var rows []companyProfileRow

	if err := r.selectRows(ctx, &rows, `SELECT `+companyProfileColumns+` FROM company_profiles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list company profiles: %w", err)
	}

	profiles := make([]domain.CompanyProfile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, *row.toDomain())
	}

	return profiles, nil
}

// UpdateCompanyProfile implements CompanyProfileRepository.
func (r *SQLRepository) UpdateCompanyProfile(
	ctx context.Context,
	id int64,
	patch domain.CompanyProfilePatch,
) (*domain.CompanyProfile, error) {
	var (
		row     companyProfileRow
		updated *domain.CompanyProfile
	)

	err := r.update(ctx, domain.ErrProfileNotFound, &row,
		`SELECT `+companyProfileColumns+` FROM company_profiles WHERE id = ?`, id,
		func() (string, []any, error) {
			updated = row.toDomain()
			patch.Apply(updated)

			return `UPDATE company_profiles SET name = ?, description = ?, industry = ?, location = ?, ` +
					`website = ?, logo_url = ?, size = ? WHERE id = ?`,
				append(newCompanyProfileRow(*updated).values(), id), nil
		})
	if err != nil {
		return nil, fmt.Errorf("update company profile: %w", err)
	}

	return updated, nil
}

// CreateJob implements JobRepository.
func (r *SQLRepository) CreateJob(ctx context.Context, job domain.Job) (*domain.Job, error) {
	row, err := newJobRow(job)
	if err != nil {
		return nil, err
	}

	id, err := r.insert(ctx, nil,
		`INSERT INTO jobs (company_id, created_at, title, description, location, type, salary, requirements, `+
			`benefits, skills, expires_at, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{row.CompanyID, row.CreatedAt}, row.values()...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	row.ID = id

	return row.toDomain()
}

// GetJob implements JobRepository.
func (r *SQLRepository) GetJob(ctx context.Context, id int64) (*domain.Job, bool, error) {
	var row jobRow

	ok, err := r.get(ctx, &row, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if err != nil || !ok {
		return nil, false, err
	}

	job, err := row.toDomain()
	if err != nil {
		return nil, false, err
	}

	return job, true, nil
}

// likeContains builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likeContains(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)

	return "%" + s + "%"
}

func jobFilterClause(filter domain.JobFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Query != "" {
		pattern := likeContains(filter.Query)
		conds = append(conds, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if filter.Location != "" {
		conds = append(conds, `LOWER(location) LIKE ? ESCAPE '\'`)
		args = append(args, likeContains(filter.Location))
	}

	if filter.Type != "" {
		conds = append(conds, `type = ?`)
		args = append(args, filter.Type)
	}

	if filter.CompanyID != 0 {
		conds = append(conds, `company_id = ?`)
		args = append(args, filter.CompanyID)
	}

	if len(conds) == 0 {
		return "", nil
	}

	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// ListJobs implements JobRepository.
func (r *SQLRepository) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	where, args := jobFilterClause(filter)

	var rows []jobRow

	if err := r.selectRows(ctx, &rows, `SELECT `+jobColumns+` FROM jobs`+where+` ORDER BY id`, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]domain.Job, 0, len(rows))

	for _, row := range rows {
		job, err := row.toDomain()
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, *job)
	}

	return jobs, nil
}

// UpdateJob implements JobRepository.
func (r *SQLRepository) UpdateJob(ctx context.Context, id int64, patch domain.JobPatch) (*domain.Job, error) {
	var (
		row     jobRow
		updated *domain.Job
	)

	err := r.update(ctx, domain.ErrJobNotFound, &row, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id,
		func() (string, []any, error) {
			job, err := row.toDomain()
			if err != nil {
				return "", nil, err
			}

			patch.Apply(job)
			updated = job

			next, err := newJobRow(*job)
			if err != nil {
				return "", nil, err
			}

			return `UPDATE jobs SET title = ?, description = ?, location = ?, type = ?, salary = ?, ` +
					`requirements = ?, benefits = ?, skills = ?, expires_at = ?, is_active = ? WHERE id = ?`,
				append(next.values(), id), nil
		})
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	return updated, nil
}

// DeleteJob implements JobRepository. Applications to the job are kept.
func (r *SQLRepository) DeleteJob(ctx context.Context, id int64) (bool, error) {
	defer r.lockWrites()()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM jobs WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return n > 0, nil
}

// CreateApplication implements ApplicationRepository.
func (r *SQLRepository) CreateApplication(
	ctx context.Context,
	application domain.Application,
) (*domain.Application, error) {
	id, err := r.insert(ctx, domain.ErrAlreadyApplied,
		`INSERT INTO applications (job_id, job_seeker_id, status, cover_letter, applied_at, updated_at) `+
			`VALUES (?, ?, ?, ?, ?, ?)`,
		application.JobID, application.JobSeekerID, string(application.Status), application.CoverLetter,
		toMicros(application.AppliedAt), toMicros(application.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	application.ID = id
	application.AppliedAt = fromMicros(toMicros(application.AppliedAt))
	application.UpdatedAt = fromMicros(toMicros(application.UpdatedAt))

	return &application, nil
}

// GetApplication implements ApplicationRepository.
func (r *SQLRepository) GetApplication(ctx context.Context, id int64) (*domain.Application, bool, error) {
	var row applicationRow

	ok, err := r.get(ctx, &row, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	if err != nil || !ok {
		return nil, false, err
	}

	application := row.toDomain()

	return &application, true, nil
}

func (r *SQLRepository) listApplications(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	var rows []applicationRow

	if err := r.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	applications := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		applications = append(applications, row.toDomain())
	}

	return applications, nil
}

// ListApplicationsByJobSeeker implements ApplicationRepository.
func (r *SQLRepository) ListApplicationsByJobSeeker(
	ctx context.Context,
	jobSeekerID int64,
) ([]domain.Application, error) {
	return r.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_seeker_id = ? ORDER BY id`, jobSeekerID)
}

// ListApplicationsByJob implements ApplicationRepository.
func (r *SQLRepository) ListApplicationsByJob(ctx context.Context, jobID int64) ([]domain.Application, error) {
	return r.listApplications(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY id`, jobID)
}

// ListApplicationsByJobs implements ApplicationRepository.
func (r *SQLRepository) ListApplicationsByJobs(ctx context.Context, jobIDs []int64) ([]domain.Application, error) {
	if len(jobIDs) == 0 {
		return []domain.Application{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+applicationColumns+` FROM applications WHERE job_id IN (?) ORDER BY id`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("expand job ids: %w", err)
	}

	return r.listApplications(ctx, query, args...)
}

// CountApplicationsByJob implements ApplicationRepository.
func (r *SQLRepository) CountApplicationsByJob(ctx context.Context, jobID int64) (int, error) {
	var count int

	if _, err := r.get(ctx, &count, `SELECT COUNT(*) FROM applications WHERE job_id = ?`, jobID); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}

	return count, nil
}

// UpdateApplicationStatus implements ApplicationRepository.
func (r *SQLRepository) UpdateApplicationStatus(
	ctx context.Context,
	id int64,
	status domain.ApplicationStatus,
	updatedAt time.Time,
) (*domain.Application, error) {
	var row applicationRow

	err := r.update(ctx, domain.ErrApplicationNotFound, &row,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id,
		func() (string, []any, error) {
			row.Status = string(status)
			row.UpdatedAt = toMicros(updatedAt)

			return `UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`,
				[]any{row.Status, row.UpdatedAt, id}, nil
		})
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	application := row.toDomain()

	return &application, nil
}

// CreateMessage implements MessageRepository.
func (r *SQLRepository) CreateMessage(ctx context.Context, message domain.Message) (*domain.Message, error) {
	id, err := r.insert(ctx, nil,
		`INSERT INTO messages (from_user_id, to_user_id, related_to_application_id, content, is_read, sent_at) `+
			`VALUES (?, ?, ?, ?, ?, ?)`,
		message.FromUserID, message.ToUserID, message.RelatedToApplicationID, message.Content,
		message.IsRead, toMicros(message.SentAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	message.ID = id
	message.SentAt = fromMicros(toMicros(message.SentAt))

	return &message, nil
}

// GetMessage implements MessageRepository.
func (r *SQLRepository) GetMessage(ctx context.Context, id int64) (*domain.Message, bool, error) {
	var row messageRow

	ok, err := r.get(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	if err != nil || !ok {
		return nil, false, err
	}

	message := row.toDomain()

	return &message, true, nil
}

func (r *SQLRepository) listMessages(ctx context.Context, where string, args ...any) ([]domain.Message, error) {
	var rows []messageRow

	if err := r.selectRows(ctx, &rows,
		`SELECT `+messageColumns+` FROM messages WHERE `+where+` ORDER BY sent_at, id`, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toDomain())
	}

	return messages, nil
}

// ListMessagesByParticipant implements MessageRepository.
func (r *SQLRepository) ListMessagesByParticipant(ctx context.Context, userID int64) ([]domain.Message, error) {
	return r.listMessages(ctx, `from_user_id = ? OR to_user_id = ?`, userID, userID)
}

// ListConversation implements MessageRepository.
func (r *SQLRepository) ListConversation(ctx context.Context, userID, partnerID int64) ([]domain.Message, error) {
	return r.listMessages(ctx,
		`(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)`,
		userID, partnerID, partnerID, userID)
}

// MarkMessageRead implements MessageRepository.
func (r *SQLRepository) MarkMessageRead(ctx context.Context, id int64) (*domain.Message, error) {
	var row messageRow

	err := r.update(ctx, domain.ErrMessageNotFound, &row,
		`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id,
		func() (string, []any, error) {
			row.IsRead = true

			return `UPDATE messages SET is_read = ? WHERE id = ?`, []any{true, id}, nil
		})
	if err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}

	message := row.toDomain()

	return &message, nil
}

// MarkConversationRead implements MessageRepository.
func (r *SQLRepository) MarkConversationRead(ctx context.Context, recipientID, senderID int64) (int, error) {
	defer r.lockWrites()()

	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE messages SET is_read = ? WHERE to_user_id = ? AND from_user_id = ? AND is_read = ?`),
		true, recipientID, senderID, false)
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return int(n), nil
}
