package jobsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/access"
)

// Repository is the part of the store the job service uses.
type Repository interface {
	store.CompanyProfileRepository
	store.JobRepository
	CountApplicationsByJob(ctx context.Context, jobID int64) (int, error)
}

// JobService implements posting, editing and searching jobs.
type JobService struct {
	Repo Repository
	Log  logging.Logger
	Now  func() time.Time
}

func NewJobService(repo Repository) *JobService {
	return &JobService{
		Repo: repo,
		Log:  logging.GetLogger("svc.jobsvc.job_service"),
		Now:  time.Now,
	}
}

// PostJob creates a job for the company profile of the employer user.
// Returns domain.ErrNoCompanyProfile if the employer has none yet.
func (s *JobService) PostJob(ctx context.Context, user *domain.User, job domain.Job) (created *domain.Job, err error) {
	log := s.Log.With(logging.Group("job", "userId", user.ID, "title", job.Title))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "post job failed", "error", err)
		} else {
			log.DebugContext(ctx, "job posted", "id", created.ID)
		}
	}()

	if !user.IsEmployer() {
		return nil, domain.ErrEmployersOnly
	}

	company, ok, err := s.Repo.GetCompanyProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return nil, domain.ErrNoCompanyProfile
	}

	job.ID = 0
	job.CompanyID = company.ID
	job.CreatedAt = s.now()
	job.IsActive = true

	if job.Skills == nil {
		job.Skills = []string{}
	}

	created, err = s.Repo.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return created, nil
}

// UpdateJob applies patch to the job id if user manages it.
func (s *JobService) UpdateJob(
	ctx context.Context,
	user *domain.User,
	id int64,
	patch domain.JobPatch,
) (updated *domain.Job, err error) {
	log := s.Log.With(logging.Group("job", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update job failed", "error", err)
		} else {
			log.DebugContext(ctx, "job updated")
		}
	}()

	if _, err := s.authorize(ctx, user, id); err != nil {
		return nil, err
	}

	updated, err = s.Repo.UpdateJob(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	return updated, nil
}

// DeleteJob removes the job id if user manages it. Applications to the job
// are kept; listings show them without job details.
func (s *JobService) DeleteJob(ctx context.Context, user *domain.User, id int64) (err error) {
	log := s.Log.With(logging.Group("job", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete job failed", "error", err)
		} else {
			log.DebugContext(ctx, "job deleted")
		}
	}()

	if _, err := s.authorize(ctx, user, id); err != nil {
		return err
	}

	deleted, err := s.Repo.DeleteJob(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	} else if !deleted {
		return domain.ErrJobNotFound
	}

	return nil
}

// authorize resolves the ownership chain of job id and checks that user
// manages it. Missing links are reported before missing rights.
func (s *JobService) authorize(ctx context.Context, user *domain.User, id int64) (*domain.Job, error) {
	job, ok, err := s.Repo.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	} else if !ok {
		return nil, domain.ErrJobNotFound
	}

	company, ok, err := s.Repo.GetCompanyProfile(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return nil, domain.ErrCompanyNotFound
	}

	if !access.CanManageJob(user, job, company) {
		return nil, domain.ErrNotOwner
	}

	return job, nil
}

// SearchJobs lists the jobs matching filter, each with a summary of its
// company. A job whose company is gone carries a nil company.
func (s *JobService) SearchJobs(ctx context.Context, filter domain.JobFilter) ([]domain.JobWithCompany, error) {
	jobs, err := s.Repo.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	companies := make(map[int64]*domain.CompanySummary)
	results := make([]domain.JobWithCompany, 0, len(jobs))

	for _, job := range jobs {
		summary, seen := companies[job.CompanyID]
		if !seen {
			company, ok, err := s.Repo.GetCompanyProfile(ctx, job.CompanyID)
			if err != nil {
				return nil, fmt.Errorf("get company profile: %w", err)
			} else if ok {
				sum := company.Summary()
				summary = &sum
			}

			companies[job.CompanyID] = summary
		}

		results = append(results, domain.JobWithCompany{Job: job, Company: summary})
	}

	return results, nil
}

// GetJobDetail returns job id with its full company and the number of
// applications it received.
func (s *JobService) GetJobDetail(ctx context.Context, id int64) (*domain.JobDetail, error) {
	job, ok, err := s.Repo.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	} else if !ok {
		return nil, domain.ErrJobNotFound
	}

	company, _, err := s.Repo.GetCompanyProfile(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	}

	count, err := s.Repo.CountApplicationsByJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	return &domain.JobDetail{Job: *job, Company: company, ApplicationCount: count}, nil
}

// ListJobsByCompany returns the jobs posted by companyID.
func (s *JobService) ListJobsByCompany(ctx context.Context, companyID int64) ([]domain.Job, error) {
	jobs, err := s.Repo.ListJobs(ctx, domain.JobFilter{CompanyID: companyID})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	if jobs == nil {
		jobs = []domain.Job{}
	}

	return jobs, nil
}

func (s *JobService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}

	return s.Now().UTC()
}
