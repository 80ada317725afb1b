package applicationsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/access"
)

// Repository is the part of the store the application service uses.
type Repository interface {
	store.JobSeekerProfileRepository
	store.CompanyProfileRepository
	store.JobRepository
	store.ApplicationRepository
}

// ApplicationService implements applying to jobs and moving applications
// through their statuses.
type ApplicationService struct {
	Repo Repository
	Log  logging.Logger
	Now  func() time.Time
}

func NewApplicationService(repo Repository) *ApplicationService {
	return &ApplicationService{
		Repo: repo,
		Log:  logging.GetLogger("svc.applicationsvc.application_service"),
		Now:  time.Now,
	}
}

// Apply creates a pending application of the job seeker user to jobID.
func (s *ApplicationService) Apply(
	ctx context.Context,
	user *domain.User,
	jobID int64,
	coverLetter *string,
) (application *domain.Application, err error) {
	log := s.Log.With(logging.Group("application", "userId", user.ID, "jobId", jobID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "apply failed", "error", err)
		} else {
			log.DebugContext(ctx, "applied", "id", application.ID)
		}
	}()

	if !user.IsJobSeeker() {
		return nil, domain.ErrJobSeekersOnly
	}

	profile, ok, err := s.Repo.GetJobSeekerProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get job seeker profile: %w", err)
	} else if !ok {
		return nil, domain.ErrNoJobSeekerProfile
	}

	if _, ok, err := s.Repo.GetJob(ctx, jobID); err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	} else if !ok {
		return nil, domain.ErrJobNotFound
	}

	now := s.now()

	application, err = s.Repo.CreateApplication(ctx, domain.Application{
		JobID:       jobID,
		JobSeekerID: profile.ID,
		Status:      domain.ApplicationStatusPending,
		CoverLetter: coverLetter,
		AppliedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	return application, nil
}

// ListForJobSeeker returns the applications sent by user, each with a
// summary of the job and its company when they still exist.
func (s *ApplicationService) ListForJobSeeker(
	ctx context.Context,
	user *domain.User,
) ([]domain.JobSeekerApplication, error) {
	if !user.IsJobSeeker() {
		return nil, domain.ErrJobSeekersOnly
	}

	results := []domain.JobSeekerApplication{}

	profile, ok, err := s.Repo.GetJobSeekerProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get job seeker profile: %w", err)
	} else if !ok {
		return results, nil
	}

	applications, err := s.Repo.ListApplicationsByJobSeeker(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	for _, application := range applications {
		summary, err := s.jobSummaryWithCompany(ctx, application.JobID)
		if err != nil {
			return nil, err
		}

		results = append(results, domain.JobSeekerApplication{Application: application, Job: summary})
	}

	return results, nil
}

func (s *ApplicationService) jobSummaryWithCompany(
	ctx context.Context,
	jobID int64,
) (*domain.ApplicationJobSummary, error) {
	job, ok, err := s.Repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	} else if !ok {
		return nil, nil //nolint:nilnil
	}

	summary := &domain.ApplicationJobSummary{
		ID:       job.ID,
		Title:    job.Title,
		Location: job.Location,
		Type:     job.Type,
		Salary:   job.Salary,
	}

	company, ok, err := s.Repo.GetCompanyProfile(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if ok {
		sum := company.Summary()
		summary.Company = &sum
	}

	return summary, nil
}

// ListForEmployer returns the applications received by the jobs of the
// employer's company, each with a summary of the job and of the applicant.
func (s *ApplicationService) ListForEmployer(
	ctx context.Context,
	user *domain.User,
) ([]domain.EmployerApplication, error) {
	if !user.IsEmployer() {
		return nil, domain.ErrEmployersOnly
	}

	results := []domain.EmployerApplication{}

	company, ok, err := s.Repo.GetCompanyProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return results, nil
	}

	jobs, err := s.Repo.ListJobs(ctx, domain.JobFilter{CompanyID: company.ID})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		return results, nil
	}

	summaries := make(map[int64]*domain.JobSummary, len(jobs))
	jobIDs := make([]int64, 0, len(jobs))

	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
		summaries[job.ID] = &domain.JobSummary{ID: job.ID, Title: job.Title, Location: job.Location, Type: job.Type}
	}

	applications, err := s.Repo.ListApplicationsByJobs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	for _, application := range applications {
		result := domain.EmployerApplication{Application: application, Job: summaries[application.JobID]}

		profile, ok, err := s.Repo.GetJobSeekerProfile(ctx, application.JobSeekerID)
		if err != nil {
			return nil, fmt.Errorf("get job seeker profile: %w", err)
		} else if ok {
			sum := profile.Summary()
			result.JobSeeker = &sum
		}

		results = append(results, result)
	}

	return results, nil
}

// SetStatus moves application id to status. Only the employer owning the
// job applied to may do so. Any status may follow any other.
func (s *ApplicationService) SetStatus(
	ctx context.Context,
	user *domain.User,
	id int64,
	status string,
) (application *domain.Application, err error) {
	log := s.Log.With(logging.Group("application", "id", id, "status", status))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "set application status failed", "error", err)
		} else {
			log.DebugContext(ctx, "application status set")
		}
	}()

	if !user.IsEmployer() {
		return nil, domain.ErrEmployersOnly
	}

	newStatus, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, err
	}

	current, ok, err := s.Repo.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	} else if !ok {
		return nil, domain.ErrApplicationNotFound
	}

	job, ok, err := s.Repo.GetJob(ctx, current.JobID)
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

	if !access.CanUpdateApplicationStatus(user, current, job, company) {
		return nil, domain.ErrNotOwner
	}

	application, err = s.Repo.UpdateApplicationStatus(ctx, id, newStatus, s.now())
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}

	return application, nil
}

func (s *ApplicationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}

	return s.Now().UTC()
}
