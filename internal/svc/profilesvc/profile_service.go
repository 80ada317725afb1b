package profilesvc

import (
	"context"
	"fmt"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/access"
)

// Repository is the part of the store the profile service uses.
type Repository interface {
	store.JobSeekerProfileRepository
	store.CompanyProfileRepository
}

// ProfileService manages the role specific profiles of users.
type ProfileService struct {
	Repo Repository
	Log  logging.Logger
}

func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{
		Repo: repo,
		Log:  logging.GetLogger("svc.profilesvc.profile_service"),
	}
}

// CreateJobSeekerProfile creates the profile of the job seeker user. The
// owner is always the caller, whatever profile.UserID holds.
func (s *ProfileService) CreateJobSeekerProfile(
	ctx context.Context,
	user *domain.User,
	profile domain.JobSeekerProfile,
) (created *domain.JobSeekerProfile, err error) {
	log := s.Log.With(logging.Group("profile", "userId", user.ID, "kind", "jobSeeker"))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create job seeker profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "job seeker profile created", "id", created.ID)
		}
	}()

	if !user.IsJobSeeker() {
		return nil, domain.ErrJobSeekersOnly
	}

	profile.ID = 0
	profile.UserID = user.ID

	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	created, err = s.Repo.CreateJobSeekerProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("create job seeker profile: %w", err)
	}

	return created, nil
}

// GetJobSeekerProfileByUserID returns the job seeker profile owned by userID.
func (s *ProfileService) GetJobSeekerProfileByUserID(ctx context.Context, userID int64) (*domain.JobSeekerProfile, error) {
	profile, ok, err := s.Repo.GetJobSeekerProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get job seeker profile: %w", err)
	} else if !ok {
		return nil, domain.ErrProfileNotFound
	}

	return profile, nil
}

// UpdateJobSeekerProfile applies patch to the profile id owned by user.
func (s *ProfileService) UpdateJobSeekerProfile(
	ctx context.Context,
	user *domain.User,
	id int64,
	patch domain.JobSeekerProfilePatch,
) (updated *domain.JobSeekerProfile, err error) {
	log := s.Log.With(logging.Group("profile", "id", id, "kind", "jobSeeker"))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update job seeker profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "job seeker profile updated")
		}
	}()

	profile, ok, err := s.Repo.GetJobSeekerProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job seeker profile: %w", err)
	} else if !ok {
		return nil, domain.ErrProfileNotFound
	}

	if !access.CanManageJobSeekerProfile(user, profile) {
		return nil, domain.ErrNotOwner
	}

	updated, err = s.Repo.UpdateJobSeekerProfile(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update job seeker profile: %w", err)
	}

	return updated, nil
}

// CreateCompanyProfile creates the company profile of the employer user.
func (s *ProfileService) CreateCompanyProfile(
	ctx context.Context,
	user *domain.User,
	profile domain.CompanyProfile,
) (created *domain.CompanyProfile, err error) {
	log := s.Log.With(logging.Group("profile", "userId", user.ID, "kind", "company"))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create company profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "company profile created", "id", created.ID)
		}
	}()

	if !user.IsEmployer() {
		return nil, domain.ErrEmployersOnly
	}

	profile.ID = 0
	profile.UserID = user.ID

	created, err = s.Repo.CreateCompanyProfile(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("create company profile: %w", err)
	}

	return created, nil
}

// GetCompanyProfile returns the company profile with the given id.
func (s *ProfileService) GetCompanyProfile(ctx context.Context, id int64) (*domain.CompanyProfile, error) {
	profile, ok, err := s.Repo.GetCompanyProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return nil, domain.ErrProfileNotFound
	}

	return profile, nil
}

// GetCompanyProfileByUserID returns the company profile owned by userID.
func (s *ProfileService) GetCompanyProfileByUserID(ctx context.Context, userID int64) (*domain.CompanyProfile, error) {
	profile, ok, err := s.Repo.GetCompanyProfileByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return nil, domain.ErrProfileNotFound
	}

	return profile, nil
}

// ListCompanyProfiles returns every company profile ordered by id.
func (s *ProfileService) ListCompanyProfiles(ctx context.Context) ([]domain.CompanyProfile, error) {
	profiles, err := s.Repo.ListCompanyProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list company profiles: %w", err)
	}

	if profiles == nil {
		profiles = []domain.CompanyProfile{}
	}

	return profiles, nil
}

// UpdateCompanyProfile applies patch to the company profile id owned by user.
func (s *ProfileService) UpdateCompanyProfile(
	ctx context.Context,
	user *domain.User,
	id int64,
	patch domain.CompanyProfilePatch,
) (updated *domain.CompanyProfile, err error) {
	log := s.Log.With(logging.Group("profile", "id", id, "kind", "company"))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update company profile failed", "error", err)
		} else {
			log.DebugContext(ctx, "company profile updated")
		}
	}()

	profile, ok, err := s.Repo.GetCompanyProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	} else if !ok {
		return nil, domain.ErrProfileNotFound
	}

	if !access.CanManageCompanyProfile(user, profile) {
		return nil, domain.ErrNotOwner
	}

	updated, err = s.Repo.UpdateCompanyProfile(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update company profile: %w", err)
	}

	return updated, nil
}
