package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
)

type applicationKey struct {
	jobID       int64
	jobSeekerID int64
}

// MemoryRepository implements Repository with maps guarded by a single lock.
// Values are copied on the way in and out, so callers never share state with
// the store.
type MemoryRepository struct {
	mu sync.RWMutex

	users             map[int64]domain.User
	jobSeekerProfiles map[int64]domain.JobSeekerProfile
	companyProfiles   map[int64]domain.CompanyProfile
	jobs              map[int64]domain.Job
	applications      map[int64]domain.Application
	messages          map[int64]domain.Message

	usernames     map[string]int64
	emails        map[string]int64
	seekerByUser  map[int64]int64
	companyByUser map[int64]int64
	appByPair     map[applicationKey]int64

	nextUserID             int64
	nextJobSeekerProfileID int64
	nextCompanyProfileID   int64
	nextJobID              int64
	nextApplicationID      int64
	nextMessageID          int64
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:             make(map[int64]domain.User),
		jobSeekerProfiles: make(map[int64]domain.JobSeekerProfile),
		companyProfiles:   make(map[int64]domain.CompanyProfile),
		jobs:              make(map[int64]domain.Job),
		applications:      make(map[int64]domain.Application),
		messages:          make(map[int64]domain.Message),
		usernames:         make(map[string]int64),
		emails:            make(map[string]int64),
		seekerByUser:      make(map[int64]int64),
		companyByUser:     make(map[int64]int64),
		appByPair:         make(map[applicationKey]int64),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	return append(json.RawMessage(nil), raw...)
}

func cloneUser(u domain.User) domain.User {
	u.PasswordHash = slices.Clone(u.PasswordHash)

	return u
}

func cloneJobSeekerProfile(p domain.JobSeekerProfile) domain.JobSeekerProfile {
	p.Title = clonePtr(p.Title)
	p.Bio = clonePtr(p.Bio)
	p.Location = clonePtr(p.Location)
	p.Skills = slices.Clone(p.Skills)
	p.Experience = cloneRaw(p.Experience)
	p.Education = cloneRaw(p.Education)
	p.ResumeURL = clonePtr(p.ResumeURL)
	p.AvatarURL = clonePtr(p.AvatarURL)

	return p
}

func cloneCompanyProfile(p domain.CompanyProfile) domain.CompanyProfile {
	p.Description = clonePtr(p.Description)
	p.Industry = clonePtr(p.Industry)
	p.Location = clonePtr(p.Location)
	p.Website = clonePtr(p.Website)
	p.LogoURL = clonePtr(p.LogoURL)
	p.Size = clonePtr(p.Size)

	return p
}

func cloneJob(j domain.Job) domain.Job {
	j.Salary = clonePtr(j.Salary)
	j.Requirements = clonePtr(j.Requirements)
	j.Benefits = clonePtr(j.Benefits)
	j.Skills = slices.Clone(j.Skills)
	j.ExpiresAt = clonePtr(j.ExpiresAt)

	return j
}

func cloneApplication(a domain.Application) domain.Application {
	a.CoverLetter = clonePtr(a.CoverLetter)

	return a
}

func cloneMessage(m domain.Message) domain.Message {
	m.RelatedToApplicationID = clonePtr(m.RelatedToApplicationID)

	return m
}

// sortedValues returns the map values ordered by id.
func sortedValues[T any](m map[int64]T, keep func(T) bool, clone func(T) T) []T {
	ids := make([]int64, 0, len(m))

	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(m[id]))
	}

	return out
}

// CreateUser implements UserRepository.
func (r *MemoryRepository) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usernames[user.Username]; taken {
		return nil, domain.ErrUserAlreadyExists
	}

	if _, taken := r.emails[user.Email]; taken {
		return nil, domain.ErrUserAlreadyExists
	}

	r.nextUserID++
	user.ID = r.nextUserID
	user = cloneUser(user)

	r.users[user.ID] = user
	r.usernames[user.Username] = user.ID
	r.emails[user.Email] = user.ID

	out := cloneUser(user)

	return &out, nil
}

// GetUser implements UserRepository.
func (r *MemoryRepository) GetUser(_ context.Context, id int64) (*domain.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneUser(user)

	return &out, true, nil
}

// GetUserByUsername implements UserRepository.
func (r *MemoryRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	r.mu.RLock()
	id, ok := r.usernames[username]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	return r.GetUser(ctx, id)
}

// CreateJobSeekerProfile implements JobSeekerProfileRepository.
func (r *MemoryRepository) CreateJobSeekerProfile(
	_ context.Context,
	profile domain.JobSeekerProfile,
) (*domain.JobSeekerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seekerByUser[profile.UserID]; exists {
		return nil, domain.ErrProfileAlreadyExists
	}

	r.nextJobSeekerProfileID++
	profile.ID = r.nextJobSeekerProfileID

	r.jobSeekerProfiles[profile.ID] = cloneJobSeekerProfile(profile)
	r.seekerByUser[profile.UserID] = profile.ID

	out := cloneJobSeekerProfile(profile)

	return &out, nil
}

// GetJobSeekerProfile implements JobSeekerProfileRepository.
func (r *MemoryRepository) GetJobSeekerProfile(_ context.Context, id int64) (*domain.JobSeekerProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.jobSeekerProfiles[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneJobSeekerProfile(profile)

	return &out, true, nil
}

// GetJobSeekerProfileByUserID implements JobSeekerProfileRepository.
func (r *MemoryRepository) GetJobSeekerProfileByUserID(
	ctx context.Context,
	userID int64,
) (*domain.JobSeekerProfile, bool, error) {
	r.mu.RLock()
	id, ok := r.seekerByUser[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	return r.GetJobSeekerProfile(ctx, id)
}

// UpdateJobSeekerProfile implements JobSeekerProfileRepository.
func (r *MemoryRepository) UpdateJobSeekerProfile(
	_ context.Context,
	id int64,
	patch domain.JobSeekerProfilePatch,
) (*domain.JobSeekerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.jobSeekerProfiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	profile = cloneJobSeekerProfile(profile)
	patch.Apply(&profile)
	r.jobSeekerProfiles[id] = profile

	out := cloneJobSeekerProfile(profile)

	return &out, nil
}

// CreateCompanyProfile implements CompanyProfileRepository.
func (r *MemoryRepository) CreateCompanyProfile(
	_ context.Context,
	profile domain.CompanyProfile,
) (*domain.CompanyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.companyByUser[profile.UserID]; exists {
		return nil, domain.ErrProfileAlreadyExists
	}

	r.nextCompanyProfileID++
	profile.ID = r.nextCompanyProfileID

	r.companyProfiles[profile.ID] = cloneCompanyProfile(profile)
	r.companyByUser[profile.UserID] = profile.ID

	out := cloneCompanyProfile(profile)

	return &out, nil
}

// GetCompanyProfile implements CompanyProfileRepository.
func (r *MemoryRepository) GetCompanyProfile(_ context.Context, id int64) (*domain.CompanyProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.companyProfiles[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneCompanyProfile(profile)

	return &out, true, nil
}

// GetCompanyProfileByUserID implements CompanyProfileRepository.
func (r *MemoryRepository) GetCompanyProfileByUserID(
	ctx context.Context,
	userID int64,
) (*domain.CompanyProfile, bool, error) {
	r.mu.RLock()
	id, ok := r.companyByUser[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	return r.GetCompanyProfile(ctx, id)
}

// ListCompanyProfiles implements CompanyProfileRepository.
func (r *MemoryRepository) ListCompanyProfiles(_ context.Context) ([]domain.CompanyProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.companyProfiles, func(domain.CompanyProfile) bool { return true }, cloneCompanyProfile), nil
}

// UpdateCompanyProfile implements CompanyProfileRepository.
func (r *MemoryRepository) UpdateCompanyProfile(
	_ context.Context,
	id int64,
	patch domain.CompanyProfilePatch,
) (*domain.CompanyProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.companyProfiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	profile = cloneCompanyProfile(profile)
	patch.Apply(&profile)
	r.companyProfiles[id] = profile

	out := cloneCompanyProfile(profile)

	return &out, nil
}

// CreateJob implements JobRepository.
func (r *MemoryRepository) CreateJob(_ context.Context, job domain.Job) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextJobID++
	job.ID = r.nextJobID
	r.jobs[job.ID] = cloneJob(job)

	out := cloneJob(job)

	return &out, nil
}

// GetJob implements JobRepository.
func (r *MemoryRepository) GetJob(_ context.Context, id int64) (*domain.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneJob(job)

	return &out, true, nil
}

// ListJobs implements JobRepository.
func (r *MemoryRepository) ListJobs(_ context.Context, filter domain.JobFilter) ([]domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.jobs, filter.Matches, cloneJob), nil
}

// UpdateJob implements JobRepository.
func (r *MemoryRepository) UpdateJob(_ context.Context, id int64, patch domain.JobPatch) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	job = cloneJob(job)
	patch.Apply(&job)
	r.jobs[id] = job

	out := cloneJob(job)

	return &out, nil
}

// DeleteJob implements JobRepository. Applications to the job are kept.
func (r *MemoryRepository) DeleteJob(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return false, nil
	}

	delete(r.jobs, id)

	return true, nil
}

// CreateApplication implements ApplicationRepository.
func (r *MemoryRepository) CreateApplication(
	_ context.Context,
	application domain.Application,
) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := applicationKey{jobID: application.JobID, jobSeekerID: application.JobSeekerID}
	if _, exists := r.appByPair[key]; exists {
		return nil, domain.ErrAlreadyApplied
	}

	r.nextApplicationID++
	application.ID = r.nextApplicationID

	r.applications[application.ID] = cloneApplication(application)
	r.appByPair[key] = application.ID

	out := cloneApplication(application)

	return &out, nil
}

// GetApplication implements ApplicationRepository.
func (r *MemoryRepository) GetApplication(_ context.Context, id int64) (*domain.Application, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	application, ok := r.applications[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneApplication(application)

	return &out, true, nil
}

// ListApplicationsByJobSeeker implements ApplicationRepository.
func (r *MemoryRepository) ListApplicationsByJobSeeker(
	_ context.Context,
	jobSeekerID int64,
) ([]domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.applications, func(a domain.Application) bool {
		return a.JobSeekerID == jobSeekerID
	}, cloneApplication), nil
}

// ListApplicationsByJob implements ApplicationRepository.
func (r *MemoryRepository) ListApplicationsByJob(_ context.Context, jobID int64) ([]domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.applications, func(a domain.Application) bool {
		return a.JobID == jobID
	}, cloneApplication), nil
}

// ListApplicationsByJobs implements ApplicationRepository.
func (r *MemoryRepository) ListApplicationsByJobs(_ context.Context, jobIDs []int64) ([]domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.applications, func(a domain.Application) bool {
		return slices.Contains(jobIDs, a.JobID)
	}, cloneApplication), nil
}

// CountApplicationsByJob implements ApplicationRepository.
func (r *MemoryRepository) CountApplicationsByJob(_ context.Context, jobID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0

	for _, application := range r.applications {
		if application.JobID == jobID {
			count++
		}
	}

	return count, nil
}

// UpdateApplicationStatus implements ApplicationRepository.
func (r *MemoryRepository) UpdateApplicationStatus(
	_ context.Context,
	id int64,
	status domain.ApplicationStatus,
	updatedAt time.Time,
) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}

	application.Status = status
	application.UpdatedAt = updatedAt
	r.applications[id] = application

	out := cloneApplication(application)

	return &out, nil
}

// CreateMessage implements MessageRepository.
func (r *MemoryRepository) CreateMessage(_ context.Context, message domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMessageID++
	message.ID = r.nextMessageID
	r.messages[message.ID] = cloneMessage(message)

	out := cloneMessage(message)

	return &out, nil
}

// GetMessage implements MessageRepository.
func (r *MemoryRepository) GetMessage(_ context.Context, id int64) (*domain.Message, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, false, nil
	}

	out := cloneMessage(message)

	return &out, true, nil
}

func (r *MemoryRepository) listMessages(keep func(domain.Message) bool) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := sortedValues(r.messages, keep, cloneMessage)
	slices.SortStableFunc(messages, func(a, b domain.Message) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	return messages
}

// ListMessagesByParticipant implements MessageRepository.
func (r *MemoryRepository) ListMessagesByParticipant(_ context.Context, userID int64) ([]domain.Message, error) {
	return r.listMessages(func(m domain.Message) bool {
		return m.FromUserID == userID || m.ToUserID == userID
	}), nil
}

// ListConversation implements MessageRepository.
func (r *MemoryRepository) ListConversation(_ context.Context, userID, partnerID int64) ([]domain.Message, error) {
	return r.listMessages(func(m domain.Message) bool {
		return (m.FromUserID == userID && m.ToUserID == partnerID) ||
			(m.FromUserID == partnerID && m.ToUserID == userID)
	}), nil
}

// MarkMessageRead implements MessageRepository.
func (r *MemoryRepository) MarkMessageRead(_ context.Context, id int64) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}

	message.IsRead = true
	r.messages[id] = message

	out := cloneMessage(message)

	return &out, nil
}

// MarkConversationRead implements MessageRepository.
func (r *MemoryRepository) MarkConversationRead(_ context.Context, recipientID, senderID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0

	for id, message := range r.messages {
		if message.ToUserID == recipientID && message.FromUserID == senderID && !message.IsRead {
			message.IsRead = true
			r.messages[id] = message
			changed++
		}
	}

	return changed, nil
}

// Close implements Repository. It is a no-op for the memory store.
func (r *MemoryRepository) Close() error {
	return nil
}
