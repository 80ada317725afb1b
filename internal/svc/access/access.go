// Package access holds the ownership rules of the job board. The predicates
// are pure: callers resolve the ownership chain from the repository first,
// report missing links as not found, and only then ask whether the actor may
// proceed.
package access

import "github.com/mkrupp/jobboard/internal/domain"

// CanManageCompanyProfile reports whether user is the employer owning profile.
func CanManageCompanyProfile(user *domain.User, profile *domain.CompanyProfile) bool {
	return user != nil && profile != nil && user.IsEmployer() && profile.UserID == user.ID
}

// CanManageJobSeekerProfile reports whether user is the job seeker owning profile.
func CanManageJobSeekerProfile(user *domain.User, profile *domain.JobSeekerProfile) bool {
	return user != nil && profile != nil && user.IsJobSeeker() && profile.UserID == user.ID
}

// CanManageJob reports whether user is the employer owning the company that
// posted job. company must be the profile referenced by job.CompanyID.
func CanManageJob(user *domain.User, job *domain.Job, company *domain.CompanyProfile) bool {
	return job != nil && company != nil && company.ID == job.CompanyID && CanManageCompanyProfile(user, company)
}

// CanUpdateApplicationStatus reports whether user manages the job the
// application was sent to.
func CanUpdateApplicationStatus(
	user *domain.User,
	application *domain.Application,
	job *domain.Job,
	company *domain.CompanyProfile,
) bool {
	return application != nil && job != nil && application.JobID == job.ID && CanManageJob(user, job, company)
}

// CanMarkMessageRead reports whether user received message.
func CanMarkMessageRead(user *domain.User, message *domain.Message) bool {
	return user != nil && message != nil && message.ToUserID == user.ID
}
