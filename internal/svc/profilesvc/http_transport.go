package profilesvc

import (
	"encoding/json"
	"net/http"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// JobSeekerProfileRequest is the body of POST /api/profiles/jobseeker.
type JobSeekerProfileRequest struct {
	FirstName  string          `json:"firstName" validate:"required,max=100"`
	LastName   string          `json:"lastName" validate:"required,max=100"`
	Title      *string         `json:"title" validate:"omitempty,max=200"`
	Bio        *string         `json:"bio" validate:"omitempty,max=5000"`
	Location   *string         `json:"location" validate:"omitempty,max=200"`
	Skills     []string        `json:"skills" validate:"omitempty,dive,min=1,max=100"`
	Experience json.RawMessage `json:"experience"`
	Education  json.RawMessage `json:"education"`
	ResumeURL  *string         `json:"resumeUrl" validate:"omitempty,max=2048"`
	AvatarURL  *string         `json:"avatarUrl" validate:"omitempty,max=2048"`
}

func (req JobSeekerProfileRequest) profile() domain.JobSeekerProfile {
	return domain.JobSeekerProfile{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Title:      req.Title,
		Bio:        req.Bio,
		Location:   req.Location,
		Skills:     req.Skills,
		Experience: req.Experience,
		Education:  req.Education,
		ResumeURL:  req.ResumeURL,
		AvatarURL:  req.AvatarURL,
	}
}

// CompanyProfileRequest is the body of POST /api/profiles/company.
type CompanyProfileRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Industry    *string `json:"industry" validate:"omitempty,max=200"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Website     *string `json:"website" validate:"omitempty,max=2048"`
	LogoURL     *string `json:"logoUrl" validate:"omitempty,max=2048"`
	Size        *string `json:"size" validate:"omitempty,max=50"`
}

func (req CompanyProfileRequest) profile() domain.CompanyProfile {
	return domain.CompanyProfile{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Location:    req.Location,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Size:        req.Size,
	}
}

// HTTPTransport exposes the profile service over HTTP.
type HTTPTransport struct {
	profileSvc *ProfileService
	log        logging.Logger
	cfg        http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(profileSvc *ProfileService, cfg http_.HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		profileSvc: profileSvc,
		log:        logging.GetLogger("svc.profilesvc.http_transport"),
		cfg:        cfg,
	}
}

// RegisterRoutes sets up the profile and company endpoints.
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/profiles/jobseeker",
		http_.HandleErrors(ht.log, "create job seeker profile", ht.createJobSeekerProfile))
	mux.HandleFunc("GET /api/profiles/jobseeker/{userId}",
		http_.HandleErrors(ht.log, "get job seeker profile", ht.getJobSeekerProfile))
	mux.HandleFunc("PUT /api/profiles/jobseeker/{id}",
		http_.HandleErrors(ht.log, "update job seeker profile", ht.updateJobSeekerProfile))

	mux.HandleFunc("POST /api/profiles/company",
		http_.HandleErrors(ht.log, "create company profile", ht.createCompanyProfile))
	mux.HandleFunc("GET /api/profiles/company/{userId}",
		http_.HandleErrors(ht.log, "get company profile by user", ht.getCompanyProfileByUser))
	mux.HandleFunc("PUT /api/profiles/company/{id}",
		http_.HandleErrors(ht.log, "update company profile", ht.updateCompanyProfile))

	mux.HandleFunc("GET /api/companies/{id}", http_.HandleErrors(ht.log, "get company", ht.getCompany))
	mux.HandleFunc("GET /api/companies", http_.HandleErrors(ht.log, "list companies", ht.listCompanies))
}

func (ht *HTTPTransport) createJobSeekerProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	var req JobSeekerProfileRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	profile, err := ht.profileSvc.CreateJobSeekerProfile(r.Context(), user, req.profile())
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, profile)
}

func (ht *HTTPTransport) getJobSeekerProfile(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.PathID(r, "userId")
	if err != nil {
		return err
	}

	profile, err := ht.profileSvc.GetJobSeekerProfileByUserID(r.Context(), userID)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profile)
}

func (ht *HTTPTransport) updateJobSeekerProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	var patch domain.JobSeekerProfilePatch
	if err := http_.DecodeJSON(w, r, &patch, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	profile, err := ht.profileSvc.UpdateJobSeekerProfile(r.Context(), user, id, patch)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profile)
}

func (ht *HTTPTransport) createCompanyProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	var req CompanyProfileRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	profile, err := ht.profileSvc.CreateCompanyProfile(r.Context(), user, req.profile())
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, profile)
}

func (ht *HTTPTransport) getCompanyProfileByUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := http_.PathID(r, "userId")
	if err != nil {
		return err
	}

	profile, err := ht.profileSvc.GetCompanyProfileByUserID(r.Context(), userID)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profile)
}

func (ht *HTTPTransport) updateCompanyProfile(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	var patch domain.CompanyProfilePatch
	if err := http_.DecodeJSON(w, r, &patch, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	profile, err := ht.profileSvc.UpdateCompanyProfile(r.Context(), user, id, patch)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profile)
}

func (ht *HTTPTransport) getCompany(w http.ResponseWriter, r *http.Request) error {
	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	profile, err := ht.profileSvc.GetCompanyProfile(r.Context(), id)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profile)
}

func (ht *HTTPTransport) listCompanies(w http.ResponseWriter, r *http.Request) error {
	profiles, err := ht.profileSvc.ListCompanyProfiles(r.Context())
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, profiles)
}
