package jobsvc

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// JobRequest is the body of POST /api/jobs.
type JobRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"required"`
	Location     string     `json:"location" validate:"required,max=200"`
	Type         string     `json:"type" validate:"required,max=50"`
	Salary       *string    `json:"salary" validate:"omitempty,max=100"`
	Requirements *string    `json:"requirements"`
	Benefits     *string    `json:"benefits"`
	Skills       []string   `json:"skills" validate:"omitempty,dive,min=1,max=100"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

func (req JobRequest) job() domain.Job {
	return domain.Job{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Type:         req.Type,
		Salary:       req.Salary,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
		Skills:       req.Skills,
		ExpiresAt:    req.ExpiresAt,
	}
}

// HTTPTransport exposes the job service over HTTP.
type HTTPTransport struct {
	jobSvc *JobService
	log    logging.Logger
	cfg    http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(jobSvc *JobService, cfg http_.HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		jobSvc: jobSvc,
		log:    logging.GetLogger("svc.jobsvc.http_transport"),
		cfg:    cfg,
	}
}

// RegisterRoutes sets up the job endpoints.
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/jobs", http_.HandleErrors(ht.log, "search jobs", ht.searchJobs))
	mux.HandleFunc("GET /api/jobs/{id}", http_.HandleErrors(ht.log, "get job", ht.getJob))
	mux.HandleFunc("GET /api/jobs/company/{companyId}",
		http_.HandleErrors(ht.log, "list company jobs", ht.listCompanyJobs))
	mux.HandleFunc("POST /api/jobs", http_.HandleErrors(ht.log, "post job", ht.postJob))
	mux.HandleFunc("PUT /api/jobs/{id}", http_.HandleErrors(ht.log, "update job", ht.updateJob))
	mux.HandleFunc("DELETE /api/jobs/{id}", http_.HandleErrors(ht.log, "delete job", ht.deleteJob))
}

func filterFromQuery(r *http.Request) (domain.JobFilter, error) {
	query := r.URL.Query()

	filter := domain.JobFilter{
		Query:    query.Get("query"),
		Location: query.Get("location"),
		Type:     query.Get("type"),
	}

	if raw := query.Get("companyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, &http_.RequestError{Message: fmt.Sprintf("invalid companyId %q", raw)}
		}

		filter.CompanyID = id
	}

	return filter, nil
}

func (ht *HTTPTransport) searchJobs(w http.ResponseWriter, r *http.Request) error {
	filter, err := filterFromQuery(r)
	if err != nil {
		return err
	}

	jobs, err := ht.jobSvc.SearchJobs(r.Context(), filter)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, jobs)
}

func (ht *HTTPTransport) getJob(w http.ResponseWriter, r *http.Request) error {
	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	job, err := ht.jobSvc.GetJobDetail(r.Context(), id)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, job)
}

func (ht *HTTPTransport) listCompanyJobs(w http.ResponseWriter, r *http.Request) error {
	companyID, err := http_.PathID(r, "companyId")
	if err != nil {
		return err
	}

	jobs, err := ht.jobSvc.ListJobsByCompany(r.Context(), companyID)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, jobs)
}

func (ht *HTTPTransport) postJob(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	var req JobRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	job, err := ht.jobSvc.PostJob(r.Context(), user, req.job())
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, job)
}

func (ht *HTTPTransport) updateJob(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	var patch domain.JobPatch
	if err := http_.DecodeJSON(w, r, &patch, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	job, err := ht.jobSvc.UpdateJob(r.Context(), user, id, patch)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, job)
}

func (ht *HTTPTransport) deleteJob(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	if err := ht.jobSvc.DeleteJob(r.Context(), user, id); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}
