package applicationsvc

import (
	"net/http"

	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// ApplyRequest is the body of POST /api/applications.
type ApplyRequest struct {
	JobID       int64   `json:"jobId" validate:"required,gt=0"`
	CoverLetter *string `json:"coverLetter" validate:"omitempty,max=10000"`
}

// StatusRequest is the body of PUT /api/applications/{id}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HTTPTransport exposes the application service over HTTP.
type HTTPTransport struct {
	applicationSvc *ApplicationService
	log            logging.Logger
	cfg            http_.HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

func NewHTTPTransport(applicationSvc *ApplicationService, cfg http_.HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		applicationSvc: applicationSvc,
		log:            logging.GetLogger("svc.applicationsvc.http_transport"),
		cfg:            cfg,
	}
}

// RegisterRoutes sets up the application endpoints.
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/applications", http_.HandleErrors(ht.log, "apply", ht.apply))
	mux.HandleFunc("GET /api/applications/jobseeker",
		http_.HandleErrors(ht.log, "list job seeker applications", ht.listForJobSeeker))
	mux.HandleFunc("GET /api/applications/employer",
		http_.HandleErrors(ht.log, "list employer applications", ht.listForEmployer))
	mux.HandleFunc("PUT /api/applications/{id}/status",
		http_.HandleErrors(ht.log, "set application status", ht.setStatus))
}

func (ht *HTTPTransport) apply(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	var req ApplyRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	application, err := ht.applicationSvc.Apply(r.Context(), user, req.JobID, req.CoverLetter)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, application)
}

func (ht *HTTPTransport) listForJobSeeker(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	applications, err := ht.applicationSvc.ListForJobSeeker(r.Context(), user)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, applications)
}

func (ht *HTTPTransport) listForEmployer(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	applications, err := ht.applicationSvc.ListForEmployer(r.Context(), user)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, applications)
}

func (ht *HTTPTransport) setStatus(w http.ResponseWriter, r *http.Request) error {
	user, err := http_.RequireUser(r)
	if err != nil {
		return err
	}

	id, err := http_.PathID(r, "id")
	if err != nil {
		return err
	}

	var req StatusRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	application, err := ht.applicationSvc.SetStatus(r.Context(), user, id, req.Status)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, application)
}
