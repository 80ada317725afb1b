package authsvc

import (
	"context"
	"net/http"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=50"`
	Email    string          `json:"email" validate:"required,email,max=254"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	UserType domain.UserType `json:"userType" validate:"required,oneof=jobSeeker employer"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HTTPTransport exposes the auth service over HTTP.
type HTTPTransport struct {
	authSvc *AuthService
	limiter *http_.RateLimiter
	log     logging.Logger
	cfg     http_.HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport. A non-nil limiter throttles
// the credential endpoints per client.
func NewHTTPTransport(
	authSvc *AuthService,
	limiter *http_.RateLimiter,
	cfg http_.HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		limiter: limiter,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// RegisterRoutes sets up the auth endpoints:
// - POST /api/register: create an account and log in
// - POST /api/login: exchange credentials for a token
// - GET /api/user: the authenticated account.
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/register", ht.throttle(ht.HandleRegister))
	mux.Handle("POST /api/login", ht.throttle(ht.HandleLogin))
	mux.HandleFunc("GET /api/user", ht.HandleCurrentUser)
}

func (ht *HTTPTransport) throttle(h http.HandlerFunc) http.Handler {
	if ht.limiter == nil {
		return h
	}

	return ht.limiter.MiddlewareFunc(h)
}

// HandleRegister processes registration requests.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := ht.handleRegister(w, r); err != nil {
		http_.WriteError(w, err)
	}
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.LogFailure(ctx, log, "user register failed", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var req RegisterRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	resp, err := ht.authSvc.Register(r.Context(), RegisterInput(req))
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusCreated, resp)
}

// HandleLogin processes login requests and returns a token on success.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := ht.handleLogin(w, r); err != nil {
		http_.WriteError(w, err)
	}
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			http_.LogFailure(ctx, log, "user login failed", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req LoginRequest
	if err := http_.DecodeJSON(w, r, &req, ht.cfg.MaxBodyBytes); err != nil {
		return err
	}

	resp, err := ht.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return http_.WriteJSON(w, http.StatusOK, resp)
}

// HandleCurrentUser returns the account of the bearer token.
func (ht *HTTPTransport) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := http_.RequireUser(r)
	if err != nil {
		http_.WriteError(w, err)

		return
	}

	_ = http_.WriteJSON(w, http.StatusOK, user)
}
