package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/jobboard/internal/domain"
	context_ "github.com/mkrupp/jobboard/internal/infra/context"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
)

var errBoom = errors.New("boom")

func TestStatusAndMessageFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"precondition", fmt.Errorf("post job: %w", domain.ErrNoCompanyProfile), 400, "create company profile first"},
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), 400, "title is required"},
		{"unauthenticated", domain.ErrNoAuthToken, 401, "no auth token"},
		{"credentials", errors.Join(domain.ErrInvalidCredentials, domain.ErrUserNotFound), 401, "invalid credentials"},
		{"forbidden", fmt.Errorf("update job: %w", domain.ErrForbidden), 403, "forbidden"},
		{"not found", fmt.Errorf("get job: %w", domain.ErrJobNotFound), 404, "job not found"},
		{"conflict", fmt.Errorf("apply: %w", domain.ErrAlreadyApplied), 409, "already applied to this job"},
		{"too large", domain.ErrAssetTooLarge, 413, "asset too large"},
		{"media type", domain.ErrUnsupportedMediaType, 415, "unsupported media type"},
		{"internal", fmt.Errorf("query: %w", errBoom), 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.status, http_.StatusFromError(tt.err))
			assert.Equal(t, tt.message, http_.MessageFromError(tt.err))
		})
	}
}

type createJobRequest struct {
	Title string `json:"title" validate:"required,min=1"`
	Type  string `json:"type" validate:"required,oneof=Full-time Part-time"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantFields []string
		wantErr    bool
	}{
		{name: "valid", body: `{"title":"Engineer","type":"Full-time"}`},
		{name: "empty body", body: ``, wantErr: true},
		{name: "malformed", body: `{"title":`, wantErr: true},
		{name: "missing fields", body: `{}`, wantErr: true, wantFields: []string{"title", "type"}},
		{name: "bad enum", body: `{"title":"x","type":"Gig"}`, wantErr: true, wantFields: []string{"type"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst createJobRequest
			err := http_.DecodeJSON(w, r, &dst, 0)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Engineer", dst.Title)

				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)

			var reqErr *http_.RequestError
			require.ErrorAs(t, err, &reqErr)

			fields := make([]string, 0, len(reqErr.Fields))
			for _, f := range reqErr.Fields {
				fields = append(fields, f.Field)
			}

			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"`+strings.Repeat("x", 64)+`"}`))
	w := httptest.NewRecorder()

	var dst createJobRequest
	err := http_.DecodeJSON(w, r, &dst, 16)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestWriteErrorBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	status := http_.WriteError(w, &http_.RequestError{
		Message: "invalid request body",
		Fields:  []http_.FieldError{{Field: "title", Message: "is required"}},
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"message":"invalid request body","errors":[{"field":"title","message":"is required"}]}`,
		w.Body.String())
}

func TestPathID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := http_.PathID(r, "id")
		if err != nil {
			http_.WriteError(w, err)

			return
		}

		_ = http_.WriteJSON(w, http.StatusOK, id)
	})

	for path, want := range map[string]int{"/jobs/12": 200, "/jobs/abc": 400, "/jobs/0": 400} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	var seen string

	handler := http_.TracingMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = context_.TraceIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(http_.TraceIDHeader, "given-id")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "given-id", seen)
	assert.Equal(t, "given-id", w.Header().Get(http_.TraceIDHeader))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get(http_.TraceIDHeader))
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	handler := http_.RescueingMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}), logging.NewNopLogger())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
}

type stubAuthenticator map[string]*domain.User

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if user, ok := s[token]; ok {
		return user, nil
	}

	return nil, domain.ErrInvalidAuthToken
}

func TestAuthenticatingMiddleware(t *testing.T) {
	t.Parallel()

	auth := stubAuthenticator{"good": {ID: 3, Username: "acme", UserType: domain.UserTypeEmployer}}

	handler := http_.AuthenticatingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := http_.RequireUser(r)
		if err != nil {
			http_.WriteError(w, err)

			return
		}

		_ = http_.WriteJSON(w, http.StatusOK, user.ID)
	}), auth, logging.NewNopLogger())

	tests := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
		{"bearer good", http.StatusOK},
		{"Bearer bad", http.StatusUnauthorized},
		{"Basic Zm9vOmJhcg==", http.StatusUnauthorized},
		{"Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, tt.status, w.Code, tt.header)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	limiter := http_.NewRateLimiter(http_.RateLimitConfig{Rate: 0.001, Burst: 2})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)

	for range 3 {
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = "10.0.0.1:4711"

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{204, 204, 429}, codes)

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "10.0.0.2:4711"

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients have their own bucket")
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	metrics := http_.NewMetrics("test")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := metrics.Middleware(mux)

	for _, path := range []string{"/api/jobs/1", "/api/jobs/2", "/nope"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP test_http_requests_total Total number of HTTP requests handled.
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="GET /api/jobs/{id}",status="200"} 2
test_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected),
		"test_http_requests_total"))

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "test_http_inflight_requests 0")
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	http_.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleErrors(t *testing.T) {
	t.Parallel()

	log := logging.NewNopLogger()

	failing := http_.HandleErrors(log, "get thing", func(http.ResponseWriter, *http.Request) error {
		return fmt.Errorf("get thing: %w", domain.ErrJobNotFound)
	})

	w := httptest.NewRecorder()
	failing(w, httptest.NewRequest(http.MethodGet, "/things/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"job not found"}`, w.Body.String())

	ok := http_.HandleErrors(log, "get thing", func(w http.ResponseWriter, _ *http.Request) error {
		return http_.WriteJSON(w, http.StatusOK, map[string]int{"id": 1})
	})

	w = httptest.NewRecorder()
	ok(w, httptest.NewRequest(http.MethodGet, "/things/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}
