package profilesvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/jobboard/internal/domain"
	context_ "github.com/mkrupp/jobboard/internal/infra/context"
	http_ "github.com/mkrupp/jobboard/internal/infra/transport/http"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/profilesvc"
)

//nolint:gochecknoglobals
var (
	seeker   = &domain.User{ID: 1, Username: "sam", UserType: domain.UserTypeJobSeeker}
	employer = &domain.User{ID: 2, Username: "acme", UserType: domain.UserTypeEmployer}
	rival    = &domain.User{ID: 3, Username: "globex", UserType: domain.UserTypeEmployer}
)

func ptr[T any](v T) *T {
	return &v
}

func setupTestService(t *testing.T) *profilesvc.ProfileService {
	t.Helper()

	return profilesvc.NewProfileService(store.NewMemoryRepository())
}

func TestCreateJobSeekerProfile(t *testing.T) {
	t.Parallel()

	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateJobSeekerProfile(ctx, employer, domain.JobSeekerProfile{FirstName: "A", LastName: "B"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	profile, err := svc.CreateJobSeekerProfile(ctx, seeker, domain.JobSeekerProfile{
		UserID: 99, FirstName: "Sam", LastName: "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, seeker.ID, profile.UserID, "owner is the caller")
	assert.Equal(t, []string{}, profile.Skills)

	_, err = svc.CreateJobSeekerProfile(ctx, seeker, domain.JobSeekerProfile{FirstName: "Sam", LastName: "Again"})
	require.ErrorIs(t, err, domain.ErrConflict)

	fetched, err := svc.GetJobSeekerProfileByUserID(ctx, seeker.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, fetched)

	_, err = svc.GetJobSeekerProfileByUserID(ctx, employer.ID)
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestUpdateJobSeekerProfile(t *testing.T) {
	t.Parallel()

	svc := setupTestService(t)
	ctx := context.Background()

	profile, err := svc.CreateJobSeekerProfile(ctx, seeker, domain.JobSeekerProfile{
		FirstName: "Sam", LastName: "Smith", Skills: []string{"go"},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		user    *domain.User
		id      int64
		wantErr error
	}{
		{name: "missing profile", user: seeker, id: 42, wantErr: domain.ErrNotFound},
		{name: "other user", user: employer, id: profile.ID, wantErr: domain.ErrForbidden},
		{name: "owner", user: seeker, id: profile.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := svc.UpdateJobSeekerProfile(ctx, tt.user, tt.id, domain.JobSeekerProfilePatch{
				Title:  ptr("Engineer"),
				Skills: ptr([]string{"go", "sql"}),
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Sam", updated.FirstName)
			assert.Equal(t, "Engineer", *updated.Title)
			assert.Equal(t, []string{"go", "sql"}, updated.Skills)
		})
	}
}

func TestCompanyProfileRoundTrip(t *testing.T) {
	t.Parallel()

	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompanyProfile(ctx, seeker, domain.CompanyProfile{Name: "Nope"})
	require.ErrorIs(t, err, domain.ErrEmployersOnly)

	want := domain.CompanyProfile{
		Name:        "Acme",
		Description: ptr("Anvils"),
		Industry:    ptr("Manufacturing"),
		Location:    ptr("Desert"),
		Website:     ptr("https://acme.example"),
		LogoURL:     ptr("/api/assets/x"),
		Size:        ptr("11-50"),
	}

	created, err := svc.CreateCompanyProfile(ctx, employer, want)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	fetched, err := svc.GetCompanyProfileByUserID(ctx, employer.ID)
	require.NoError(t, err)

	want.ID = fetched.ID
	want.UserID = employer.ID
	assert.Equal(t, want, *fetched)

	byID, err := svc.GetCompanyProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, fetched, byID)

	_, err = svc.UpdateCompanyProfile(ctx, rival, created.ID, domain.CompanyProfilePatch{Name: ptr("Stolen")})
	require.ErrorIs(t, err, domain.ErrNotOwner)

	updated, err := svc.UpdateCompanyProfile(ctx, employer, created.ID, domain.CompanyProfilePatch{Name: ptr("Acme Inc")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", updated.Name)
	assert.Equal(t, "Anvils", *updated.Description)

	_, err = svc.CreateCompanyProfile(ctx, rival, domain.CompanyProfile{Name: "Globex"})
	require.NoError(t, err)

	all, err := svc.ListCompanyProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme Inc", all[0].Name)
	assert.Equal(t, "Globex", all[1].Name)
}

func TestListCompanyProfilesEmpty(t *testing.T) {
	t.Parallel()

	profiles, err := setupTestService(t).ListCompanyProfiles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func serve(t *testing.T, handler http.Handler, user *domain.User, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(context_.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestHTTPTransport(t *testing.T) {
	t.Parallel()

	mux := http_.NewServeMux(profilesvc.NewHTTPTransport(setupTestService(t), http_.HTTPTransportConfig{}))

	rec := serve(t, mux, nil, http.MethodPost, "/api/profiles/company", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, mux, seeker, http.MethodPost, "/api/profiles/company", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, mux, employer, http.MethodPost, "/api/profiles/company", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, mux, employer, http.MethodPost, "/api/profiles/company", `{"name":"Acme","size":"11-50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var company domain.CompanyProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &company))
	assert.Equal(t, employer.ID, company.UserID)

	rec = serve(t, mux, employer, http.MethodPost, "/api/profiles/company", `{"name":"Acme again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, mux, nil, http.MethodGet, "/api/profiles/company/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, mux, nil, http.MethodGet, "/api/companies/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, mux, nil, http.MethodGet, "/api/companies/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, mux, nil, http.MethodGet, "/api/companies/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, mux, nil, http.MethodGet, "/api/companies", "")
	assert.JSONEq(t, `[{"id":1,"userId":2,"name":"Acme","description":null,"industry":null,"location":null,`+
		`"website":null,"logoUrl":null,"size":"11-50"}]`, rec.Body.String())

	rec = serve(t, mux, rival, http.MethodPut, "/api/profiles/company/1", `{"name":"Mine"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, mux, seeker, http.MethodPost, "/api/profiles/jobseeker",
		`{"firstName":"Sam","lastName":"Smith","skills":["go"],"experience":[{"company":"Initech","years":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, mux, nil, http.MethodGet, "/api/profiles/jobseeker/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile domain.JobSeekerProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.JSONEq(t, `[{"company":"Initech","years":2}]`, string(profile.Experience))

	rec = serve(t, mux, seeker, http.MethodPut, "/api/profiles/jobseeker/1", `{"bio":"Gopher"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bio":"Gopher"`)

	rec = serve(t, mux, nil, http.MethodGet, "/api/profiles/jobseeker/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
