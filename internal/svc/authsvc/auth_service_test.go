package authsvc_test

import (
	"context"
	"crypto/rsa"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
	"github.com/mkrupp/jobboard/internal/svc/authsvc"
)

var ErrRepoError = errors.New("repository error")

//nolint:gochecknoglobals
var testSigningKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := authsvc.GeneratePrivateKey(authsvc.DefaultKeySize)
	if err != nil {
		panic(err)
	}

	return key
})

// failingUserRepository wraps a UserRepository and fails every call while err is set.
type failingUserRepository struct {
	store.UserRepository

	mu  sync.Mutex
	err error
}

func (m *failingUserRepository) fail() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.err
}

func (m *failingUserRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}

	return m.UserRepository.CreateUser(ctx, user)
}

func (m *failingUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	if err := m.fail(); err != nil {
		return nil, false, err
	}

	return m.UserRepository.GetUserByUsername(ctx, username)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func setupTestService(t *testing.T) (*authsvc.AuthService, *failingUserRepository, *clock) {
	t.Helper()

	users := &failingUserRepository{UserRepository: store.NewMemoryRepository()}
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	svc := &authsvc.AuthService{
		Config: authsvc.AuthConfig{
			TokenDuration: time.Hour,
			Issuer:        "jobboard-test",
			BcryptCost:    bcrypt.MinCost,
		},
		Users:      users,
		Log:        logging.GetLogger("test.authsvc"),
		SigningKey: testSigningKey(),
		Now:        clk.Now,
	}

	return svc, users, clk
}

func register(t *testing.T, svc *authsvc.AuthService, username string, userType domain.UserType) *domain.AuthTokenResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), authsvc.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		UserType: userType,
	})
	require.NoError(t, err)

	return resp
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	svc, users, _ := setupTestService(t)
	register(t, svc, "existinguser", domain.UserTypeJobSeeker)

	tests := []struct {
		name    string
		input   authsvc.RegisterInput
		repoErr error
		wantErr error
	}{
		{
			name: "successful registration",
			input: authsvc.RegisterInput{
				Username: "newuser", Email: "new@example.com", Password: "password123", UserType: domain.UserTypeEmployer,
			},
		},
		{
			name: "duplicate username",
			input: authsvc.RegisterInput{
				Username: "existinguser", Email: "other@example.com", Password: "password123", UserType: domain.UserTypeEmployer,
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name: "duplicate email",
			input: authsvc.RegisterInput{
				Username: "someoneelse", Email: "existinguser@example.com", Password: "password123",
				UserType: domain.UserTypeEmployer,
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "invalid user type",
			input: authsvc.RegisterInput{
				Username: "admin", Email: "admin@example.com", Password: "password123", UserType: "admin",
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing password",
			input:   authsvc.RegisterInput{Username: "nopass", Email: "np@example.com", UserType: domain.UserTypeJobSeeker},
			wantErr: domain.ErrValidation,
		},
		{
			name: "password too long",
			input: authsvc.RegisterInput{
				Username: "longpass", Email: "lp@example.com", UserType: domain.UserTypeJobSeeker,
				Password: string(make([]byte, 100)),
			},
			wantErr: authsvc.ErrPasswordTooLong,
		},
		{
			name: "repository error",
			input: authsvc.RegisterInput{
				Username: "erroruser", Email: "err@example.com", Password: "password123", UserType: domain.UserTypeJobSeeker,
			},
			repoErr: ErrRepoError,
			wantErr: ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users.mu.Lock()
			users.err = tt.repoErr
			users.mu.Unlock()

			resp, err := svc.Register(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)

				return
			}

			require.NoError(t, err)
			assert.NotZero(t, resp.User.ID)
			assert.Equal(t, tt.input.UserType, resp.User.UserType)
			assert.NotEqual(t, []byte(tt.input.Password), resp.User.PasswordHash)

			claims, err := svc.ValidateToken(context.Background(), resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.input.Username, claims.Username)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc, users, _ := setupTestService(t)
	registered := register(t, svc, "testuser", domain.UserTypeEmployer)

	tests := []struct {
		name     string
		username string
		password string
		repoErr  error
		wantErr  error
	}{
		{name: "successful login", username: "testuser", password: "password123"},
		{name: "wrong password", username: "testuser", password: "wrongpass", wantErr: domain.ErrInvalidCredentials},
		{name: "user not found", username: "nonexistent", password: "anypass", wantErr: domain.ErrInvalidCredentials},
		{
			name: "repository error", username: "testuser", password: "password123",
			repoErr: ErrRepoError, wantErr: ErrRepoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users.mu.Lock()
			users.err = tt.repoErr
			users.mu.Unlock()

			resp, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, registered.User.ID, resp.User.ID)

			user, err := svc.Authenticate(context.Background(), resp.Token)
			require.NoError(t, err)
			assert.Equal(t, "testuser", user.Username)
			assert.Equal(t, domain.UserTypeEmployer, user.UserType)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Parallel()

	svc, _, clk := setupTestService(t)
	resp := register(t, svc, "testuser", domain.UserTypeJobSeeker)

	otherKey, err := authsvc.GeneratePrivateKey(1024)
	require.NoError(t, err)

	foreign, err := authsvc.SignToken(&resp.User, "jobboard-test", clk.Now(), time.Hour, otherKey)
	require.NoError(t, err)

	wrongIssuer, err := authsvc.SignToken(&resp.User, "someone-else", clk.Now(), time.Hour, svc.SigningKey)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: resp.Token},
		{name: "invalid token format", token: "invalid-token", wantErr: domain.ErrInvalidAuthToken},
		{name: "empty token", token: "", wantErr: domain.ErrInvalidAuthToken},
		{name: "signed with another key", token: foreign, wantErr: domain.ErrInvalidAuthToken},
		{name: "wrong issuer", token: wrongIssuer, wantErr: domain.ErrInvalidAuthToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, domain.ErrUnauthenticated)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "testuser", claims.Username)
			assert.Equal(t, domain.UserTypeJobSeeker, claims.UserType)
			assert.True(t, claims.ExpiresAt.After(clk.Now()))
		})
	}
}

func TestAuthService_TokenExpires(t *testing.T) {
	t.Parallel()

	svc, _, clk := setupTestService(t)
	resp := register(t, svc, "testuser", domain.UserTypeJobSeeker)

	clk.Advance(59 * time.Minute)

	_, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)

	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestAuthService_AuthenticateUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, clk := setupTestService(t)

	token, err := authsvc.SignToken(&domain.User{ID: 999, Username: "ghost"}, "jobboard-test", clk.Now(), time.Hour,
		svc.SigningKey)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, domain.ErrInvalidAuthToken)
}

func TestGetPrivateKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys", "signing.key")

	generated, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)

	loaded, err := authsvc.GetPrivateKey(path)
	require.NoError(t, err)
	assert.True(t, generated.Equal(loaded))
}

func TestDecodePrivateKey_Invalid(t *testing.T) {
	t.Parallel()

	_, err := authsvc.DecodePrivateKey(strings.NewReader("not a key"))
	require.ErrorIs(t, err, authsvc.ErrInvalidSigningKey)
}
