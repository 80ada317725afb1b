package authsvc

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
	"github.com/mkrupp/jobboard/internal/repo/store"
)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = fmt.Errorf("%w: password must have at most 72 bytes", domain.ErrValidation)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key file
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/jobboardsvc.key"`

	// TokenDuration is the validity duration of auth tokens
	TokenDuration time.Duration `env:"TOKEN_DURATION" default:"24h"`

	// Issuer is written to and required in every token
	Issuer string `env:"TOKEN_ISSUER" default:"jobboard"`

	// BcryptCost is the work factor of password hashes
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	UserType domain.UserType
}

// AuthService provides account registration, login and token validation.
type AuthService struct {
	Config     AuthConfig
	Users      store.UserRepository
	Log        logging.Logger
	SigningKey *rsa.PrivateKey
	Now        func() time.Time
}

// NewAuthService creates a new AuthService over users. The signing key is
// loaded from, or generated into, cfg.SigningKeyFile.
func NewAuthService(users store.UserRepository, cfg AuthConfig) (*AuthService, error) {
	signingKey, err := GetPrivateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	return &AuthService{
		Config:     cfg,
		Users:      users,
		Log:        logging.GetLogger("svc.authsvc.auth_service"),
		SigningKey: signingKey,
		Now:        time.Now,
	}, nil
}

// Register creates a new account and returns it together with a token, so
// the caller is logged in right away.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (_ *domain.AuthTokenResponse, err error) {
	log := s.Log.With(logging.Group("user", "username", in.Username, "type", in.UserType))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}

	if !in.UserType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidUserType, in.UserType)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	} else if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Users.CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
		UserType:     in.UserType,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login checks the password of username and issues a token.
// Returns domain.ErrInvalidCredentials for an unknown user or wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ *domain.AuthTokenResponse, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	user, ok, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// ValidateToken verifies a token's signature and expiration.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (claims *domain.AuthClaims, err error) {
	defer func() {
		if err != nil {
			s.Log.DebugContext(ctx, "validate token failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "token validated", logging.Group("token",
				"sub", claims.Subject,
				"exp", claims.ExpiresAt.UTC().Format(time.RFC3339),
			))
		}
	}()

	return ValidateToken(tokenString, s.Config.Issuer, s.now, &s.SigningKey.PublicKey)
}

// Authenticate resolves a token to the account it was issued for.
// Returns domain.ErrInvalidAuthToken if the token does not validate or the
// account no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	id, err := UserID(claims)
	if err != nil {
		return nil, err
	}

	user, ok, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("%w: unknown user %d", domain.ErrInvalidAuthToken, id)
	}

	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthTokenResponse, error) {
	token, err := SignToken(user, s.Config.Issuer, s.now(), s.Config.TokenDuration, s.SigningKey)
	if err != nil {
		return nil, err
	}

	return &domain.AuthTokenResponse{Token: token, User: *user}, nil
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}

	return s.Now().UTC()
}
