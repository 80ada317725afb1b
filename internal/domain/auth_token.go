package domain

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoAuthToken is returned when an authentication token is required but not provided.
	ErrNoAuthToken = fmt.Errorf("%w: no auth token", ErrUnauthenticated)
	// ErrInvalidAuthToken is returned when a token's signature is invalid or it has expired.
	ErrInvalidAuthToken = fmt.Errorf("%w: invalid auth token", ErrUnauthenticated)
)

// AuthClaims is the payload of a signed auth token. The subject holds the user id.
type AuthClaims struct {
	jwt.RegisteredClaims

	Username string   `json:"username"`
	UserType UserType `json:"userType"`
}

// AuthTokenResponse represents a response containing an authentication token
// and the account it was issued for.
type AuthTokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
