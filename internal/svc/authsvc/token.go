package authsvc

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/jobboard/internal/domain"
)

// SignToken issues an RS256 signed token for user, valid for ttl from now.
func SignToken(user *domain.User, issuer string, now time.Time, ttl time.Duration, key *rsa.PrivateKey) (string, error) {
	claims := domain.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: user.Username,
		UserType: user.UserType,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// ValidateToken verifies the signature, issuer and validity window of
// tokenString against publicKey, using now as the current time.
// Returns domain.ErrInvalidAuthToken for any validation failure.
func ValidateToken(
	tokenString string,
	issuer string,
	now func() time.Time,
	publicKey *rsa.PublicKey,
) (*domain.AuthClaims, error) {
	claims := new(domain.AuthClaims)

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	return claims, nil
}

// UserID returns the user id carried in the subject of claims.
func UserID(claims *domain.AuthClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q", domain.ErrInvalidAuthToken, claims.Subject)
	}

	return id, nil
}
