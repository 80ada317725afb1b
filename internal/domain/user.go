package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username or email.
	ErrUserAlreadyExists = fmt.Errorf("%w: user already exists", ErrConflict)
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidUserType is returned for a user type other than jobSeeker or employer.
	ErrInvalidUserType = fmt.Errorf("%w: invalid user type", ErrValidation)
	// ErrJobSeekersOnly is returned when an employer calls a job seeker operation.
	ErrJobSeekersOnly = fmt.Errorf("%w: only job seekers can do this", ErrForbidden)
	// ErrEmployersOnly is returned when a job seeker calls an employer operation.
	ErrEmployersOnly = fmt.Errorf("%w: only employers can do this", ErrForbidden)
	// ErrNotOwner is returned when the actor does not own the targeted entity.
	ErrNotOwner = fmt.Errorf("%w: not the owner", ErrForbidden)
)

// UserType distinguishes the two kinds of accounts. It never changes after registration.
type UserType string

const (
	UserTypeJobSeeker UserType = "jobSeeker"
	UserTypeEmployer  UserType = "employer"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	return t == UserTypeJobSeeker || t == UserTypeEmployer
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	UserType     UserType  `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsEmployer reports whether the user registered as an employer.
func (u User) IsEmployer() bool {
	return u.UserType == UserTypeEmployer
}

// IsJobSeeker reports whether the user registered as a job seeker.
func (u User) IsJobSeeker() bool {
	return u.UserType == UserTypeJobSeeker
}
