// Package models defines the StudyShare API data types used by the client.
package models

import (
	"errors"
	"strings"
	"time"
)

// Role is the account type of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User is the identity record owned by the backend. The client never edits
// it, only replaces it on auth events.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	UniversityName string    `json:"university_name"`
	DateJoined     time.Time `json:"date_joined"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	User    User   `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name           string `json:"name"`
	UniversityName string `json:"university_name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           Role   `json:"role"`
}

var (
	ErrMissingField = errors.New("required field is empty")
	ErrInvalidRole  = errors.New("role must be student or teacher")
	ErrInvalidEmail = errors.New("invalid email")
)

// Validate checks the fields the backend requires before a round-trip.
func (r Registration) Validate() error {
	for _, v := range []string{r.Name, r.UniversityName, r.Email, r.Password} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingField
		}
	}
	if !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if !r.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
