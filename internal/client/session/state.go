package session

import (
	"errors"

	"github.com/studyshare/studyshare-client/internal/client/models"
)

type State uint8

const (
	Bootstrapping State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

var (
	// ErrNotReady means bootstrap has not resolved yet.
	ErrNotReady = errors.New("session is still loading")
	// ErrNotAuthenticated is the redirect-to-login signal for protected views.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSuperseded is returned when a newer session change (typically a
	// logout) landed while the call was in flight.
	ErrSuperseded = errors.New("superseded by a newer session change")
	ErrClosed     = errors.New("session store is closed")
)

// Session is the in-memory auth value. User is non-nil iff the state is
// Authenticated.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Snapshot is a consistent read of state and user.
type Snapshot struct {
	State State
	User  *models.User
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
