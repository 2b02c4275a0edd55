package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studyshare/studyshare-client/internal/client/models"
	"github.com/studyshare/studyshare-client/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// Register prompts for the profile fields and creates an account. A
// successful registration signs the user in.
func (a *App) Register(ctx context.Context) error {
	var reg models.Registration

	prompts := []struct {
		text string
		dst  *string
	}{
		{"Enter full name", &reg.Name},
		{"Enter university", &reg.UniversityName},
		{"Enter email", &reg.Email},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	role, err := getSimpleText(a.reader, "Enter role (student/teacher) [student]", a.out)
	if err != nil {
		return err
	}
	reg.Role = models.Role(strings.ToLower(role))
	if role == "" {
		reg.Role = models.RoleStudent
	}

	reg.Password, err = getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Register(ctx, reg)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Welcome, %s! Your account has been created.\n", u.Name)
	return nil
}

// Login prompts for credentials and signs in. On failure the session stays
// as it was.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Logged in as %s (%s).\n", u.Name, u.Role)
	return nil
}

// Logout always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.println("Logged out.")
	return nil
}

// WhoAmI prints the signed-in user's profile.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		return a.fail(session.ErrNotAuthenticated)
	}

	a.printf("%s <%s>\n", u.Name, u.Email)
	a.printf("  Role:        %s\n", u.Role)
	a.printf("  University:  %s\n", u.UniversityName)
	if !u.DateJoined.IsZero() {
		a.printf("  Joined:      %s\n", u.DateJoined.Format("2006-01-02"))
	}
	return nil
}

// Status reports the session state, token expiry and server reachability.
func (a *App) Status(ctx context.Context) error {
	snap := a.session.Snapshot()
	a.printf("Session:  %s\n", snap.State)
	if snap.User != nil {
		a.printf("User:     %s (id %d)\n", snap.User.Email, snap.User.ID)
	}
	if info, ok := a.session.TokenInfo(); ok && !info.ExpiresAt.IsZero() {
		left := time.Until(info.ExpiresAt).Round(time.Second)
		if left > 0 {
			a.printf("Token:    expires in %s\n", left)
		} else {
			a.println("Token:    expired")
		}
	}

	server := "reachable"
	if err := a.api.Ping(ctx); err != nil {
		server = "unavailable"
	}
	a.printf("Server:   %s (%s)\n", a.config.APIBaseURL, server)
	return nil
}

func formatUser(u models.User) string {
	if u.Name == "" {
		return fmt.Sprintf("user #%d", u.ID)
	}
	return u.Name
}
