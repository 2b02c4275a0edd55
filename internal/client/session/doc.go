// Package session owns the client's authentication state.
//
// A Store moves through three states:
//
//	Bootstrapping --> Authenticated | Anonymous
//	Authenticated --logout--> Anonymous
//	Anonymous --login/register--> Authenticated
//
// Only the token pair is persisted (see repositories/tokens); the user
// profile is always re-fetched from the backend. Until the first bootstrap
// resolves, callers observe Bootstrapping and Require returns ErrNotReady,
// so protected views show a loading state instead of guessing.
//
// Every auth call takes a ticket from a monotonically increasing counter.
// A call's result is applied only if no newer mutation has been applied in
// the meantime; older results are dropped and logged. Logout always
// applies and so invalidates any login, register or bootstrap still in
// flight.
package session
