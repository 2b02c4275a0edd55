// Package client contains the client-side building blocks for StudyShare.
//
// # Overview
//
// The package provides:
//  1. The backend contract (Client, split into AuthAPI and ResourceAPI).
//  2. HTTPClient, the JSON-over-HTTP implementation. It attaches the bearer
//     token from a TokenSource, tags each request with an X-Request-ID and
//     maps failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring the
//     SQLite token database and its embedded goose migrations.
//
// # Error Handling
//
// Transport failures and timeouts wrap ErrUnavailable. Non-2xx responses are
// returned as *APIError, which unwraps to ErrUnauthorized, ErrNotFound,
// ErrInvalidInput, ErrUnavailable or ErrUnexpected depending on the status.
// Match them with errors.Is.
package client
