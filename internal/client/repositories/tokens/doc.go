// Package tokens stores the access/refresh token pair in the local SQLite
// database (table auth_tokens, keys access_token and refresh_token).
package tokens
