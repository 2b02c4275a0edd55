// Package services contains the application services behind the CLI
// commands. They gate protected operations on the session and wrap backend
// errors with the operation that failed.
package services
