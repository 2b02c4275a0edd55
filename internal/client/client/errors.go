package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnexpected    = errors.New("unexpected response")
	ErrNotConfigured = errors.New("api base url is not configured")
)

// APIError is a non-2xx response from the backend. It unwraps to the
// sentinel matching its status code, so callers can use errors.Is.
type APIError struct {
	Status int
	// Message is the server-provided reason, flattened from DRF-style
	// {"detail": ...} or {"field": ["msg", ...]} bodies.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusBadRequest:
		return ErrInvalidInput
	case e.Status == http.StatusBadGateway || e.Status == http.StatusServiceUnavailable || e.Status == http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return ErrUnexpected
	}
}

// flattenMessage turns a decoded error body into one line. Keys are sorted
// so the result is stable.
func flattenMessage(body map[string]any) string {
	if d, ok := body["detail"]; ok {
		return fmt.Sprint(d)
	}
	if e, ok := body["error"]; ok {
		return fmt.Sprint(e)
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var msgs []string
		switch v := body[k].(type) {
		case []any:
			for _, m := range v {
				msgs = append(msgs, fmt.Sprint(m))
			}
		default:
			msgs = append(msgs, fmt.Sprint(v))
		}
		text := strings.Join(msgs, " ")
		if k == "non_field_errors" {
			parts = append(parts, text)
			continue
		}
		parts = append(parts, k+": "+text)
	}
	return strings.Join(parts, "; ")
}
