// Package netx contains URL helpers shared by the API client and the preview
// resolver.
package netx

import "strings"

var remoteSchemes = []string{"http://", "https://"}

// HasScheme reports whether raw already denotes an absolute remote
// reference (http or https, case-insensitive).
func HasScheme(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range remoteSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// JoinURL qualifies p against origin, producing exactly one slash between
// them. It never fails; an empty p yields the origin with a trailing slash.
func JoinURL(origin, p string) string {
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(p, "/")
}

// Qualify returns raw unchanged when it is already absolute, otherwise it
// joins raw to origin.
func Qualify(origin, raw string) string {
	if HasScheme(raw) {
		return raw
	}
	return JoinURL(origin, raw)
}
