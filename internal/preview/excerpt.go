package preview

import "unicode/utf8"

const (
	// ExcerptLimit is the number of characters shown by the text viewer.
	ExcerptLimit = 1000
	// TruncationMarker is appended when the text was cut.
	TruncationMarker = "..."

	// excerptFetchBytes is enough bytes to hold ExcerptLimit+1 characters of
	// any UTF-8 text, so truncation can be detected without reading the rest.
	excerptFetchBytes = (ExcerptLimit + 1) * utf8.UTFMax
)

// Excerpt returns at most ExcerptLimit characters of s and whether s was
// longer than that.
func Excerpt(s string) (string, bool) {
	n := 0
	for i := range s {
		if n == ExcerptLimit {
			return s[:i], true
		}
		n++
	}
	return s, false
}
