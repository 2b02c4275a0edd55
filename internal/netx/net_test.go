package netx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasScheme(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://cdn.example.org/a.pdf", true},
		{"HTTPS://cdn.example.org/a.pdf", true},
		{"  https://x", true},
		{"/media/resources/a.pdf", false},
		{"media/a.pdf", false},
		{"ftp://host/a.pdf", false},
		{"httpfoo", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasScheme(tt.in), "input %q", tt.in)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		origin, p, want string
	}{
		{"http://localhost:8000", "/media/a.pdf", "http://localhost:8000/media/a.pdf"},
		{"http://localhost:8000/", "/media/a.pdf", "http://localhost:8000/media/a.pdf"},
		{"http://localhost:8000", "media/a.pdf", "http://localhost:8000/media/a.pdf"},
		{"http://localhost:8000//", "//media/a.pdf", "http://localhost:8000/media/a.pdf"},
		{"http://localhost:8000", "", "http://localhost:8000/"},
		{"", "/x", "/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinURL(tt.origin, tt.p))
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "https://cdn/x.png", Qualify("http://localhost:8000", "https://cdn/x.png"))
	assert.Equal(t, "http://localhost:8000/media/x.png", Qualify("http://localhost:8000", "/media/x.png"))
}
