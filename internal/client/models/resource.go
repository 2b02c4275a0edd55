package models

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Resource is an uploaded study artifact.
type Resource struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	File          string    `json:"file"`
	Uploader      User      `json:"uploader"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	CourseCode    string    `json:"course_code"`
	Tags          []Tag     `json:"tags"`
	UploadDate    time.Time `json:"upload_date"`
	AverageRating float64   `json:"average_rating"`
}

// FileName is the last path element of the stored file reference, without
// any query string.
func (r Resource) FileName() string {
	p := r.File
	if u, err := url.Parse(p); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// TagNames returns the tag names in order.
func (r Resource) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Rating is one user's score for a resource.
type Rating struct {
	ID       int64 `json:"id"`
	Resource int64 `json:"resource"`
	User     User  `json:"user"`
	Value    int   `json:"rating_value"`
}

const (
	MinRating = 1
	MaxRating = 5
)

var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

func ValidateRating(v int) error {
	if v < MinRating || v > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

type Comment struct {
	ID        int64     `json:"id"`
	Resource  int64     `json:"resource"`
	User      User      `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrEmptyComment = errors.New("comment is empty")

// ResourceFilter narrows the resource listing.
type ResourceFilter struct {
	Subject    string
	Topic      string
	CourseCode string
	UploaderID int64
}

func (f ResourceFilter) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "subject", f.Subject)
	setNonEmpty(v, "topic", f.Topic)
	setNonEmpty(v, "course_code", f.CourseCode)
	if f.UploaderID > 0 {
		v.Set("uploader", strconv.FormatInt(f.UploaderID, 10))
	}
	return v
}

// SearchQuery is a free-text search with optional filters. Uploader matches
// the uploader's name.
type SearchQuery struct {
	Query    string
	Subject  string
	Topic    string
	Uploader string
}

func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "query", q.Query)
	setNonEmpty(v, "subject", q.Subject)
	setNonEmpty(v, "topic", q.Topic)
	setNonEmpty(v, "uploader", q.Uploader)
	return v
}

func setNonEmpty(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}

// NewResource is the metadata sent with an upload. The file travels as a
// separate multipart part.
type NewResource struct {
	Title       string
	Description string
	Subject     string
	Topic       string
	CourseCode  string
	Tags        []string
}

// Fields returns the form fields of the upload in a stable order.
func (n NewResource) Fields() [][2]string {
	return [][2]string{
		{"title", strings.TrimSpace(n.Title)},
		{"description", strings.TrimSpace(n.Description)},
		{"subject", strings.TrimSpace(n.Subject)},
		{"topic", strings.TrimSpace(n.Topic)},
		{"course_code", strings.TrimSpace(n.CourseCode)},
	}
}

// Validate requires every text field; tags are optional.
func (n NewResource) Validate() error {
	for _, f := range n.Fields() {
		if f[1] == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f[0])
		}
	}
	return nil
}

// ParseTagList splits a comma-separated tag list, trimming names and
// dropping blanks and repeats.
func ParseTagList(s string) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
