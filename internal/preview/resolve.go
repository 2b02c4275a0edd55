package preview

import (
	"fmt"

	"github.com/studyshare/studyshare-client/internal/netx"
)

// ResolvedFileRef is the category of a file and the URL a viewer should load.
type ResolvedFileRef struct {
	Category Category
	URL      string
}

// Resolver qualifies stored file paths against the backend origin.
type Resolver struct {
	origin string
	cache  Cache
}

// NewResolver returns a Resolver for the backend at origin,
// e.g. "http://localhost:8000".
func NewResolver(origin string) *Resolver {
	return &Resolver{origin: origin}
}

// ServeURL is the serve endpoint for the resource with the given id.
func (r *Resolver) ServeURL(resourceID int64) string {
	return netx.JoinURL(r.origin, fmt.Sprintf("/api/resources/%d/serve/", resourceID))
}

// DownloadURL is the raw download endpoint for the resource with the given id.
func (r *Resolver) DownloadURL(resourceID int64) string {
	return netx.JoinURL(r.origin, fmt.Sprintf("/api/resources/%d/download/", resourceID))
}

// Resolve classifies fileName and picks the URL to load. A resourceID > 0
// always selects the serve endpoint; otherwise an absolute rawURL is kept
// as is and a relative one is qualified against the origin.
func (r *Resolver) Resolve(fileName, rawURL string, resourceID int64) ResolvedFileRef {
	ref := ResolvedFileRef{Category: r.cache.Classify(fileName)}

	switch {
	case resourceID > 0:
		ref.URL = r.ServeURL(resourceID)
	default:
		ref.URL = netx.Qualify(r.origin, rawURL)
	}
	return ref
}
