package client

import (
	"context"
	"io"

	"github.com/studyshare/studyshare-client/internal/client/models"
)

// AuthAPI is the part of the backend the session store talks to.
type AuthAPI interface {
	// Me fetches the profile of the user owning accessToken.
	Me(ctx context.Context, accessToken string) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	// Logout blacklists the refresh token on the server.
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// ResourceAPI covers resource browsing, ratings, comments and files.
type ResourceAPI interface {
	ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	GetResource(ctx context.Context, id int64) (*models.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	Search(ctx context.Context, q models.SearchQuery) ([]models.Resource, error)
	Tags(ctx context.Context) ([]models.Tag, error)

	Ratings(ctx context.Context, resourceID int64) ([]models.Rating, error)
	Rate(ctx context.Context, resourceID int64, value int) (*models.Rating, error)
	Comments(ctx context.Context, resourceID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, resourceID int64, content string) (*models.Comment, error)

	// UploadResource posts a new resource as multipart form data.
	UploadResource(ctx context.Context, nr models.NewResource, fileName string, file io.Reader) (*models.Resource, error)

	// Download streams the raw file to w and returns the server-suggested
	// file name, if any.
	Download(ctx context.Context, resourceID int64, w io.Writer) (string, error)
	FetchText(ctx context.Context, url string, maxBytes int64) (string, error)
	Probe(ctx context.Context, url string) error
}

// Client is the full StudyShare backend contract.
type Client interface {
	AuthAPI
	ResourceAPI
	Ping(ctx context.Context) error
	Close() error
}

// TokenSource supplies the bearer token for protected calls. An empty
// string means the call goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}
