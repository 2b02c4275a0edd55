package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studyshare/studyshare-client/internal/client/client"
	"github.com/studyshare/studyshare-client/internal/client/models"
	"github.com/studyshare/studyshare-client/internal/filex"
	"github.com/studyshare/studyshare-client/internal/logging"
	"github.com/studyshare/studyshare-client/internal/preview"
)

var (
	ErrNotOwner    = errors.New("only the uploader can delete a resource")
	ErrEmptySearch = errors.New("search needs a query or at least one filter")
	ErrInvalidID   = errors.New("resource id must be a positive integer")
	ErrNotAFile    = errors.New("upload path is not a regular file")
)

// SessionGate is the part of the session store services depend on.
type SessionGate interface {
	Require() error
	User() *models.User
}

// ResourceService covers everything a signed-in user can do with resources.
type ResourceService interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error)
	Mine(ctx context.Context) ([]models.Resource, error)
	Get(ctx context.Context, id int64) (*models.Resource, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q models.SearchQuery) ([]models.Resource, error)
	Tags(ctx context.Context) ([]models.Tag, error)

	Ratings(ctx context.Context, id int64) ([]models.Rating, error)
	Rate(ctx context.Context, id int64, value int) (*models.Rating, error)
	Comments(ctx context.Context, id int64) ([]models.Comment, error)
	Comment(ctx context.Context, id int64, content string) (*models.Comment, error)

	// Upload creates a resource from the local file at path.
	Upload(ctx context.Context, nr models.NewResource, path string) (*models.Resource, error)

	// Download saves the file into the download directory and returns the
	// path written.
	Download(ctx context.Context, id int64) (string, error)
	Preview(ctx context.Context, w io.Writer, id int64) (preview.Outcome, error)
}

type resourceService struct {
	api         client.ResourceAPI
	sess        SessionGate
	renderer    *preview.Renderer
	downloadDir string
	log         logging.Logger
}

func NewResourceService(api client.ResourceAPI, sess SessionGate, renderer *preview.Renderer,
	downloadDir string, log logging.Logger) ResourceService {
	return &resourceService{
		api:         api,
		sess:        sess,
		renderer:    renderer,
		downloadDir: downloadDir,
		log:         log,
	}
}

// ParseID parses a resource id typed by the user.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func checkID(id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return nil
}

func (s *resourceService) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	res, err := s.api.ListResources(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return res, nil
}

func (s *resourceService) Mine(ctx context.Context) ([]models.Resource, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	u := s.sess.User()
	if u == nil {
		return nil, client.ErrUnauthorized
	}
	res, err := s.api.ListResources(ctx, models.ResourceFilter{UploaderID: u.ID})
	if err != nil {
		return nil, fmt.Errorf("list own resources: %w", err)
	}
	return res, nil
}

func (s *resourceService) Get(ctx context.Context, id int64) (*models.Resource, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	r, err := s.api.GetResource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get resource %d: %w", id, err)
	}
	return r, nil
}

func (s *resourceService) Delete(ctx context.Context, id int64) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u := s.sess.User(); u == nil || r.Uploader.ID != u.ID {
		return ErrNotOwner
	}
	if err := s.api.DeleteResource(ctx, id); err != nil {
		return fmt.Errorf("delete resource %d: %w", id, err)
	}
	s.log.Info(ctx, "resource deleted", "resource_id", id)
	return nil
}

func (s *resourceService) Search(ctx context.Context, q models.SearchQuery) ([]models.Resource, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if len(q.Values()) == 0 {
		return nil, ErrEmptySearch
	}
	res, err := s.api.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

func (s *resourceService) Tags(ctx context.Context) ([]models.Tag, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	tags, err := s.api.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *resourceService) Ratings(ctx context.Context, id int64) ([]models.Rating, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	r, err := s.api.Ratings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return r, nil
}

func (s *resourceService) Rate(ctx context.Context, id int64, value int) (*models.Rating, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := models.ValidateRating(value); err != nil {
		return nil, err
	}
	r, err := s.api.Rate(ctx, id, value)
	if err != nil {
		return nil, fmt.Errorf("rate resource %d: %w", id, err)
	}
	return r, nil
}

func (s *resourceService) Comments(ctx context.Context, id int64) ([]models.Comment, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	c, err := s.api.Comments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return c, nil
}

func (s *resourceService) Comment(ctx context.Context, id int64, content string) (*models.Comment, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrEmptyComment
	}
	c, err := s.api.AddComment(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

func (s *resourceService) Download(ctx context.Context, id int64) (string, error) {
	if err := s.sess.Require(); err != nil {
		return "", err
	}
	if err := checkID(id); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(s.downloadDir)
	if err != nil {
		return "", fmt.Errorf("download dir: %w", err)
	}

	// The server name is only known once the response arrives, so the body
	// goes to a temp file first and is renamed afterwards.
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("download resource %d: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	name, err := s.api.Download(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download resource %d: %w", id, err)
	}

	if name == "" {
		name = s.storedFileName(ctx, id)
	}
	name = filex.SafeName(name, fmt.Sprintf("resource-%d", id))
	dst, err := filex.CreateUnique(dir, name)
	if err != nil {
		return "", fmt.Errorf("download resource %d: %w", id, err)
	}
	target := dst.Name()
	_ = dst.Close()

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("download resource %d: %w", id, err)
	}

	s.log.Info(ctx, "resource downloaded", "resource_id", id, "path", target)
	return filepath.Clean(target), nil
}

// storedFileName is the name part of the resource's stored file, or "" when
// the resource cannot be fetched.
func (s *resourceService) storedFileName(ctx context.Context, id int64) string {
	r, err := s.api.GetResource(ctx, id)
	if err != nil || r == nil {
		s.log.Debug(ctx, "no stored file name for download", "resource_id", id, "error", err)
		return ""
	}
	return r.FileName()
}

func (s *resourceService) Upload(ctx context.Context, nr models.NewResource, path string) (*models.Resource, error) {
	if err := s.sess.Require(); err != nil {
		return nil, err
	}
	if err := nr.Validate(); err != nil {
		return nil, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: file", models.ErrMissingField)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotAFile
	}

	r, err := s.api.UploadResource(ctx, nr, filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("upload resource: %w", err)
	}
	s.log.Info(ctx, "resource uploaded", "resource_id", r.ID, "bytes", info.Size())
	return r, nil
}

func (s *resourceService) Preview(ctx context.Context, w io.Writer, id int64) (preview.Outcome, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return preview.Outcome{}, err
	}
	return s.renderer.Render(ctx, w, previewTarget(r))
}

func previewTarget(r *models.Resource) preview.Target {
	fields := []preview.Field{
		{Label: "Subject", Value: r.Subject},
		{Label: "Topic", Value: r.Topic},
		{Label: "Course", Value: r.CourseCode},
		{Label: "Uploader", Value: r.Uploader.Name},
		{Label: "Tags", Value: strings.Join(r.TagNames(), ", ")},
	}
	if r.AverageRating > 0 {
		fields = append(fields, preview.Field{Label: "Rating", Value: fmt.Sprintf("%.1f/5", r.AverageRating)})
	}
	if !r.UploadDate.IsZero() {
		fields = append(fields, preview.Field{Label: "Uploaded", Value: r.UploadDate.Format("2006-01-02")})
	}

	return preview.Target{
		ResourceID: r.ID,
		Title:      r.Title,
		FileName:   r.FileName(),
		RawURL:     r.File,
		Fields:     fields,
	}
}
