package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyshare/studyshare-client/internal/client/models"
	"github.com/studyshare/studyshare-client/internal/logging"
	"github.com/studyshare/studyshare-client/internal/netx"
)

const (
	RequestIDHeaderName = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// HTTPClient talks JSON to the StudyShare backend. Protected calls carry
// the bearer token supplied by the TokenSource.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests use this to
// point at an httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the backend at baseURL, e.g.
// "http://localhost:8000". Every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil || !netx.HasScheme(baseURL) {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource wires the token provider after construction; the session
// store needs the client before it can act as the source.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the backend origin without a trailing slash.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the TokenSource when non-empty.
	token string
	auth  bool
}

func (c *HTTPClient) bearer(cl call) string {
	if cl.token != "" {
		return cl.token
	}
	if cl.auth && c.tokens != nil {
		return c.tokens.AccessToken()
	}
	return ""
}

func (c *HTTPClient) newRequest(ctx context.Context, method, target string, body any, token string) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setCommonHeaders(req, token)
	return req, nil
}

func setCommonHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send executes req and maps transport failures. A non-2xx status is
// returned as *APIError with the body consumed and closed.
func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	reqID := req.Header.Get(RequestIDHeaderName)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		c.log.Warn(ctx, "api request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, req.Method, req.URL.Path, err)
	}

	c.log.Debug(ctx, "api request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, cl call, out any) error {
	target := netx.JoinURL(c.baseURL, cl.path)
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := c.newRequest(ctx, cl.method, target, cl.body, c.bearer(cl))
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnexpected, cl.path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = flattenMessage(body)
		return apiErr
	}

	text := strings.TrimSpace(string(raw))
	if len(text) <= 200 && !strings.HasPrefix(text, "<") {
		apiErr.Message = text
	}
	return apiErr
}

// page is the paginated DRF list envelope.
type page[T any] struct {
	Results []T `json:"results"`
}

// getList fetches a list that may come back either bare or paginated.
func getList[T any](ctx context.Context, c *HTTPClient, cl call) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, cl, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p page[T]
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrUnexpected, cl.path, err)
		}
		return p.Results, nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnexpected, cl.path, err)
	}
	return items, nil
}

func resourcePath(id int64, suffix string) string {
	return fmt.Sprintf("/api/resources/%d/%s", id, suffix)
}

func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}
	var u models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/users/", token: accessToken, auth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/login/", body: creds}, &res); err != nil {
		return nil, err
	}
	if res.Access == "" || res.Refresh == "" {
		return nil, fmt.Errorf("%w: login response without tokens", ErrUnexpected)
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/register/", body: reg}, &res); err != nil {
		return nil, err
	}
	if res.Access == "" || res.Refresh == "" {
		return nil, fmt.Errorf("%w: register response without tokens", ErrUnexpected)
	}
	return &res, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return c.do(ctx, call{method: http.MethodPost, path: "/api/logout/", body: body, token: accessToken, auth: true}, nil)
}

func (c *HTTPClient) ListResources(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, error) {
	return getList[models.Resource](ctx, c, call{method: http.MethodGet, path: "/api/resources/", query: filter.Values(), auth: true})
}

func (c *HTTPClient) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	var r models.Resource
	if err := c.do(ctx, call{method: http.MethodGet, path: resourcePath(id, ""), auth: true}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) DeleteResource(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: resourcePath(id, ""), auth: true}, nil)
}

func (c *HTTPClient) Search(ctx context.Context, q models.SearchQuery) ([]models.Resource, error) {
	return getList[models.Resource](ctx, c, call{method: http.MethodGet, path: "/api/search/", query: q.Values(), auth: true})
}

func (c *HTTPClient) Tags(ctx context.Context) ([]models.Tag, error) {
	return getList[models.Tag](ctx, c, call{method: http.MethodGet, path: "/api/tags/", auth: true})
}

func (c *HTTPClient) Ratings(ctx context.Context, resourceID int64) ([]models.Rating, error) {
	return getList[models.Rating](ctx, c, call{method: http.MethodGet, path: resourcePath(resourceID, "ratings/"), auth: true})
}

func (c *HTTPClient) Rate(ctx context.Context, resourceID int64, value int) (*models.Rating, error) {
	var r models.Rating
	body := map[string]int{"rating_value": value}
	if err := c.do(ctx, call{method: http.MethodPost, path: resourcePath(resourceID, "ratings/"), body: body, auth: true}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) Comments(ctx context.Context, resourceID int64) ([]models.Comment, error) {
	return getList[models.Comment](ctx, c, call{method: http.MethodGet, path: resourcePath(resourceID, "comments/"), auth: true})
}

func (c *HTTPClient) AddComment(ctx context.Context, resourceID int64, content string) (*models.Comment, error) {
	var cm models.Comment
	body := map[string]string{"content": content}
	if err := c.do(ctx, call{method: http.MethodPost, path: resourcePath(resourceID, "comments/"), body: body, auth: true}, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

// UploadResource creates a resource from nr and the file content read from
// file. The multipart body is streamed, so file is never held in memory.
func (c *HTTPClient) UploadResource(ctx context.Context, nr models.NewResource, fileName string, file io.Reader) (*models.Resource, error) {
	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, nr, fileName, file))
	}()

	target := netx.JoinURL(c.baseURL, "/api/resources/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setCommonHeaders(req, c.bearer(call{auth: true}))

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r models.Resource
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode upload response: %v", ErrUnexpected, err)
	}
	return &r, nil
}

// writeUpload writes the form fields, one tag_names field per tag, and the
// file part, then closes the multipart writer.
func writeUpload(mw *multipart.Writer, nr models.NewResource, fileName string, file io.Reader) error {
	for _, f := range nr.Fields() {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	for _, tag := range nr.Tags {
		if err := mw.WriteField("tag_names", tag); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read upload file: %w", err)
	}
	return mw.Close()
}

func (c *HTTPClient) Download(ctx context.Context, resourceID int64, w io.Writer) (string, error) {
	target := netx.JoinURL(c.baseURL, resourcePath(resourceID, "download/"))
	req, err := c.newRequest(ctx, http.MethodGet, target, nil, c.bearer(call{auth: true}))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("download resource %d: %w", resourceID, err)
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// sameOrigin reports whether target points at the configured backend, in
// which case the bearer token may be attached.
func (c *HTTPClient) sameOrigin(target string) bool {
	return target == c.baseURL || strings.HasPrefix(target, c.baseURL+"/")
}

func (c *HTTPClient) FetchText(ctx context.Context, target string, maxBytes int64) (string, error) {
	cl := call{auth: c.sameOrigin(target)}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil, c.bearer(cl))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/*, */*")

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUnavailable, target, err)
	}
	return string(b), nil
}

// Probe checks that target loads. Servers that refuse HEAD are retried with
// a GET whose body is discarded.
func (c *HTTPClient) Probe(ctx context.Context, target string) error {
	token := c.bearer(call{auth: c.sameOrigin(target)})

	req, err := c.newRequest(ctx, http.MethodHead, target, nil, token)
	if err != nil {
		return err
	}
	resp, err := c.send(req)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusMethodNotAllowed {
		req, err = c.newRequest(ctx, http.MethodGet, target, nil, token)
		if err != nil {
			return err
		}
		resp, err = c.send(req)
	}
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// Ping reports whether the backend answers at all; any response below 500
// counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/tags/"}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	if apiErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, apiErr)
	}
	return err
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
