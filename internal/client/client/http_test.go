package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyshare/studyshare-client/internal/client/models"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r chi.Router, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 2*time.Second, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewHTTPClient_Validation(t *testing.T) {
	_, err := NewHTTPClient("", time.Second)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewHTTPClient("localhost:8000", time.Second)
	require.Error(t, err)

	c, err := NewHTTPClient("http://localhost:8000/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())

	var _ Client = c
}

func TestMe_SendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string

	r := chi.NewRouter()
	r.Get("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(RequestIDHeaderName)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "name": "Ada", "email": "ada@uni.edu", "role": "teacher", "university_name": "Uni",
		})
	})
	c := newTestClient(t, r)

	u, err := c.Me(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, models.RoleTeacher, u.Role)
	assert.Equal(t, "Uni", u.UniversityName)
	assert.Equal(t, "Bearer tok-1", gotAuth)

	_, err = uuid.Parse(gotReqID)
	assert.NoError(t, err, "request id must be a uuid")
}

func TestMe_EmptyToken_NoNetworkCall(t *testing.T) {
	called := false
	r := chi.NewRouter()
	r.Get("/api/users/", func(w http.ResponseWriter, r *http.Request) { called = true })
	c := newTestClient(t, r)

	_, err := c.Me(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, called)
}

func TestMe_Unauthorized(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
	})
	c := newTestClient(t, r)

	_, err := c.Me(context.Background(), "expired")
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Given token not valid for any token type", apiErr.Message)
}

func TestLogin_SuccessAndInvalidCredentials(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Invalid credentials"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":    map[string]any{"id": 1, "email": creds.Email, "role": "student"},
			"access":  "acc",
			"refresh": "ref",
		})
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	res, err := c.Login(ctx, models.Credentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "acc", res.Access)
	assert.Equal(t, "ref", res.Refresh)
	assert.Equal(t, "a@b.c", res.User.Email)

	_, err = c.Login(ctx, models.Credentials{Email: "a@b.c", Password: "nope"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestLogin_ResponseWithoutTokens(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1}})
	})
	c := newTestClient(t, r)

	_, err := c.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "x"})
	require.ErrorIs(t, err, ErrUnexpected)
}

func TestRegister_FieldErrorsFlattened(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/register/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"email":    []string{"user with this email already exists."},
			"password": []string{"too short"},
		})
	})
	c := newTestClient(t, r)

	_, err := c.Register(context.Background(), models.Registration{Email: "a@b.c"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "email: user with this email already exists.; password: too short")
}

func TestLogout_PostsRefreshToken(t *testing.T) {
	var body map[string]string
	var auth string

	r := chi.NewRouter()
	r.Post("/api/logout/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusResetContent)
	})
	c := newTestClient(t, r)

	require.NoError(t, c.Logout(context.Background(), "acc", "ref"))
	assert.Equal(t, "Bearer acc", auth)
	assert.Equal(t, map[string]string{"refresh": "ref"}, body)
}

func TestListResources_BareAndPaginated(t *testing.T) {
	var gotQuery string

	r := chi.NewRouter()
	r.Get("/api/resources/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Query().Get("uploader") != "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"count":   1,
				"results": []map[string]any{{"id": 2, "title": "Mine"}},
			})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "title": "All"}})
	})
	c := newTestClient(t, r, WithTokenSource(staticToken("acc")))
	ctx := context.Background()

	all, err := c.ListResources(ctx, models.ResourceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "All", all[0].Title)
	assert.Empty(t, gotQuery)

	mine, err := c.ListResources(ctx, models.ResourceFilter{UploaderID: 9})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Title)
	assert.Equal(t, "uploader=9", gotQuery)
}

func TestProtectedCalls_UseTokenSource(t *testing.T) {
	var auth string
	r := chi.NewRouter()
	r.Get("/api/resources/{id}/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"id": 3, "title": chi.URLParam(r, "id")})
	})
	c := newTestClient(t, r)
	c.SetTokenSource(staticToken("from-store"))

	res, err := c.GetResource(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "3", res.Title)
	assert.Equal(t, "Bearer from-store", auth)
}

func TestGetResource_NotFound(t *testing.T) {
	r := chi.NewRouter()
	c := newTestClient(t, r)

	_, err := c.GetResource(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteResource_NoContent(t *testing.T) {
	deleted := ""
	r := chi.NewRouter()
	r.Delete("/api/resources/{id}/", func(w http.ResponseWriter, r *http.Request) {
		deleted = chi.URLParam(r, "id")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, r)

	require.NoError(t, c.DeleteResource(context.Background(), 12))
	assert.Equal(t, "12", deleted)
}

func TestSearch_EncodesQuery(t *testing.T) {
	var q map[string]string
	r := chi.NewRouter()
	r.Get("/api/search/", func(w http.ResponseWriter, r *http.Request) {
		q = map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	c := newTestClient(t, r)

	res, err := c.Search(context.Background(), models.SearchQuery{Query: "linear algebra", Subject: "Math"})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, map[string]string{"query": "linear algebra", "subject": "Math"}, q)
}

func TestRatingsAndComments(t *testing.T) {
	var rated map[string]int
	var commented map[string]string

	r := chi.NewRouter()
	r.Route("/api/resources/{id}", func(r chi.Router) {
		r.Get("/ratings/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "rating_value": 4}})
		})
		r.Post("/ratings/", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&rated)
			writeJSON(w, http.StatusCreated, map[string]any{"id": 2, "rating_value": rated["rating_value"]})
		})
		r.Get("/comments/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "content": "nice"}})
		})
		r.Post("/comments/", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&commented)
			writeJSON(w, http.StatusCreated, map[string]any{"id": 5, "content": commented["content"]})
		})
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	ratings, err := c.Ratings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 4, ratings[0].Value)

	rating, err := c.Rate(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Value)
	assert.Equal(t, map[string]int{"rating_value": 5}, rated)

	comments, err := c.Comments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Content)

	cm, err := c.AddComment(ctx, 1, "thanks")
	require.NoError(t, err)
	assert.Equal(t, int64(5), cm.ID)
	assert.Equal(t, map[string]string{"content": "thanks"}, commented)
}

func TestTags(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/tags/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "exam"}, {"id": 2, "name": "notes"}})
	})
	c := newTestClient(t, r)

	tags, err := c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{{ID: 1, Name: "exam"}, {ID: 2, Name: "notes"}}, tags)
}

func TestUploadResource_SendsMultipartForm(t *testing.T) {
	type received struct {
		auth        string
		contentType string
		title       string
		description string
		courseCode  string
		tags        []string
		fileName    string
		fileBody    string
	}
	var got received

	r := chi.NewRouter()
	r.Post("/api/resources/", func(w http.ResponseWriter, r *http.Request) {
		got.auth = r.Header.Get("Authorization")
		got.contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got.title = r.FormValue("title")
		got.description = r.FormValue("description")
		got.courseCode = r.FormValue("course_code")
		got.tags = r.MultipartForm.Value["tag_names"]

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		got.fileName, got.fileBody = hdr.Filename, string(body)

		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 12, "title": got.title, "file": "/media/resources/" + hdr.Filename,
		})
	})
	c := newTestClient(t, r, WithTokenSource(staticToken("tok")))

	nr := models.NewResource{
		Title: "Graphs", Description: "Week 3", Subject: "Math", Topic: "Graph theory",
		CourseCode: "MA101", Tags: []string{"exam", "week3"},
	}
	res, err := c.UploadResource(context.Background(), nr, "graphs.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)

	assert.Equal(t, int64(12), res.ID)
	assert.Equal(t, "graphs.pdf", res.FileName())
	assert.Equal(t, "Bearer tok", got.auth)
	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="))
	assert.Equal(t, "Graphs", got.title)
	assert.Equal(t, "Week 3", got.description)
	assert.Equal(t, "MA101", got.courseCode)
	assert.Equal(t, []string{"exam", "week3"}, got.tags)
	assert.Equal(t, "graphs.pdf", got.fileName)
	assert.Equal(t, "%PDF-1.4 body", got.fileBody)
}

func TestUploadResource_ServerRejects(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/resources/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"course_code": []string{"This field is required."}})
	})
	c := newTestClient(t, r)

	_, err := c.UploadResource(context.Background(), models.NewResource{Title: "x"}, "a.txt", strings.NewReader("hello"))
	require.ErrorIs(t, err, ErrInvalidInput)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "course_code")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUploadResource_FileReadErrorAbortsRequest(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/resources/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	})
	c := newTestClient(t, r)

	_, err := c.UploadResource(context.Background(), models.NewResource{Title: "x"}, "a.txt", failingReader{})
	require.Error(t, err)
}

func TestDownload_StreamsBodyAndReadsFileName(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/resources/{id}/download/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="lecture 1.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	c := newTestClient(t, r)

	var buf bytes.Buffer
	name, err := c.Download(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, "lecture 1.pdf", name)
	assert.Equal(t, "%PDF-1.4", buf.String())
}

func TestDownload_WithoutDisposition(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/resources/{id}/download/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	})
	c := newTestClient(t, r)

	var buf bytes.Buffer
	name, err := c.Download(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestFetchText_LimitsBytes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/media/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), 5000))
	})
	c := newTestClient(t, r)

	text, err := c.FetchText(context.Background(), c.BaseURL()+"/media/notes.txt", 100)
	require.NoError(t, err)
	assert.Len(t, text, 100)
}

func TestFetchText_OnlySendsTokenToBackend(t *testing.T) {
	var backendAuth, foreignAuth string

	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("foreign"))
	}))
	t.Cleanup(foreign.Close)

	r := chi.NewRouter()
	r.Get("/media/a.txt", func(w http.ResponseWriter, r *http.Request) {
		backendAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("local"))
	})
	c := newTestClient(t, r, WithTokenSource(staticToken("acc")))
	ctx := context.Background()

	_, err := c.FetchText(ctx, c.BaseURL()+"/media/a.txt", 10)
	require.NoError(t, err)
	_, err = c.FetchText(ctx, foreign.URL+"/a.txt", 10)
	require.NoError(t, err)

	assert.Equal(t, "Bearer acc", backendAuth)
	assert.Empty(t, foreignAuth)
}

func TestProbe(t *testing.T) {
	r := chi.NewRouter()
	r.Head("/ok.png", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/no-head.mp4", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("video"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.Probe(ctx, c.BaseURL()+"/ok.png"))
	require.NoError(t, c.Probe(ctx, c.BaseURL()+"/no-head.mp4"))
	require.ErrorIs(t, c.Probe(ctx, c.BaseURL()+"/missing.png"), ErrNotFound)
}

func TestUnreachableServer_MapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, time.Second)
	require.NoError(t, err)

	_, err = c.Me(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestTimeout_MapsToUnavailable(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = c.Me(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContext_NotReportedAsUnavailable(t *testing.T) {
	r := chi.NewRouter()
	c := newTestClient(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Me(ctx, "tok")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestPing(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/tags/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(t, r)
	require.NoError(t, c.Ping(context.Background()), "4xx still means reachable")

	down := chi.NewRouter()
	down.Get("/api/tags/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c = newTestClient(t, down)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestAPIError_UnwrapMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusTeapot, ErrUnexpected},
		{http.StatusInternalServerError, ErrUnexpected},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			err := error(&APIError{Status: tc.status})
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), http.StatusText(tc.status))
		})
	}
}

func TestFlattenMessage(t *testing.T) {
	assert.Equal(t, "nope", flattenMessage(map[string]any{"detail": "nope"}))
	assert.Equal(t, "bad", flattenMessage(map[string]any{"error": "bad"}))
	assert.Equal(t, "Invalid credentials",
		flattenMessage(map[string]any{"non_field_errors": []any{"Invalid credentials"}}))
	assert.Equal(t, "a: x y; b: z",
		flattenMessage(map[string]any{"b": "z", "a": []any{"x", "y"}}))
}
