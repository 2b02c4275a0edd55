package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/studyshare/studyshare-client/internal/client/client"
	"github.com/studyshare/studyshare-client/internal/client/config"
	"github.com/studyshare/studyshare-client/internal/client/services"
	"github.com/studyshare/studyshare-client/internal/client/session"
	"github.com/studyshare/studyshare-client/internal/logging"
	"github.com/studyshare/studyshare-client/internal/preview"
)

// backend is the slice of the API client the App uses directly.
type backend interface {
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config    *config.Config
	session   *session.Store
	resources services.ResourceService
	api       backend
	db        *sql.DB
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
}

// NewApp opens the token database and wires the API client, session store
// and services. The session is not bootstrapped until Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repos := client.NewRepositories(db)

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout,
		client.WithLogger(log.With("component", "api")))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.New(api, repos.Tokens,
		session.WithLogger(log.With("component", "session")),
		session.WithTimeout(c.RequestTimeout))
	api.SetTokenSource(store)

	renderer := preview.NewRenderer(preview.NewResolver(api.BaseURL()), api, log.With("component", "preview"))
	rs := services.NewResourceService(api, store, renderer, c.DownloadDir, log.With("component", "resources"))

	return &App{
		config:    c,
		session:   store,
		resources: rs,
		api:       api,
		db:        db,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

// Run bootstraps the session in the background and serves the REPL on
// stdin until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.session.Init(ctx)

	fmt.Fprintln(a.out, "Welcome to StudyShare CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close tears the session down and releases the API client and database.
func (a *App) Close() {
	a.session.Teardown()
	if a.api != nil {
		_ = a.api.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) require() error {
	return a.session.Require()
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	switch snap.State {
	case session.Bootstrapping:
		return "(loading)"
	case session.Authenticated:
		return fmt.Sprintf("(%s)", snap.User.Email)
	default:
		return ""
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// fail prints a user-facing description of err and returns it.
func (a *App) fail(err error) error {
	a.println(describeError(err))
	return err
}

func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, session.ErrNotReady):
		return msgLoading
	case errors.Is(err, session.ErrNotAuthenticated):
		return msgLoginRequired
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized. Your session may have expired, log in again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return "Error: " + apiErr.Message
	default:
		return "Error: " + err.Error()
	}
}
