package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/studyshare/studyshare-client/internal/client/client"
	"github.com/studyshare/studyshare-client/internal/client/models"
	"github.com/studyshare/studyshare-client/internal/client/repositories/tokens"
	"github.com/studyshare/studyshare-client/internal/logging"
)

const DefaultTimeout = 10 * time.Second

// Store is the owned session object. The zero value is not usable; build
// one with New.
type Store struct {
	api     client.AuthAPI
	tokens  tokens.Repository
	log     logging.Logger
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	state State
	sess  Session
	// nextTicket is handed out to each call; applied is the ticket of the
	// last mutation that took effect.
	nextTicket uint64
	applied    uint64
	bootTicket uint64
	closed     bool

	ready     chan struct{}
	readyOnce sync.Once

	bootOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithTimeout bounds the bootstrap profile fetch and the server-side
// logout call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(api client.AuthAPI, repo tokens.Repository, opts ...Option) *Store {
	s := &Store{
		api:     api,
		tokens:  repo,
		log:     logging.Discard(),
		timeout: DefaultTimeout,
		now:     time.Now,
		state:   Bootstrapping,
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init starts the bootstrap in the background and returns immediately.
// Use Ready or Wait to observe its resolution.
func (s *Store) Init(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.reserveBootTicket()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.Bootstrap(ctx)
	}()
}

// Teardown stops a running bootstrap and closes the store. Persisted
// tokens are left in place for the next process.
func (s *Store) Teardown() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.closed = true
	s.markReady()
	s.mu.Unlock()
}

// Bootstrap resolves the initial state from persisted tokens. Only the first
// call does any work; later calls return the current state.
func (s *Store) Bootstrap(ctx context.Context) State {
	s.bootOnce.Do(func() { s.bootstrap(ctx) })
	return s.State()
}

func (s *Store) bootstrap(ctx context.Context) {
	s.mu.Lock()
	t := s.reserveBootTicket()
	s.mu.Unlock()

	pair, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load persisted tokens", "error", err)
	}
	if err != nil || pair.Access == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stale(t) {
			return
		}
		s.applied = t
		s.setAnonymous()
		s.log.Info(ctx, "no persisted session")
		return
	}

	if info, err := ParseTokenInfo(pair.Access); err == nil && info.Expired(s.now()) {
		s.log.Debug(ctx, "persisted access token looks expired", "expires_at", info.ExpiresAt)
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.api.Me(cctx, pair.Access)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(t) {
		s.log.Warn(ctx, "discarding stale bootstrap result", "ticket", t, "applied", s.applied)
		return
	}
	s.applied = t

	if err != nil && ctx.Err() != nil {
		// torn down mid-flight; the tokens were never judged
		s.setAnonymous()
		return
	}
	if err != nil {
		s.log.Info(ctx, "persisted session rejected, signing out", "error", err)
		if cerr := s.tokens.Clear(context.WithoutCancel(ctx)); cerr != nil {
			s.log.Error(ctx, "failed to clear persisted tokens", "error", cerr)
		}
		s.setAnonymous()
		return
	}

	s.setAuthenticated(user, pair)
	s.log.Info(ctx, "session restored", "user_id", user.ID)
}

// Login exchanges credentials for a token pair. On failure nothing changes.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("login error: %w", models.ErrMissingField)
	}
	if err := s.checkOpen(); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	t := s.ticket()
	res, err := s.api.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	user, err := s.establish(ctx, t, res)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return user, nil
}

// Register creates an account and signs in with it.
func (s *Store) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	if err := s.checkOpen(); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	t := s.ticket()
	res, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}

	user, err := s.establish(ctx, t, res)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return user, nil
}

// establish persists the pair and switches to Authenticated, unless a newer
// mutation was applied since ticket t was taken.
func (s *Store) establish(ctx context.Context, t uint64, res *models.AuthResult) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.stale(t) {
		s.log.Warn(ctx, "discarding stale auth result", "ticket", t, "applied", s.applied)
		return nil, ErrSuperseded
	}

	pair := tokens.Pair{Access: res.Access, Refresh: res.Refresh}
	if err := s.tokens.Save(ctx, pair); err != nil {
		return nil, err
	}
	s.applied = t

	user := res.User
	s.setAuthenticated(&user, pair)
	s.log.Info(ctx, "signed in", "user_id", user.ID)
	return cloneUser(&user), nil
}

// Logout clears the session and the persisted tokens. It always succeeds:
// storage and server errors are logged. The refresh token is revoked on the
// server afterwards on a best-effort basis.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.nextTicket++
	s.applied = s.nextTicket
	prev := s.sess
	s.setAnonymous()
	if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error(ctx, "failed to clear persisted tokens", "error", err)
	}
	s.mu.Unlock()

	if prev.AccessToken == "" || prev.RefreshToken == "" {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.api.Logout(cctx, prev.AccessToken, prev.RefreshToken); err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err)
	}
}

// Ready is closed once the first bootstrap, login, register or logout has
// resolved the state.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the state is resolved or ctx is done.
func (s *Store) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.sess.User)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, User: cloneUser(s.sess.User)}
}

// Require is the gate for protected views: nil when authenticated,
// ErrNotReady while bootstrapping, ErrNotAuthenticated otherwise.
func (s *Store) Require() error {
	switch s.State() {
	case Authenticated:
		return nil
	case Bootstrapping:
		return ErrNotReady
	default:
		return ErrNotAuthenticated
	}
}

// AccessToken implements client.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.AccessToken
}

// TokenInfo returns the decoded claims of the current access token.
func (s *Store) TokenInfo() (TokenInfo, bool) {
	token := s.AccessToken()
	if token == "" {
		return TokenInfo{}, false
	}
	info, err := ParseTokenInfo(token)
	if err != nil {
		return TokenInfo{}, false
	}
	return info, true
}

func (s *Store) ticket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicket++
	return s.nextTicket
}

// reserveBootTicket hands out the bootstrap ticket on first use and returns
// it afterwards. Init reserves it before starting the goroutine, so any
// login issued after Init is newer than the bootstrap. Must be called with
// mu held.
func (s *Store) reserveBootTicket() uint64 {
	if s.bootTicket == 0 {
		s.nextTicket++
		s.bootTicket = s.nextTicket
	}
	return s.bootTicket
}

// stale must be called with mu held.
func (s *Store) stale(t uint64) bool {
	return t < s.applied
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// setAnonymous and setAuthenticated must be called with mu held.
func (s *Store) setAnonymous() {
	s.state = Anonymous
	s.sess = Session{}
	s.markReady()
}

func (s *Store) setAuthenticated(u *models.User, p tokens.Pair) {
	s.state = Authenticated
	s.sess = Session{User: u, AccessToken: p.Access, RefreshToken: p.Refresh}
	s.markReady()
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}
