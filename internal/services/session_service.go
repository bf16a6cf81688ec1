package services

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/storage"
)

// emailRegexp matches what the login and registration forms accept.
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// SessionServiceImpl implements domain.SessionService. It is the single
// source of truth for who is logged in, with durable recovery across
// restarts through the credential store.
type SessionServiceImpl struct {
	store   domain.CredentialStore
	authAPI domain.AuthAPI
	logger  *slog.Logger
	events  domain.EventSink

	mu      sync.Mutex
	session domain.Session
	// gen invalidates results of calls that started before a logout or
	// teardown; a stale result must never resurrect a dismissed session.
	gen  uint64
	busy map[string]bool
}

// SessionOption configures the session service.
type SessionOption func(*SessionServiceImpl)

// WithEventSink publishes session events to the given sink.
func WithEventSink(sink domain.EventSink) SessionOption {
	return func(s *SessionServiceImpl) { s.events = sink }
}

// NewSessionService creates a session service. The session starts in the
// loading state; routing must not happen until Restore has run.
func NewSessionService(store domain.CredentialStore, authAPI domain.AuthAPI, logger *slog.Logger, opts ...SessionOption) *SessionServiceImpl {
	s := &SessionServiceImpl{
		store:   store,
		authAPI: authAPI,
		logger:  logger,
		session: domain.Session{Loading: true},
		busy:    map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore hydrates the session from the credential store without a
// network round-trip. The first authenticated call acts as the lazy
// revalidation point; an auth-invalid response there tears the session
// down reactively. A restore-time storage failure means logged out.
func (s *SessionServiceImpl) Restore(ctx context.Context) error {
	creds, err := storage.LoadCredentials(ctx, s.store)

	s.mu.Lock()
	s.session.Loading = false
	if err != nil {
		s.session.User = nil
		s.mu.Unlock()
		s.logger.Warn("session restore failed, treating as logged out", "error", err)
		return nil
	}
	if creds.Valid() {
		s.session.User = creds.User
	}
	user := s.session.User
	s.mu.Unlock()

	if user != nil {
		s.publish(ctx, domain.NewEvent(domain.SessionRestoredEvent).WithUser(user))
	}
	return nil
}

// Login implements domain.SessionService. Validation failures surface
// before any network call; transport failures set the session error and
// propagate so the caller can present them.
func (s *SessionServiceImpl) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	if err := validateLogin(req); err != nil {
		return nil, err
	}
	if err := s.beginOp("login"); err != nil {
		return nil, err
	}
	defer s.endOp("login")

	gen := s.currentGen()
	payload, err := s.authAPI.Login(ctx, req)
	if err != nil {
		s.setError(err.Error())
		s.publish(ctx, domain.NewEvent(domain.UserLoginFailureEvent).WithError(err))
		return nil, err
	}

	s.adopt(ctx, gen, payload)
	s.publish(ctx, domain.NewEvent(domain.UserLoginEvent).WithUser(payload.User))
	return payload.User, nil
}

// Register implements domain.SessionService. On success the new user
// becomes the active session without a separate login step.
func (s *SessionServiceImpl) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}
	if err := s.beginOp("register"); err != nil {
		return nil, err
	}
	defer s.endOp("register")

	gen := s.currentGen()
	payload, err := s.authAPI.Register(ctx, req)
	if err != nil {
		s.setError(err.Error())
		return nil, err
	}

	s.adopt(ctx, gen, payload)
	s.publish(ctx, domain.NewEvent(domain.UserRegistrationEvent).WithUser(payload.User))
	return payload.User, nil
}

// adopt persists the credentials and installs the user, unless the
// session was torn down while the call was in flight. A storage fault is
// not an authentication failure: the session proceeds in memory, it just
// will not survive a restart.
func (s *SessionServiceImpl) adopt(ctx context.Context, gen uint64, payload *domain.AuthPayload) {
	if err := storage.SaveCredentials(ctx, s.store, payload.Token, payload.User); err != nil {
		s.logger.Warn("credential persistence failed, session will not survive restart", "error", err)
	}

	s.mu.Lock()
	if s.gen == gen {
		s.session.User = payload.User
		s.session.Error = ""
	}
	s.mu.Unlock()
}

// Logout implements domain.SessionService. Local state is cleared even
// when the remote call fails; logout is always locally effective, and
// calling it twice is harmless.
func (s *SessionServiceImpl) Logout(ctx context.Context) error {
	user := s.CurrentUser()

	if err := s.authAPI.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}
	if err := storage.ClearCredentials(ctx, s.store); err != nil {
		s.logger.Warn("failed to clear stored credentials", "error", err)
	}

	s.mu.Lock()
	s.session.User = nil
	s.session.Error = ""
	s.gen++
	s.mu.Unlock()

	if user != nil {
		s.publish(ctx, domain.NewEvent(domain.UserLogoutEvent).WithUser(user))
	}
	return nil
}

// HandleAuthInvalidated reacts to an auth-invalid signal from any API
// call. The transport has already cleared the credential store.
func (s *SessionServiceImpl) HandleAuthInvalidated() {
	s.mu.Lock()
	hadUser := s.session.User != nil
	s.session.User = nil
	s.gen++
	s.mu.Unlock()

	if hadUser {
		s.publish(context.Background(), domain.NewEvent(domain.SessionInvalidatedEvent))
	}
}

// UpdateProfile merges the partial update into the active user and
// persists the merged snapshot.
func (s *SessionServiceImpl) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if update.PreferredPaymentMethod != nil && !update.PreferredPaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	s.mu.Lock()
	user := s.session.User
	s.mu.Unlock()
	if user == nil {
		return nil, domain.ErrNoActiveSession
	}

	merged := update.ApplyTo(user)

	token, err := s.store.Get(ctx, domain.TokenKey)
	if err != nil {
		return nil, err
	}
	if err := storage.SaveCredentials(ctx, s.store, token, merged); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.session.User != nil {
		s.session.User = merged
	}
	s.mu.Unlock()

	s.publish(ctx, domain.NewEvent(domain.ProfileUpdatedEvent).WithUser(merged))
	return merged, nil
}

// TestAuth revalidates the restored session against the server. A false
// result means the token is dead; the transport has already torn the
// session down by the time this returns.
func (s *SessionServiceImpl) TestAuth(ctx context.Context) bool {
	if s.CurrentUser() == nil {
		return false
	}
	ok, err := s.authAPI.TestAuth(ctx)
	if err != nil {
		s.logger.Warn("auth test failed", "error", err)
		return false
	}
	return ok
}

// CurrentUser implements domain.SessionService.
func (s *SessionServiceImpl) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.User
}

// Snapshot implements domain.SessionService.
func (s *SessionServiceImpl) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsAdmin implements domain.SessionService.
func (s *SessionServiceImpl) IsAdmin() bool {
	return s.CurrentUser().IsAdmin()
}

// IsSuperAdmin implements domain.SessionService.
func (s *SessionServiceImpl) IsSuperAdmin() bool {
	return s.CurrentUser().IsSuperAdmin()
}

func (s *SessionServiceImpl) beginOp(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[name] {
		return domain.ErrOperationInFlight
	}
	s.busy[name] = true
	return nil
}

func (s *SessionServiceImpl) endOp(name string) {
	s.mu.Lock()
	delete(s.busy, name)
	s.mu.Unlock()
}

func (s *SessionServiceImpl) currentGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *SessionServiceImpl) setError(msg string) {
	s.mu.Lock()
	s.session.Error = msg
	s.mu.Unlock()
}

func (s *SessionServiceImpl) publish(ctx context.Context, event *domain.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}

func validateLogin(req domain.LoginRequest) error {
	if req.Email == "" || req.Password == "" {
		return domain.ErrMissingRequiredFields
	}
	if !emailRegexp.MatchString(req.Email) {
		return domain.ErrEmailInvalid
	}
	return nil
}

func validateRegister(req domain.RegisterRequest) error {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.PhoneNumber == "" || req.Password == "" {
		return domain.ErrMissingRequiredFields
	}
	if !emailRegexp.MatchString(req.Email) {
		return domain.ErrEmailInvalid
	}
	if len(req.Password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if !req.PreferredPaymentMethod.Valid() {
		return domain.ErrInvalidPaymentMethod
	}
	return nil
}
