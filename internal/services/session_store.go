package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/wabdevconsult/batuta/domain"
)

// SessionOptions tunes CheckAuth
type SessionOptions struct {
	// ValidateRemote asks the backend who owns the token on every CheckAuth
	ValidateRemote bool
}

// SessionStore holds the one identity the console acts as.
// All mutations go through Login, Register, Logout, CheckAuth and Hydrate;
// every change of user/token is written to the persister.
type SessionStore struct {
	gateway   domain.AuthGateway
	persister domain.SessionPersister
	tokens    domain.TokenInspector
	audit     domain.AuditLogger
	opts      SessionOptions
	now       func() time.Time

	mu       sync.Mutex
	state    domain.Session
	inflight int
	epoch    uint64
	subs     map[int]func(domain.Session)
	nextSub  int
	closed   bool

	// serializes writes so the stored record always follows the latest state
	persistMu sync.Mutex
}

// NewSessionStore creates an empty store; call Hydrate to restore a saved session
func NewSessionStore(gateway domain.AuthGateway, persister domain.SessionPersister, tokens domain.TokenInspector, audit domain.AuditLogger, opts SessionOptions) *SessionStore {
	if audit == nil {
		audit = NewLogAuditLogger()
	}
	return &SessionStore{
		gateway:   gateway,
		persister: persister,
		tokens:    tokens,
		audit:     audit,
		opts:      opts,
		now:       time.Now,
		subs:      make(map[int]func(domain.Session)),
	}
}

// Snapshot returns a copy of the current session
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() domain.Session {
	out := s.state
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// Token returns the current bearer token, empty when logged out
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Subscribe registers fn to receive the session after every change.
// The returned func removes the subscription.
func (s *SessionStore) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close drops every subscriber. The session itself stays persisted.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[int]func(domain.Session))
}

// update applies fn under the lock and then notifies subscribers outside it
func (s *SessionStore) update(fn func(st *domain.Session)) domain.Session {
	s.mu.Lock()
	fn(&s.state)
	s.state.Loading = s.inflight > 0
	snap := s.snapshotLocked()
	subs := make([]func(domain.Session), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
	return snap
}

func (s *SessionStore) begin() {
	s.update(func(st *domain.Session) {
		s.inflight++
		st.Error = ""
	})
}

// end closes one request; identity is set only when result is non-nil
func (s *SessionStore) end(result *domain.AuthResult, errMsg string) domain.Session {
	return s.update(func(st *domain.Session) {
		s.inflight--
		st.Error = errMsg
		if result != nil {
			st.User = result.User
			st.Token = result.Token
			s.epoch++
		}
	})
}

// Login authenticates through the gateway. A failure keeps any existing
// identity and records the message in Error.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) error {
	s.begin()

	result, err := s.gateway.Login(ctx, creds)
	if err != nil {
		s.end(nil, displayMessage(err, "Login failed"))
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, nil).WithEmail(creds.Email).WithError(err))
		return err
	}

	s.end(result, "")
	s.persist(ctx)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, result.User))
	return nil
}

// Register creates an account and logs into it, with the Login contract
func (s *SessionStore) Register(ctx context.Context, req domain.RegisterRequest) error {
	s.begin()

	result, err := s.gateway.Register(ctx, req)
	if err != nil {
		s.end(nil, displayMessage(err, "Registration failed"))
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, nil).WithEmail(req.Email).WithError(err))
		return err
	}

	s.end(result, "")
	s.persist(ctx)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, result.User))
	return nil
}

// Logout clears the local identity and then tells the backend.
// The local session is gone whatever the backend answers.
func (s *SessionStore) Logout(ctx context.Context) {
	var user *domain.User
	var token string
	s.update(func(st *domain.Session) {
		user, token = st.User, st.Token
		st.User = nil
		st.Token = ""
		st.Error = ""
		s.epoch++
	})
	s.persist(ctx)

	s.gateway.Logout(ctx, token)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, user))
}

// Hydrate restores the persisted identity. Missing or unreadable records
// leave the store logged out; they are never reported to the caller.
func (s *SessionStore) Hydrate(ctx context.Context) {
	rec, err := s.persister.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("session: ignoring stored session: %v", err)
		}
		if errors.Is(err, domain.ErrSessionCorrupt) {
			if err := s.persister.Clear(ctx); err != nil {
				log.Printf("session: failed to clear corrupt record: %v", err)
			}
		}
		return
	}
	if rec.State.User == nil || rec.State.Token == "" {
		return
	}

	s.update(func(st *domain.Session) {
		st.User = rec.State.User
		st.Token = rec.State.Token
		s.epoch++
	})
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionRestoredEvent, rec.State.User))
}

// CheckAuth resolves the identity from the persisted record.
// Demo tokens are taken as they are. Expired backend tokens are refreshed
// and a failed refresh logs the session out. With ValidateRemote the backend
// is asked for the user and a nil answer logs the session out.
func (s *SessionStore) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	startEpoch := s.epoch
	s.mu.Unlock()

	var user *domain.User
	var token string
	if rec, err := s.persister.Load(ctx); err == nil {
		user, token = rec.State.User, rec.State.Token
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		log.Printf("session: check auth could not read stored session: %v", err)
	}

	user, token, reason := s.resolve(ctx, user, token)

	applied := false
	s.update(func(st *domain.Session) {
		// a Login or Logout that finished meanwhile is newer than this check
		if s.epoch != startEpoch {
			return
		}
		st.User = user
		st.Token = token
		s.epoch++
		applied = true
	})
	if !applied {
		return
	}
	s.persist(ctx)

	if user == nil && reason != "" {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionClearedEvent, nil).WithMetadata("reason", reason))
	}
}

// resolve returns the identity CheckAuth should adopt and, when it drops one,
// why
func (s *SessionStore) resolve(ctx context.Context, user *domain.User, token string) (*domain.User, string, string) {
	if user == nil || token == "" {
		return nil, "", ""
	}
	if s.tokens.IsDemo(token) {
		return user, token, ""
	}

	claims, err := s.tokens.Inspect(token)
	if err != nil {
		// opaque tokens are the backend's business; only JWT expiry is checked
		if !errors.Is(err, domain.ErrTokenMalformed) {
			return nil, "", "unreadable token"
		}
	} else if claims.Expired(s.now()) {
		token = s.gateway.RefreshToken(ctx, token)
		if token == "" {
			return nil, "", "token refresh failed"
		}
	}

	if s.opts.ValidateRemote {
		current := s.gateway.CurrentUser(ctx, token)
		if current == nil {
			return nil, "", "backend rejected token"
		}
		user = current
	}
	return user, token, ""
}

// persist writes the current identity, or clears the record when logged out
func (s *SessionStore) persist(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	state := domain.PersistedState{User: s.state.User, Token: s.state.Token}
	s.mu.Unlock()

	var err error
	if state.User == nil || state.Token == "" {
		err = s.persister.Clear(ctx)
	} else {
		err = s.persister.Save(ctx, &domain.PersistedSession{State: state})
	}
	if err != nil {
		log.Printf("session: failed to persist session: %v", err)
	}
}

func displayMessage(err error, fallback string) string {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fallback
	}
	return err.Error()
}
