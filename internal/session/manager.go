package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/internal/events"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// AuthClient performs the login exchange against the auth collaborator and
// returns the raw bearer token.
type AuthClient interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
}

// Dependencies bundles collaborators for the manager.
type Dependencies struct {
	Auth       AuthClient
	Store      *Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// Manager owns the authentication lifecycle. It is the only writer of the
// cached session; everything else reads through Current and Token, and
// observes changes through the dispatcher.
type Manager struct {
	mu         sync.RWMutex
	auth       AuthClient
	store      *Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	current    *domain.Session
}

// NewManager constructs the manager with an empty session.
func NewManager(deps Dependencies) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		auth:       deps.Auth,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login exchanges credentials for a bearer token, decodes its payload,
// persists the session and updates in-memory state. Credentials are never
// cached and no retry is attempted on failure.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	token, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	sess, err := DecodeSession(token)
	if err != nil {
		m.logger.Warn("token payload rejected", zap.Error(err))
		return nil, util.NewAuthError("login failed: " + err.Error())
	}

	if err := m.store.Save(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.logger.Info("session established",
		zap.String("subject", sess.Subject),
		zap.String("role", string(sess.Role)))
	m.publish(ctx, events.EventSessionLogin, sess)
	return sess, nil
}

// Logout clears durable storage and in-memory state. It always succeeds;
// a storage hiccup is logged, not surfaced.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx, events.EventSessionLogout)
}

// Expire is the escalation path for authenticated calls rejected with an
// authentication failure: forced logout plus a session_expired event. The
// rejected request is not retried.
func (m *Manager) Expire(ctx context.Context) {
	m.clear(ctx, events.EventSessionExpired)
}

// Restore rehydrates in-memory state from durable storage. Called once at
// startup; never contacts the network.
func (m *Manager) Restore() (*domain.Session, bool) {
	sess, ok := m.store.Load()
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return sess, true
}

// Current returns the cached session, if any.
func (m *Manager) Current() (*domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

// Token returns the cached bearer token, or "" when logged out. Satisfies
// the transport's token source.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) clear(ctx context.Context, eventType events.EventType) {
	m.mu.Lock()
	had := m.current
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clearing session storage", zap.Error(err))
	}
	if had != nil {
		m.publish(ctx, eventType, had)
	}
}

func (m *Manager) publish(ctx context.Context, eventType events.EventType, sess *domain.Session) {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Publish(ctx, eventType, events.SessionPayload{
		Subject: sess.Subject,
		Role:    sess.Role,
	})
}

// DecodeSession extracts the subject and role from the token's payload
// segment. The signature is deliberately not verified: the client never
// holds the signing secret, and the decoded values drive display and UI
// branching only. The real trust boundary is the backend's own check on
// every authenticated request.
func DecodeSession(token string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	subject, _ := claims["id"].(string)
	if subject == "" {
		// older backend generations populate "sub" instead of "id"
		subject, _ = claims["sub"].(string)
	}
	roleStr, _ := claims["role"].(string)
	role := domain.Role(roleStr)

	if subject == "" {
		return nil, errors.New("token payload missing subject")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("token payload carries unknown role %q", roleStr)
	}

	return &domain.Session{
		Subject:   subject,
		Role:      role,
		Token:     token,
		DecodedAt: time.Now(),
	}, nil
}
