package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

type sessionKeyType struct{}

var sessionKey = sessionKeyType{}

// WithSession attaches the authenticated identity to the context. Every
// protected operation reads it back with FromContext; there is no hidden
// process-wide current-user state.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session or ErrUnauthenticated when none is present.
func FromContext(ctx context.Context) (*domain.Session, error) {
	if s, ok := ctx.Value(sessionKey).(*domain.Session); ok && s != nil {
		return s, nil
	}
	return nil, domain.ErrUnauthenticated
}

type ISessionService interface {
	// Issue creates a session record and access token for a signed-in user.
	Issue(ctx context.Context, user *domain.User) (token string, err error)
	// Resolve validates a token against both the signature and the revocable
	// session record. Unknown or revoked tokens fail with ErrInvalidToken.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	// Revoke deletes the session record; the token dies with it.
	Revoke(ctx context.Context, tokenID string) error
}

type SessionService struct {
	log    *slog.Logger
	tokens *TokenService
	store  contracts.SessionStore
	ttl    time.Duration
}

func NewSessionService(
	log *slog.Logger,
	tokens *TokenService,
	store contracts.SessionStore,
	ttl time.Duration,
) *SessionService {
	return &SessionService{
		log:    log,
		tokens: tokens,
		store:  store,
		ttl:    ttl,
	}
}

func (s *SessionService) Issue(ctx context.Context, user *domain.User) (string, error) {
	token, jti, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		s.log.ErrorContext(ctx, "session - issue - generate token failed", "user_id", user.ID, "err", err)
		return "", err
	}
	sess := &domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		TokenID:   jti,
		CreatedAt: time.Now(),
	}
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		s.log.ErrorContext(ctx, "session - issue - save session failed", "user_id", user.ID, "err", err)
		return "", domain.Remote(err)
	}
	s.log.InfoContext(ctx, "session - issue - session created", "user_id", user.ID)
	return token, nil
}

func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	userID, jti, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	sess, err := s.store.Get(ctx, jti)
	if err != nil {
		s.log.ErrorContext(ctx, "session - resolve - session lookup failed", "user_id", userID, "err", err)
		return nil, domain.Remote(err)
	}
	if sess == nil || sess.UserID != userID {
		return nil, domain.ErrInvalidToken
	}
	return sess, nil
}

func (s *SessionService) Revoke(ctx context.Context, tokenID string) error {
	if err := s.store.Delete(ctx, tokenID); err != nil {
		s.log.ErrorContext(ctx, "session - revoke - delete session failed", "err", err)
		return domain.Remote(err)
	}
	s.log.InfoContext(ctx, "session - revoke - session cleared")
	return nil
}
