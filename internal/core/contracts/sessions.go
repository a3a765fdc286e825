package contracts

import (
	"context"
	"time"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

// SessionStore persists issued sessions keyed by token id, so sign-out can
// revoke a token before its JWT expiry. Get returns (nil, nil) for unknown
// or revoked tokens.
type SessionStore interface {
	Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (*domain.Session, error)
	Delete(ctx context.Context, tokenID string) error
}
