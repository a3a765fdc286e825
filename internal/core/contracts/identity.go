package contracts

import (
	"context"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

// IdentityProvider verifies an OAuth id token with the issuing provider.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*domain.ExternalIdentity, error)
}
