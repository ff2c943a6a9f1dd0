package oauth

import (
	"context"
	"time"

	"oauth2_server/internal/domain"
)

// Repository contracts consumed by the core. Implementations live in
// internal/repository; every method returns domain.ErrNotFound when no row
// matches, and lookups never see soft-deleted records.

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByClientID(ctx context.Context, clientID string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
}

type CodeRepository interface {
	Create(ctx context.Context, code *domain.AuthorizationCode) error
	FindByCode(ctx context.Context, code string) (*domain.AuthorizationCode, error)
	// DeleteByCode reports whether a row was deleted; false means another
	// redemption already consumed the code.
	DeleteByCode(ctx context.Context, code string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	FindByAccessToken(ctx context.Context, value string) (*domain.Token, error)
	FindByRefreshToken(ctx context.Context, value string) (*domain.Token, error)
	FindByValue(ctx context.Context, value string) (*domain.Token, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	// Replace atomically swaps the old pair for its successor, returning
	// domain.ErrNotFound when the old pair was already rotated or revoked.
	Replace(ctx context.Context, oldID string, next *domain.Token) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Hasher turns secrets into digests and verifies presented secrets against
// stored digests. Plaintext secrets are never persisted.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}
