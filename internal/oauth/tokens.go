package oauth

import (
	"context"
	"errors"
	"time"

	"oauth2_server/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenLifecycleManager issues, validates, revokes and rotates access/refresh
// token pairs. Every validation re-reads the store so revocation is visible
// immediately.
type TokenLifecycleManager struct {
	tokens     TokenRepository
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenLifecycleManager(tokens TokenRepository, accessTTL, refreshTTL time.Duration) *TokenLifecycleManager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenLifecycleManager{tokens: tokens, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue mints and persists a new pair. userID is empty for the
// client_credentials grant.
func (m *TokenLifecycleManager) Issue(ctx context.Context, client *domain.Client, userID string, scopes []string) (*domain.Token, error) {
	token, err := m.build(client, userID, scopes)
	if err != nil {
		return nil, err
	}
	if err := m.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (m *TokenLifecycleManager) build(client *domain.Client, userID string, scopes []string) (*domain.Token, error) {
	access, err := GenerateToken(tokenSize)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateToken(tokenSize)
	if err != nil {
		return nil, err
	}
	now := m.now()
	return &domain.Token{
		ID:                    uuid.NewString(),
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  now.Add(m.accessTTL),
		RefreshTokenExpiresAt: now.Add(m.refreshTTL),
		Scopes:                scopes,
		ClientID:              client.ClientID,
		UserID:                userID,
		CreatedAt:             now,
	}, nil
}

// ValidateAccess resolves an access token value. Unknown and expired tokens
// are indistinguishable to the caller: both return (nil, nil).
func (m *TokenLifecycleManager) ValidateAccess(ctx context.Context, value string) (*domain.Token, error) {
	token, err := m.tokens.FindByAccessToken(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if m.now().After(token.AccessTokenExpiresAt) {
		return nil, nil
	}
	return token, nil
}

// ValidateRefresh is symmetric to ValidateAccess, keyed on the refresh half
// and its own expiry.
func (m *TokenLifecycleManager) ValidateRefresh(ctx context.Context, value string) (*domain.Token, error) {
	token, err := m.tokens.FindByRefreshToken(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if m.now().After(token.RefreshTokenExpiresAt) {
		return nil, nil
	}
	return token, nil
}

// Revoke deletes the pair matching either token value. Revoking an unknown or
// already-revoked token returns false without error.
func (m *TokenLifecycleManager) Revoke(ctx context.Context, value string) (bool, error) {
	token, err := m.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.tokens.DeleteByID(ctx, token.ID)
}

// Rotate replaces old with a freshly minted pair in one transaction. If old
// was concurrently rotated or revoked the swap fails with ErrInvalidGrant and
// no new pair is persisted.
func (m *TokenLifecycleManager) Rotate(ctx context.Context, old *domain.Token, client *domain.Client, userID string, scopes []string) (*domain.Token, error) {
	next, err := m.build(client, userID, scopes)
	if err != nil {
		return nil, err
	}
	if err := m.tokens.Replace(ctx, old.ID, next); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	return next, nil
}

// PurgeExpired removes pairs whose refresh expiry has passed.
func (m *TokenLifecycleManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.tokens.DeleteExpired(ctx, m.now())
}
