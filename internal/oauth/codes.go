package oauth

import (
	"context"
	"errors"
	"time"

	"oauth2_server/internal/domain"

	"github.com/google/uuid"
)

// DefaultCodeTTL is how long an authorization code stays redeemable.
const DefaultCodeTTL = 10 * time.Minute

// AuthorizationCodeManager issues and atomically consumes single-use
// authorization codes.
type AuthorizationCodeManager struct {
	codes CodeRepository
	ttl   time.Duration
	now   func() time.Time
}

func NewAuthorizationCodeManager(codes CodeRepository, ttl time.Duration) *AuthorizationCodeManager {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &AuthorizationCodeManager{codes: codes, ttl: ttl, now: time.Now}
}

// Issue persists a fresh code bound to the client, user, granted scopes and
// the redirect URI used on the authorize step.
func (m *AuthorizationCodeManager) Issue(ctx context.Context, client *domain.Client, user *domain.User, scopes []string, redirectURI string) (string, error) {
	code, err := GenerateToken(codeSize)
	if err != nil {
		return "", err
	}
	ac := &domain.AuthorizationCode{
		ID:          uuid.NewString(),
		Code:        code,
		ClientID:    client.ClientID,
		UserID:      user.ID,
		RedirectURI: redirectURI,
		Scopes:      scopes,
		ExpiresAt:   m.now().Add(m.ttl),
	}
	if err := m.codes.Create(ctx, ac); err != nil {
		return "", err
	}
	return code, nil
}

// Redeem validates and consumes a code. Checks run from most to least
// specific: unknown code, client mismatch, redirect mismatch, expiry. Only a
// fully valid redemption consumes the code, and the final conditional delete
// decides the winner when two redemptions race; the loser gets ErrInvalidGrant
// exactly as if the code never existed.
func (m *AuthorizationCodeManager) Redeem(ctx context.Context, code, clientID, redirectURI string) (*domain.AuthorizationCode, error) {
	ac, err := m.codes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if ac.ClientID != clientID {
		return nil, ErrClientMismatch
	}
	if ac.RedirectURI != redirectURI {
		return nil, ErrRedirectMismatch
	}
	if m.now().After(ac.ExpiresAt) {
		return nil, ErrExpiredCode
	}

	deleted, err := m.codes.DeleteByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrInvalidGrant
	}
	return ac, nil
}

// PurgeExpired drops lapsed codes; reads already treat them as invalid, this
// just reclaims storage.
func (m *AuthorizationCodeManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.codes.DeleteExpired(ctx, m.now())
}
