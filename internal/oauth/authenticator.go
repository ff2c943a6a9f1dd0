package oauth

import (
	"context"
	"errors"

	"oauth2_server/internal/domain"
)

// ClientAuthenticator validates client identity, secret and grant-type
// eligibility. It is a pure read with no side effects.
type ClientAuthenticator struct {
	clients ClientRepository
	hasher  Hasher
}

func NewClientAuthenticator(clients ClientRepository, hasher Hasher) *ClientAuthenticator {
	return &ClientAuthenticator{clients: clients, hasher: hasher}
}

// Authenticate looks up an active client and checks its secret and grant
// eligibility. Public clients skip the secret comparison. An empty grantType
// skips the allow-list check; revocation and introspection authenticate
// credentials only.
func (a *ClientAuthenticator) Authenticate(ctx context.Context, clientID, clientSecret, grantType string) (*domain.Client, error) {
	client, err := a.clients.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidClient
		}
		return nil, err
	}

	if !client.IsPublic {
		if clientSecret == "" || !a.hasher.Verify(clientSecret, client.SecretDigest) {
			return nil, ErrInvalidClientCredentials
		}
	}

	if grantType != "" && !client.AllowsGrant(grantType) {
		return nil, ErrUnauthorizedGrant
	}

	return client, nil
}
