package oauth

import (
	"context"

	"oauth2_server/internal/domain"

	"github.com/google/uuid"
)

// ClientRegistry owns the Client records. Clients are never physically
// deleted, only deactivated.
type ClientRegistry struct {
	clients ClientRepository
	hasher  Hasher
}

func NewClientRegistry(clients ClientRepository, hasher Hasher) *ClientRegistry {
	return &ClientRegistry{clients: clients, hasher: hasher}
}

type CreateClientInput struct {
	Name              string
	RedirectURIs      []string
	AllowedGrantTypes []string
	Scopes            []string
	IsPublic          bool
}

type UpdateClientInput struct {
	Name              *string
	RedirectURIs      []string
	AllowedGrantTypes []string
	Scopes            []string
	Active            *bool
}

// Create registers a client with server-generated credentials and returns the
// plaintext secret alongside the record. This is the only moment the secret
// exists outside the caller; the store keeps a digest.
func (r *ClientRegistry) Create(ctx context.Context, in CreateClientInput) (*domain.Client, string, error) {
	clientID, clientSecret, err := GenerateClientCredentials()
	if err != nil {
		return nil, "", err
	}
	digest, err := r.hasher.Hash(clientSecret)
	if err != nil {
		return nil, "", err
	}

	grantTypes := in.AllowedGrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code", "refresh_token"}
	}

	client := &domain.Client{
		ID:                uuid.NewString(),
		ClientID:          clientID,
		SecretDigest:      digest,
		Name:              in.Name,
		RedirectURIs:      in.RedirectURIs,
		AllowedGrantTypes: grantTypes,
		Scopes:            in.Scopes,
		IsPublic:          in.IsPublic,
		Active:            true,
	}
	if err := r.clients.Create(ctx, client); err != nil {
		return nil, "", err
	}
	return client, clientSecret, nil
}

func (r *ClientRegistry) Get(ctx context.Context, id string) (*domain.Client, error) {
	return r.clients.FindByID(ctx, id)
}

func (r *ClientRegistry) Update(ctx context.Context, id string, in UpdateClientInput) (*domain.Client, error) {
	client, err := r.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.RedirectURIs != nil {
		client.RedirectURIs = in.RedirectURIs
	}
	if in.AllowedGrantTypes != nil {
		client.AllowedGrantTypes = in.AllowedGrantTypes
	}
	if in.Scopes != nil {
		client.Scopes = in.Scopes
	}
	if in.Active != nil {
		client.Active = *in.Active
	}
	if err := r.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Deactivate soft-deletes the client; every authentication path stops seeing
// it immediately.
func (r *ClientRegistry) Deactivate(ctx context.Context, id string) error {
	client, err := r.clients.FindByID(ctx, id)
	if err != nil {
		return err
	}
	client.Active = false
	return r.clients.Update(ctx, client)
}
