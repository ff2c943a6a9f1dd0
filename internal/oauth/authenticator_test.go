package oauth

import (
	"context"
	"errors"
	"testing"
)

func TestClientAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials and grant", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{"authorization_code"},
		})
		got, err := env.auth.Authenticate(ctx, client.ClientID, secret, "authorization_code")
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		if got.ClientID != client.ClientID {
			t.Errorf("got client %q, want %q", got.ClientID, client.ClientID)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Authenticate(ctx, "nope", "secret", "authorization_code")
		if !errors.Is(err, ErrInvalidClient) {
			t.Errorf("got %v, want ErrInvalidClient", err)
		}
	})

	t.Run("deactivated client is invisible", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{})
		if err := env.registry.Deactivate(ctx, client.ID); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		_, err := env.auth.Authenticate(ctx, client.ClientID, secret, "authorization_code")
		if !errors.Is(err, ErrInvalidClient) {
			t.Errorf("got %v, want ErrInvalidClient", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		_, err := env.auth.Authenticate(ctx, client.ClientID, "wrong", "authorization_code")
		if !errors.Is(err, ErrInvalidClientCredentials) {
			t.Errorf("got %v, want ErrInvalidClientCredentials", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		_, err := env.auth.Authenticate(ctx, client.ClientID, "", "authorization_code")
		if !errors.Is(err, ErrInvalidClientCredentials) {
			t.Errorf("got %v, want ErrInvalidClientCredentials", err)
		}
	})

	t.Run("public client skips secret check", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{IsPublic: true})
		if _, err := env.auth.Authenticate(ctx, client.ClientID, "", "authorization_code"); err != nil {
			t.Errorf("public client: %v", err)
		}
	})

	t.Run("grant outside allow-list", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{"authorization_code"},
		})
		_, err := env.auth.Authenticate(ctx, client.ClientID, secret, "client_credentials")
		if !errors.Is(err, ErrUnauthorizedGrant) {
			t.Errorf("got %v, want ErrUnauthorizedGrant", err)
		}
	})

	t.Run("empty grant skips the allow-list", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{"authorization_code"},
		})
		if _, err := env.auth.Authenticate(ctx, client.ClientID, secret, ""); err != nil {
			t.Errorf("credentials-only authenticate: %v", err)
		}
	})
}
