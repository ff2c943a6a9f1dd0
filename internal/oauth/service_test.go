package oauth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestTokenGrants(t *testing.T) {
	ctx := context.Background()

	t.Run("authorization_code grant issues a pair", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			RedirectURIs:      []string{"https://app.example.com/cb"},
			AllowedGrantTypes: []string{GrantAuthorizationCode},
		})
		user := env.seedUser(t, "alice", "hunter2")
		code, err := env.codes.Issue(ctx, client, user, []string{"profile"}, "https://app.example.com/cb")
		if err != nil {
			t.Fatalf("issue code: %v", err)
		}

		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantAuthorizationCode,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Code:         code,
			RedirectURI:  "https://app.example.com/cb",
		})
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected both token halves")
		}
		if resp.TokenType != "bearer" {
			t.Errorf("token_type = %q, want bearer", resp.TokenType)
		}
		if resp.Scope != "profile" {
			t.Errorf("scope = %q, want profile", resp.Scope)
		}
		if resp.ExpiresIn <= 0 || resp.ExpiresIn > int64(DefaultAccessTokenTTL.Seconds()) {
			t.Errorf("expires_in = %d out of range", resp.ExpiresIn)
		}

		got, err := env.tokens.ValidateAccess(ctx, resp.AccessToken)
		if err != nil || got == nil {
			t.Fatalf("issued access token does not validate: %v, %v", got, err)
		}
		if got.UserID != user.ID {
			t.Errorf("token bound to user %q, want %q", got.UserID, user.ID)
		}
	})

	t.Run("code cannot be exchanged twice", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			RedirectURIs:      []string{"https://app.example.com/cb"},
			AllowedGrantTypes: []string{GrantAuthorizationCode},
		})
		user := env.seedUser(t, "alice", "hunter2")
		code, _ := env.codes.Issue(ctx, client, user, nil, "https://app.example.com/cb")

		req := TokenRequest{
			GrantType:    GrantAuthorizationCode,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Code:         code,
			RedirectURI:  "https://app.example.com/cb",
		}
		if _, err := env.service.Token(ctx, req); err != nil {
			t.Fatalf("first exchange: %v", err)
		}
		if _, err := env.service.Token(ctx, req); !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("second exchange: got %v, want ErrInvalidGrant", err)
		}
	})

	t.Run("refresh_token grant rotates the pair", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword, GrantRefreshToken},
		})
		env.seedUser(t, "alice", "hunter2")

		first, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "alice",
			Password:     "hunter2",
			Scope:        "profile email",
		})
		if err != nil {
			t.Fatalf("password grant: %v", err)
		}

		second, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantRefreshToken,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			RefreshToken: first.RefreshToken,
		})
		if err != nil {
			t.Fatalf("refresh grant: %v", err)
		}
		if second.AccessToken == first.AccessToken {
			t.Error("rotation returned the old access token")
		}
		if second.Scope != first.Scope {
			t.Errorf("rotated scope = %q, want inherited %q", second.Scope, first.Scope)
		}
		if got, _ := env.tokens.ValidateRefresh(ctx, first.RefreshToken); got != nil {
			t.Error("old refresh token still usable after rotation")
		}
		if got, _ := env.tokens.ValidateAccess(ctx, first.AccessToken); got != nil {
			t.Error("old access token still usable after rotation")
		}
	})

	t.Run("refreshing an expired refresh token fails", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword, GrantRefreshToken},
		})
		env.seedUser(t, "alice", "hunter2")
		first, _ := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "alice",
			Password:     "hunter2",
		})

		backdateTokens(env.tokens, DefaultRefreshTokenTTL+time.Minute)
		_, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantRefreshToken,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			RefreshToken: first.RefreshToken,
		})
		if !errors.Is(err, ErrInvalidGrant) {
			t.Errorf("got %v, want ErrInvalidGrant", err)
		}
	})

	t.Run("password grant rejects bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword},
		})
		env.seedUser(t, "alice", "hunter2")
		_, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "alice",
			Password:     "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("client_credentials grant has no subject", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantClientCredentials},
			Scopes:            []string{"read", "write"},
		})
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantClientCredentials,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Scope:        "read admin",
		})
		if err != nil {
			t.Fatalf("client_credentials: %v", err)
		}
		if resp.Scope != "read" {
			t.Errorf("scope = %q, want narrowed %q", resp.Scope, "read")
		}
		got, _ := env.tokens.ValidateAccess(ctx, resp.AccessToken)
		if got == nil || got.UserID != "" {
			t.Errorf("token subject = %v, want empty", got)
		}
	})

	t.Run("unsupported grant type", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Token(ctx, TokenRequest{GrantType: "device_code"})
		if !errors.Is(err, ErrUnsupportedGrantType) {
			t.Errorf("got %v, want ErrUnsupportedGrantType", err)
		}
	})

	t.Run("missing grant type", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Token(ctx, TokenRequest{})
		if !errors.Is(err, ErrMissingParameter) {
			t.Errorf("got %v, want ErrMissingParameter", err)
		}
	})

	t.Run("authorization_code grant requires code and redirect_uri", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantAuthorizationCode},
		})
		_, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantAuthorizationCode,
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if !errors.Is(err, ErrMissingParameter) {
			t.Errorf("got %v, want ErrMissingParameter", err)
		}
	})
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	const redirectURI = "https://app.example.com/cb"

	t.Run("response_type code redirects with code and state", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{RedirectURIs: []string{redirectURI}})
		env.seedUser(t, "user1", "pw")

		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     client.ClientID,
			ResponseType: "code",
			RedirectURI:  redirectURI,
			Scope:        "profile",
			State:        "xyz123",
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, err := url.Parse(target)
		if err != nil {
			t.Fatalf("parse redirect: %v", err)
		}
		q := u.Query()
		if q.Get("code") == "" {
			t.Error("redirect carries no code")
		}
		if q.Get("state") != "xyz123" {
			t.Errorf("state = %q, want xyz123", q.Get("state"))
		}
		if !strings.HasPrefix(target, redirectURI) {
			t.Errorf("redirect %q does not target %q", target, redirectURI)
		}
	})

	t.Run("response_type token encodes the token in the fragment", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{RedirectURIs: []string{redirectURI}})
		env.seedUser(t, "user1", "pw")

		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     client.ClientID,
			ResponseType: "token",
			RedirectURI:  redirectURI,
			State:        "s1",
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, err := url.Parse(target)
		if err != nil {
			t.Fatalf("parse redirect: %v", err)
		}
		if u.RawQuery != "" {
			t.Errorf("implicit grant must not use the query string, got %q", u.RawQuery)
		}
		frag, err := url.ParseQuery(u.Fragment)
		if err != nil {
			t.Fatalf("parse fragment: %v", err)
		}
		if frag.Get("access_token") == "" {
			t.Error("fragment carries no access_token")
		}
		if frag.Get("token_type") != "bearer" {
			t.Errorf("token_type = %q, want bearer", frag.Get("token_type"))
		}
		if frag.Get("state") != "s1" {
			t.Errorf("state = %q, want s1", frag.Get("state"))
		}
	})

	t.Run("unregistered redirect_uri never issues a code", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{RedirectURIs: []string{redirectURI}})
		env.seedUser(t, "user1", "pw")

		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     client.ClientID,
			ResponseType: "code",
			RedirectURI:  "https://evil.example.com/cb",
			State:        "s2",
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, _ := url.Parse(target)
		q := u.Query()
		if q.Get("error") != "invalid_redirect_uri" {
			t.Errorf("error = %q, want invalid_redirect_uri", q.Get("error"))
		}
		if q.Get("code") != "" {
			t.Error("code issued despite unregistered redirect_uri")
		}
		if q.Get("state") != "s2" {
			t.Errorf("state = %q, want s2", q.Get("state"))
		}
	})

	t.Run("unknown client redirects with invalid_client", func(t *testing.T) {
		env := newTestEnv(t)
		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     "ghost",
			ResponseType: "code",
			RedirectURI:  redirectURI,
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, _ := url.Parse(target)
		if got := u.Query().Get("error"); got != "invalid_client" {
			t.Errorf("error = %q, want invalid_client", got)
		}
	})

	t.Run("no authenticated user redirects with login_required", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{RedirectURIs: []string{redirectURI}})

		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     client.ClientID,
			ResponseType: "code",
			RedirectURI:  redirectURI,
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, _ := url.Parse(target)
		if got := u.Query().Get("error"); got != "login_required" {
			t.Errorf("error = %q, want login_required", got)
		}
	})

	t.Run("unsupported response_type redirects with an error", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{RedirectURIs: []string{redirectURI}})
		env.seedUser(t, "user1", "pw")

		target, err := env.service.Authorize(ctx, AuthorizeRequest{
			ClientID:     client.ClientID,
			ResponseType: "id_token",
			RedirectURI:  redirectURI,
		})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		u, _ := url.Parse(target)
		if got := u.Query().Get("error"); got != "unsupported_response_type" {
			t.Errorf("error = %q, want unsupported_response_type", got)
		}
	})

	t.Run("missing client_id is the only non-redirect failure", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Authorize(ctx, AuthorizeRequest{RedirectURI: redirectURI})
		if !errors.Is(err, ErrMissingParameter) {
			t.Errorf("got %v, want ErrMissingParameter", err)
		}
	})
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()

	t.Run("active access token", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword},
		})
		user := env.seedUser(t, "alice", "hunter2")
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "alice",
			Password:     "hunter2",
			Scope:        "profile",
		})
		if err != nil {
			t.Fatalf("password grant: %v", err)
		}

		info, err := env.service.Introspect(ctx, IntrospectionRequest{
			Token:        resp.AccessToken,
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if err != nil {
			t.Fatalf("introspect: %v", err)
		}
		if !info.Active {
			t.Fatal("active = false for a live token")
		}
		if info.Sub != user.ID {
			t.Errorf("sub = %q, want %q", info.Sub, user.ID)
		}
		if info.Username != "alice" {
			t.Errorf("username = %q, want alice", info.Username)
		}
		if info.ClientID != client.ClientID {
			t.Errorf("client_id = %q, want %q", info.ClientID, client.ClientID)
		}
		if info.Scope != "profile" {
			t.Errorf("scope = %q, want profile", info.Scope)
		}
		if info.Exp <= info.Iat {
			t.Errorf("exp %d not after iat %d", info.Exp, info.Iat)
		}
	})

	t.Run("unknown token is inactive, not an error", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{})
		info, err := env.service.Introspect(ctx, IntrospectionRequest{
			Token:        "nope",
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if err != nil {
			t.Fatalf("introspect: %v", err)
		}
		if info.Active {
			t.Error("active = true for an unknown token")
		}
		if info.Sub != "" || info.Scope != "" {
			t.Error("inactive response must carry no metadata")
		}
	})

	t.Run("refresh_token hint resolves the refresh half", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantClientCredentials},
		})
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantClientCredentials,
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if err != nil {
			t.Fatalf("client_credentials: %v", err)
		}

		info, err := env.service.Introspect(ctx, IntrospectionRequest{
			Token:         resp.RefreshToken,
			TokenTypeHint: "refresh_token",
			ClientID:      client.ClientID,
			ClientSecret:  secret,
		})
		if err != nil {
			t.Fatalf("introspect: %v", err)
		}
		if !info.Active {
			t.Fatal("active = false for a live refresh token")
		}
		if info.Sub != "" {
			t.Errorf("sub = %q, want empty for client_credentials", info.Sub)
		}

		// Without the hint the refresh value does not resolve.
		info, err = env.service.Introspect(ctx, IntrospectionRequest{
			Token:        resp.RefreshToken,
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if err != nil {
			t.Fatalf("introspect: %v", err)
		}
		if info.Active {
			t.Error("refresh value resolved as an access token")
		}
	})

	t.Run("caller must authenticate", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		_, err := env.service.Introspect(ctx, IntrospectionRequest{
			Token:        "whatever",
			ClientID:     client.ClientID,
			ClientSecret: "wrong",
		})
		if !errors.Is(err, ErrInvalidClientCredentials) {
			t.Errorf("got %v, want ErrInvalidClientCredentials", err)
		}
	})
}

func TestRevokeAndUserInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token stops serving userinfo", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword},
		})
		user := env.seedUser(t, "alice", "hunter2")
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "alice",
			Password:     "hunter2",
		})
		if err != nil {
			t.Fatalf("password grant: %v", err)
		}

		claims, err := env.service.UserInfo(ctx, resp.AccessToken)
		if err != nil {
			t.Fatalf("userinfo: %v", err)
		}
		if claims.Sub != user.ID {
			t.Errorf("sub = %q, want %q", claims.Sub, user.ID)
		}
		if claims.Username != "alice" {
			t.Errorf("username = %q, want alice", claims.Username)
		}

		ok, err := env.service.Revoke(ctx, resp.AccessToken, client.ClientID, secret)
		if err != nil || !ok {
			t.Fatalf("revoke = %v, %v", ok, err)
		}
		if _, err := env.service.UserInfo(ctx, resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("userinfo after revoke: got %v, want ErrInvalidToken", err)
		}

		ok, err = env.service.Revoke(ctx, resp.AccessToken, client.ClientID, secret)
		if err != nil {
			t.Fatalf("second revoke errored: %v", err)
		}
		if ok {
			t.Error("second revoke = true, want false")
		}
	})

	t.Run("client_credentials token has no userinfo subject", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantClientCredentials},
		})
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantClientCredentials,
			ClientID:     client.ClientID,
			ClientSecret: secret,
		})
		if err != nil {
			t.Fatalf("client_credentials: %v", err)
		}
		if _, err := env.service.UserInfo(ctx, resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("name claim assembled from both name parts", func(t *testing.T) {
		env := newTestEnv(t)
		client, secret := env.seedClient(t, CreateClientInput{
			AllowedGrantTypes: []string{GrantPassword},
		})
		user, err := env.directory.Create(ctx, CreateUserInput{
			Username:  "bob",
			Email:     "bob@example.com",
			Password:  "pw123456",
			FirstName: "Bob",
			LastName:  "Barker",
		})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		resp, err := env.service.Token(ctx, TokenRequest{
			GrantType:    GrantPassword,
			ClientID:     client.ClientID,
			ClientSecret: secret,
			Username:     "bob",
			Password:     "pw123456",
		})
		if err != nil {
			t.Fatalf("password grant: %v", err)
		}
		claims, err := env.service.UserInfo(ctx, resp.AccessToken)
		if err != nil {
			t.Fatalf("userinfo: %v", err)
		}
		if claims.Name != "Bob Barker" {
			t.Errorf("name = %q, want %q", claims.Name, "Bob Barker")
		}
		if claims.Sub != user.ID {
			t.Errorf("sub = %q, want %q", claims.Sub, user.ID)
		}
	})
}
