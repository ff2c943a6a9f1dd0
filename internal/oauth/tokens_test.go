package oauth

import (
	"context"
	"testing"
	"time"
)

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("issue returns a distinct persisted pair", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		token, err := env.tokens.Issue(ctx, client, "user-1", []string{"read"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if token.AccessToken == "" || token.RefreshToken == "" {
			t.Fatal("expected both token halves")
		}
		if token.AccessToken == token.RefreshToken {
			t.Error("access and refresh tokens must differ")
		}
		got, err := env.tokens.ValidateAccess(ctx, token.AccessToken)
		if err != nil || got == nil {
			t.Fatalf("ValidateAccess = %v, %v", got, err)
		}
	})

	t.Run("unknown and expired tokens validate identically", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		token, err := env.tokens.Issue(ctx, client, "user-1", nil)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		if got, err := env.tokens.ValidateAccess(ctx, "unknown"); err != nil || got != nil {
			t.Errorf("unknown token: got %v, %v; want nil, nil", got, err)
		}

		backdateTokens(env.tokens, DefaultAccessTokenTTL+time.Minute)
		if got, err := env.tokens.ValidateAccess(ctx, token.AccessToken); err != nil || got != nil {
			t.Errorf("expired access token: got %v, %v; want nil, nil", got, err)
		}
		// Refresh half outlives the access half.
		if got, err := env.tokens.ValidateRefresh(ctx, token.RefreshToken); err != nil || got == nil {
			t.Errorf("refresh should still validate: got %v, %v", got, err)
		}

		backdateTokens(env.tokens, DefaultRefreshTokenTTL+time.Minute)
		if got, err := env.tokens.ValidateRefresh(ctx, token.RefreshToken); err != nil || got != nil {
			t.Errorf("expired refresh token: got %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("revoke invalidates both halves and is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		token, err := env.tokens.Issue(ctx, client, "user-1", nil)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		ok, err := env.tokens.Revoke(ctx, token.AccessToken)
		if err != nil || !ok {
			t.Fatalf("revoke = %v, %v; want true, nil", ok, err)
		}
		if got, _ := env.tokens.ValidateAccess(ctx, token.AccessToken); got != nil {
			t.Error("access token still valid after revoke")
		}
		if got, _ := env.tokens.ValidateRefresh(ctx, token.RefreshToken); got != nil {
			t.Error("refresh token still valid after revoke")
		}

		ok, err = env.tokens.Revoke(ctx, token.AccessToken)
		if err != nil {
			t.Fatalf("second revoke errored: %v", err)
		}
		if ok {
			t.Error("second revoke = true, want false")
		}
	})

	t.Run("revoke by refresh token deletes the pair too", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		token, _ := env.tokens.Issue(ctx, client, "user-1", nil)

		if ok, err := env.tokens.Revoke(ctx, token.RefreshToken); err != nil || !ok {
			t.Fatalf("revoke by refresh = %v, %v", ok, err)
		}
		if got, _ := env.tokens.ValidateAccess(ctx, token.AccessToken); got != nil {
			t.Error("access token survived refresh-side revoke")
		}
	})

	t.Run("rotate replaces the pair atomically", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		old, _ := env.tokens.Issue(ctx, client, "user-1", []string{"read"})

		next, err := env.tokens.Rotate(ctx, old, client, old.UserID, old.Scopes)
		if err != nil {
			t.Fatalf("rotate: %v", err)
		}
		if next.AccessToken == old.AccessToken {
			t.Error("rotation must mint a new access token")
		}
		if got, _ := env.tokens.ValidateRefresh(ctx, old.RefreshToken); got != nil {
			t.Error("old refresh token usable after rotation")
		}
		if got, _ := env.tokens.ValidateAccess(ctx, old.AccessToken); got != nil {
			t.Error("old access token usable after rotation")
		}
		if got, _ := env.tokens.ValidateAccess(ctx, next.AccessToken); got == nil {
			t.Error("new access token not usable after rotation")
		}
	})

	t.Run("rotating an already rotated pair fails without issuing", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.seedClient(t, CreateClientInput{})
		old, _ := env.tokens.Issue(ctx, client, "user-1", nil)

		if _, err := env.tokens.Rotate(ctx, old, client, old.UserID, nil); err != nil {
			t.Fatalf("first rotate: %v", err)
		}
		next, err := env.tokens.Rotate(ctx, old, client, old.UserID, nil)
		if err == nil {
			t.Fatalf("second rotate succeeded with %v", next)
		}
	})
}
