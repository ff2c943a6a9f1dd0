package oauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"oauth2_server/internal/domain"
	"oauth2_server/pkg/logger"

	"go.uber.org/zap"
)

// Supported grant types.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
)

var supportedGrants = map[string]bool{
	GrantAuthorizationCode: true,
	GrantRefreshToken:      true,
	GrantPassword:          true,
	GrantClientCredentials: true,
}

// Service is the grant-type state machine. It composes the authenticator,
// directories and managers; it holds no state of its own and is safe for
// concurrent use.
type Service struct {
	clients *ClientRegistry
	users   *UserDirectory
	codes   *AuthorizationCodeManager
	tokens  *TokenLifecycleManager
	auth    *ClientAuthenticator
	lookup  ClientRepository

	// resourceOwner stands in for a session layer on the authorize
	// endpoint: the username treated as the logged-in user.
	resourceOwner string
	now           func() time.Time
}

func NewService(clients *ClientRegistry, users *UserDirectory, codes *AuthorizationCodeManager, tokens *TokenLifecycleManager, auth *ClientAuthenticator, lookup ClientRepository, resourceOwner string) *Service {
	if resourceOwner == "" {
		resourceOwner = "user1"
	}
	return &Service{
		clients:       clients,
		users:         users,
		codes:         codes,
		tokens:        tokens,
		auth:          auth,
		lookup:        lookup,
		resourceOwner: resourceOwner,
		now:           time.Now,
	}
}

func (s *Service) Clients() *ClientRegistry { return s.clients }
func (s *Service) Users() *UserDirectory   { return s.users }

type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	RefreshToken string
	Username     string
	Password     string
	Scope        string
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Token runs one grant exchange: authenticate the client, dispatch on
// grant_type, return the issued pair.
func (s *Service) Token(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if req.GrantType == "" {
		return nil, ErrMissingParameter
	}
	if !supportedGrants[req.GrantType] {
		return nil, ErrUnsupportedGrantType
	}

	client, err := s.auth.Authenticate(ctx, req.ClientID, req.ClientSecret, req.GrantType)
	if err != nil {
		return nil, err
	}

	requested := ParseScope(req.Scope)

	var token *domain.Token
	switch req.GrantType {
	case GrantAuthorizationCode:
		if req.Code == "" || req.RedirectURI == "" {
			return nil, ErrMissingParameter
		}
		ac, err := s.codes.Redeem(ctx, req.Code, client.ClientID, req.RedirectURI)
		if err != nil {
			return nil, err
		}
		token, err = s.tokens.Issue(ctx, client, ac.UserID, NegotiateScopes(client, ac.Scopes))
		if err != nil {
			return nil, err
		}

	case GrantRefreshToken:
		if req.RefreshToken == "" {
			return nil, ErrMissingParameter
		}
		old, err := s.tokens.ValidateRefresh(ctx, req.RefreshToken)
		if err != nil {
			return nil, err
		}
		if old == nil {
			return nil, ErrInvalidGrant
		}
		scopes := old.Scopes
		if len(requested) > 0 {
			scopes = NegotiateScopes(client, requested)
		}
		token, err = s.tokens.Rotate(ctx, old, client, old.UserID, scopes)
		if err != nil {
			return nil, err
		}

	case GrantPassword:
		if req.Username == "" || req.Password == "" {
			return nil, ErrMissingParameter
		}
		user, err := s.users.Verify(ctx, req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		token, err = s.tokens.Issue(ctx, client, user.ID, NegotiateScopes(client, requested))
		if err != nil {
			return nil, err
		}

	case GrantClientCredentials:
		token, err = s.tokens.Issue(ctx, client, "", NegotiateScopes(client, requested))
		if err != nil {
			return nil, err
		}
	}

	return s.tokenResponse(token), nil
}

func (s *Service) tokenResponse(token *domain.Token) *TokenResponse {
	expiresIn := int64(token.AccessTokenExpiresAt.Sub(s.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		RefreshToken: token.RefreshToken,
		Scope:        JoinScope(token.Scopes),
	}
}

type AuthorizeRequest struct {
	ClientID     string
	ResponseType string
	RedirectURI  string
	Scope        string
	State        string
}

// Authorize validates the client and redirect URI and returns the redirect
// target for the browser. Once the redirect URI is known every failure is
// encoded into the redirect as error/error_description parameters; only a
// request with no usable redirect target returns an error.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (string, error) {
	if req.ClientID == "" || req.RedirectURI == "" {
		return "", ErrMissingParameter
	}

	client, err := s.lookup.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorRedirect(req.RedirectURI, "invalid_client", "client not found", req.State)
		}
		return "", err
	}

	if !client.AllowsRedirect(req.RedirectURI) {
		return errorRedirect(req.RedirectURI, "invalid_redirect_uri", "redirect_uri is not registered for this client", req.State)
	}

	user, err := s.users.FindByUsername(ctx, s.resourceOwner)
	if err != nil {
		return errorRedirect(req.RedirectURI, "login_required", "no authenticated user", req.State)
	}

	granted := NegotiateScopes(client, ParseScope(req.Scope))

	switch req.ResponseType {
	case "code":
		code, err := s.codes.Issue(ctx, client, user, granted, req.RedirectURI)
		if err != nil {
			return errorRedirect(req.RedirectURI, "server_error", "unable to issue authorization code", req.State)
		}
		params := url.Values{"code": {code}}
		if req.State != "" {
			params.Set("state", req.State)
		}
		return buildRedirect(req.RedirectURI, params, false)

	case "token":
		token, err := s.tokens.Issue(ctx, client, user.ID, granted)
		if err != nil {
			return errorRedirect(req.RedirectURI, "server_error", "unable to issue access token", req.State)
		}
		expiresIn := int64(token.AccessTokenExpiresAt.Sub(s.now()).Seconds())
		params := url.Values{
			"access_token": {token.AccessToken},
			"token_type":   {"bearer"},
			"expires_in":   {formatInt(expiresIn)},
		}
		if req.State != "" {
			params.Set("state", req.State)
		}
		return buildRedirect(req.RedirectURI, params, true)

	default:
		return errorRedirect(req.RedirectURI, "unsupported_response_type", "", req.State)
	}
}

type IntrospectionRequest struct {
	Token         string
	TokenTypeHint string
	ClientID      string
	ClientSecret  string
}

type IntrospectionResponse struct {
	Active    bool   `json:"active"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Scope     string `json:"scope,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
	Sub       string `json:"sub,omitempty"`
}

// Introspect authenticates the asking client and reports whether the token is
// live. An unresolvable token is {active:false}, never an error, so resource
// servers cannot probe for existence vs expiry.
func (s *Service) Introspect(ctx context.Context, req IntrospectionRequest) (*IntrospectionResponse, error) {
	if _, err := s.auth.Authenticate(ctx, req.ClientID, req.ClientSecret, ""); err != nil {
		return nil, err
	}

	var token *domain.Token
	var err error
	if req.TokenTypeHint == "refresh_token" {
		token, err = s.tokens.ValidateRefresh(ctx, req.Token)
	} else {
		token, err = s.tokens.ValidateAccess(ctx, req.Token)
	}
	if err != nil {
		return nil, err
	}
	if token == nil {
		return &IntrospectionResponse{Active: false}, nil
	}

	resp := &IntrospectionResponse{
		Active:    true,
		ClientID:  token.ClientID,
		Scope:     JoinScope(token.Scopes),
		TokenType: "Bearer",
		Exp:       token.AccessTokenExpiresAt.Unix(),
		Iat:       token.CreatedAt.Unix(),
	}
	if token.UserID != "" {
		resp.Sub = token.UserID
		if user, err := s.users.Get(ctx, token.UserID); err == nil {
			resp.Username = user.Username
		}
	}
	return resp, nil
}

// Revoke authenticates the client and invalidates the pair matching the
// presented value. Idempotent: an unknown token yields false, not an error.
func (s *Service) Revoke(ctx context.Context, token, clientID, clientSecret string) (bool, error) {
	if _, err := s.auth.Authenticate(ctx, clientID, clientSecret, ""); err != nil {
		return false, err
	}
	return s.tokens.Revoke(ctx, token)
}

type UserInfoClaims struct {
	Sub        string `json:"sub"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

// UserInfo resolves a bearer access token to its subject's public claims.
// Tokens without a subject (client_credentials) are invalid here.
func (s *Service) UserInfo(ctx context.Context, accessToken string) (*UserInfoClaims, error) {
	token, err := s.tokens.ValidateAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if token == nil || token.UserID == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.Get(ctx, token.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &UserInfoClaims{
		Sub:        user.ID,
		Username:   user.Username,
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
	}
	if user.FirstName != "" && user.LastName != "" {
		claims.Name = user.FirstName + " " + user.LastName
	}
	return claims, nil
}

// StartCleanup sweeps expired codes and token pairs on an interval. Reads
// already treat expired artifacts as invalid; the sweep only reclaims rows.
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				codes, err := s.codes.PurgeExpired(ctx)
				if err != nil {
					logger.Logger.Error("Failed to purge expired authorization codes", zap.Error(err))
				}
				tokens, err := s.tokens.PurgeExpired(ctx)
				if err != nil {
					logger.Logger.Error("Failed to purge expired tokens", zap.Error(err))
				}
				if codes > 0 || tokens > 0 {
					logger.Logger.Info("Purged expired artifacts",
						zap.Int64("codes", codes),
						zap.Int64("tokens", tokens),
					)
				}
			}
		}
	}()
}
