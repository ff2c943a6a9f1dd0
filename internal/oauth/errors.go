package oauth

import (
	"fmt"
	"net/http"
)

// Error carries an OAuth2 error code alongside the HTTP status the transport
// should use. Authentication failures deliberately share one public code and
// description so a probing client cannot distinguish an unknown client from a
// wrong secret.
type Error struct {
	Code        string
	Description string
	Status      int
}

func (e *Error) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

var (
	ErrInvalidClient            = &Error{Code: "invalid_client", Description: "client authentication failed", Status: http.StatusUnauthorized}
	ErrInvalidClientCredentials = &Error{Code: "invalid_client", Description: "invalid client credentials", Status: http.StatusUnauthorized}
	ErrUnauthorizedGrant        = &Error{Code: "unauthorized_client", Description: "grant type not allowed for this client", Status: http.StatusUnauthorized}
	ErrInvalidGrant             = &Error{Code: "invalid_grant", Description: "authorization grant is invalid or expired", Status: http.StatusBadRequest}
	ErrClientMismatch           = &Error{Code: "invalid_grant", Description: "authorization code was not issued to this client", Status: http.StatusBadRequest}
	ErrRedirectMismatch         = &Error{Code: "invalid_grant", Description: "redirect_uri does not match the one used during authorization", Status: http.StatusBadRequest}
	ErrExpiredCode              = &Error{Code: "invalid_grant", Description: "authorization code has expired", Status: http.StatusBadRequest}
	ErrInvalidRedirectURI       = &Error{Code: "invalid_redirect_uri", Description: "redirect_uri is not registered for this client", Status: http.StatusBadRequest}
	ErrMissingParameter         = &Error{Code: "invalid_request", Description: "missing required parameter", Status: http.StatusBadRequest}
	ErrUnsupportedGrantType     = &Error{Code: "unsupported_grant_type", Description: "grant type is not supported", Status: http.StatusBadRequest}
	ErrUnsupportedResponseType  = &Error{Code: "unsupported_response_type", Description: "response type is not supported", Status: http.StatusBadRequest}
	ErrInvalidCredentials       = &Error{Code: "invalid_grant", Description: "invalid username or password", Status: http.StatusUnauthorized}
	ErrInvalidToken             = &Error{Code: "invalid_token", Description: "token is invalid or expired", Status: http.StatusUnauthorized}
	ErrDuplicateUser            = &Error{Code: "invalid_request", Description: "username or email already exists", Status: http.StatusBadRequest}
)
