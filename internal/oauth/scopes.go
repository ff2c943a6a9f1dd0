package oauth

import (
	"strings"

	"oauth2_server/internal/domain"
)

// NegotiateScopes intersects the requested scopes with the client's
// allow-list, preserving request order. A client with no declared scopes is
// implicitly trusted and the request passes through unchanged. Disallowed
// scopes are dropped silently, never rejected.
func NegotiateScopes(client *domain.Client, requested []string) []string {
	if len(client.Scopes) == 0 {
		return requested
	}
	allowed := make(map[string]bool, len(client.Scopes))
	for _, s := range client.Scopes {
		allowed[s] = true
	}
	granted := make([]string, 0, len(requested))
	for _, s := range requested {
		if allowed[s] {
			granted = append(granted, s)
		}
	}
	return granted
}

// ParseScope splits a space-delimited scope parameter.
func ParseScope(scope string) []string {
	return strings.Fields(scope)
}

// JoinScope renders granted scopes back into response form.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}
