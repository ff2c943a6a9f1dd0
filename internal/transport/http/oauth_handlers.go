package http

import (
	"net/http"
	"strings"

	"oauth2_server/internal/oauth"
)

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location, err := s.service.Authorize(r.Context(), oauth.AuthorizeRequest{
		ClientID:     q.Get("client_id"),
		ResponseType: q.Get("response_type"),
		RedirectURI:  q.Get("redirect_uri"),
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
	})
	if err != nil {
		// No usable redirect target; this is the only authorize failure
		// that does not come back as a redirect.
		writeError(w, err)
		return
	}
	http.Redirect(w, r, location, http.StatusFound)
}

type tokenRequestBody struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Scope        string `json:"scope"`
}

// parseTokenBody accepts either a form or a JSON body, with HTTP Basic as a
// fallback for the client credentials.
func parseTokenBody(r *http.Request) (tokenRequestBody, error) {
	var body tokenRequestBody
	if isJSON(r) {
		if err := decodeJSON(r, &body); err != nil {
			return body, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return body, oauth.ErrMissingParameter
		}
		body = tokenRequestBody{
			GrantType:    r.PostForm.Get("grant_type"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
			Code:         r.PostForm.Get("code"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
			RefreshToken: r.PostForm.Get("refresh_token"),
			Username:     r.PostForm.Get("username"),
			Password:     r.PostForm.Get("password"),
			Scope:        r.PostForm.Get("scope"),
		}
	}
	if body.ClientID == "" {
		if id, secret, ok := r.BasicAuth(); ok {
			body.ClientID = id
			body.ClientSecret = secret
		}
	}
	return body, nil
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	body, err := parseTokenBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.service.Token(r.Context(), oauth.TokenRequest{
		GrantType:    body.GrantType,
		ClientID:     body.ClientID,
		ClientSecret: body.ClientSecret,
		Code:         body.Code,
		RedirectURI:  body.RedirectURI,
		RefreshToken: body.RefreshToken,
		Username:     body.Username,
		Password:     body.Password,
		Scope:        body.Scope,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var token, clientID, clientSecret string
	if isJSON(r) {
		var body struct {
			Token        string `json:"token"`
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		token, clientID, clientSecret = body.Token, body.ClientID, body.ClientSecret
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, oauth.ErrMissingParameter)
			return
		}
		token = r.PostForm.Get("token")
		clientID = r.PostForm.Get("client_id")
		clientSecret = r.PostForm.Get("client_secret")
	}
	if clientID == "" {
		if id, secret, ok := r.BasicAuth(); ok {
			clientID, clientSecret = id, secret
		}
	}
	if token == "" || clientID == "" {
		writeError(w, oauth.ErrMissingParameter)
		return
	}

	success, err := s.service.Revoke(r.Context(), token, clientID, clientSecret)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": success})
}

func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	var req oauth.IntrospectionRequest
	if isJSON(r) {
		var body struct {
			Token         string `json:"token"`
			TokenTypeHint string `json:"token_type_hint"`
			ClientID      string `json:"client_id"`
			ClientSecret  string `json:"client_secret"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		req = oauth.IntrospectionRequest{
			Token:         body.Token,
			TokenTypeHint: body.TokenTypeHint,
			ClientID:      body.ClientID,
			ClientSecret:  body.ClientSecret,
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, oauth.ErrMissingParameter)
			return
		}
		req = oauth.IntrospectionRequest{
			Token:         r.PostForm.Get("token"),
			TokenTypeHint: r.PostForm.Get("token_type_hint"),
			ClientID:      r.PostForm.Get("client_id"),
			ClientSecret:  r.PostForm.Get("client_secret"),
		}
	}
	if req.ClientID == "" {
		if id, secret, ok := r.BasicAuth(); ok {
			req.ClientID = id
			req.ClientSecret = secret
		}
	}

	resp, err := s.service.Introspect(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, oauth.ErrInvalidToken)
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := s.service.UserInfo(r.Context(), accessToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}
