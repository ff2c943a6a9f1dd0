package http

import (
	"net/http"
	"time"

	"oauth2_server/internal/domain"
	"oauth2_server/internal/oauth"
)

type createClientRequest struct {
	Name              string   `json:"name"`
	RedirectURIs      []string `json:"redirectUris"`
	AllowedGrantTypes []string `json:"allowedGrantTypes"`
	Scopes            []string `json:"scopes"`
	IsPublic          bool     `json:"isPublic"`
}

type updateClientRequest struct {
	Name              *string  `json:"name"`
	RedirectURIs      []string `json:"redirectUris"`
	AllowedGrantTypes []string `json:"allowedGrantTypes"`
	Scopes            []string `json:"scopes"`
	Active            *bool    `json:"active"`
}

type clientResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	ClientID          string    `json:"clientId"`
	ClientSecret      string    `json:"clientSecret,omitempty"`
	RedirectURIs      []string  `json:"redirectUris"`
	AllowedGrantTypes []string  `json:"allowedGrantTypes"`
	Scopes            []string  `json:"scopes"`
	IsPublic          bool      `json:"isPublic"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// toClientResponse renders a client record. The plaintext secret is included
// only on creation; it is not recoverable afterwards.
func toClientResponse(client *domain.Client, secret string) clientResponse {
	return clientResponse{
		ID:                client.ID,
		Name:              client.Name,
		ClientID:          client.ClientID,
		ClientSecret:      secret,
		RedirectURIs:      client.RedirectURIs,
		AllowedGrantTypes: client.AllowedGrantTypes,
		Scopes:            client.Scopes,
		IsPublic:          client.IsPublic,
		Active:            client.Active,
		CreatedAt:         client.CreatedAt,
		UpdatedAt:         client.UpdatedAt,
	}
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	client, secret, err := s.service.Clients().Create(r.Context(), oauth.CreateClientInput{
		Name:              req.Name,
		RedirectURIs:      req.RedirectURIs,
		AllowedGrantTypes: req.AllowedGrantTypes,
		Scopes:            req.Scopes,
		IsPublic:          req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientResponse(client, secret))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.service.Clients().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client, ""))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	client, err := s.service.Clients().Update(r.Context(), r.PathValue("id"), oauth.UpdateClientInput{
		Name:              req.Name,
		RedirectURIs:      req.RedirectURIs,
		AllowedGrantTypes: req.AllowedGrantTypes,
		Scopes:            req.Scopes,
		Active:            req.Active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientResponse(client, ""))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clients().Deactivate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
