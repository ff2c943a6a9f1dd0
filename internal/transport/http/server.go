package http

import (
	"net/http"

	"oauth2_server/internal/oauth"
)

// Server translates the HTTP surface into core calls and core results back
// into responses. Validation failures and grant errors surface as structured
// JSON; authorize failures surface as redirects.
type Server struct {
	service *oauth.Service
}

func NewServer(service *oauth.Service) *Server {
	return &Server{service: service}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.HandleFunc("POST /clients", s.handleCreateClient)
	mux.HandleFunc("GET /clients/{id}", s.handleGetClient)
	mux.HandleFunc("PUT /clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /clients/{id}", s.handleDeleteClient)

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /authorize", s.handleAuthorize)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("POST /token/revoke", s.handleRevoke)
	mux.HandleFunc("POST /token/introspect", s.handleIntrospect)
	mux.HandleFunc("GET /userinfo", s.handleUserInfo)

	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("OAuth 2.0 Server is running!"))
}
