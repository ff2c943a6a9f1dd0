package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"oauth2_server/internal/domain"
	"oauth2_server/internal/oauth"
	"oauth2_server/pkg/logger"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps core errors onto the wire: oauth.Error carries its own
// status and code, repository misses become 404, anything else is a 500 that
// never leaks internals.
func writeError(w http.ResponseWriter, err error) {
	var oe *oauth.Error
	if errors.As(err, &oe) {
		writeJSON(w, oe.Status, errorResponse{Error: oe.Code, ErrorDescription: oe.Description})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
		return
	}
	logger.Logger.Error("Internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server_error"})
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return oauth.ErrMissingParameter
	}
	return nil
}
