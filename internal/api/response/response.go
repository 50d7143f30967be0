package response

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// TokenResponse is the body returned by every operation that issues an
// auth token.
type TokenResponse struct {
	Token string `json:"token"`
}

// WriteToken writes a freshly issued token.
func WriteToken(w http.ResponseWriter, status int, key string) {
	WriteJSON(w, status, TokenResponse{Token: key})
}
