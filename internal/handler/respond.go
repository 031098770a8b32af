package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/bitebudget-wallet/internal/model"
)

// Error codes returned in model.ErrorResponse.
const (
	codeBadRequest   = "bad_request"
	codeNotConnected = "not_connected"
	codeCooldown     = "cooldown"
	codeUpstream     = "upstream_error"
	codeNotFound     = "not_found"
	codeInternal     = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

// allowMethod writes 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	http.Error(w, "Method not allowed. Should be "+method, http.StatusMethodNotAllowed)
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
