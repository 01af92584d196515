package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"
)

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func tooMany(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	http.Error(w, "too many requests", http.StatusTooManyRequests)
}

// writeError maps vault error kinds onto HTTP statuses. The message carries
// the kind, never key material or document content.
func writeError(w http.ResponseWriter, err error) {
	writeJSONStatus(w, errStatus(err), map[string]string{"error": err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, vault.ErrInvalidInput),
		errors.Is(err, vault.ErrInvalidBackupFormat):
		return http.StatusBadRequest
	case errors.Is(err, vault.ErrWrongSecret):
		return http.StatusUnauthorized
	case errors.Is(err, vault.ErrVaultLocked):
		return http.StatusLocked
	case errors.Is(err, vault.ErrNotInitialized),
		errors.Is(err, vault.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, vault.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, vault.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}
