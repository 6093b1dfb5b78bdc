package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "slotswapper/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to its transport status. Errors without a
// kind are assumed to be store faults and reported generically.
func writeError(w http.ResponseWriter, err error) {
	var e *apperrors.Error
	if errors.As(err, &e) {
		writeJSON(w, apperrors.HTTPStatus(e), map[string]string{"message": e.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
}
