package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trailquest/hunt/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGameError maps the failure taxonomy onto HTTP statuses. Callers see a
// structured reason, never a raw internal fault.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "team or route not found")
	case errors.Is(err, game.ErrNotVerified):
		writeError(w, http.StatusForbidden, "selfie not verified yet")
	case errors.Is(err, game.ErrAlreadyPending):
		writeError(w, http.StatusConflict, "a selfie is already awaiting verification")
	case errors.Is(err, game.ErrAlreadyFinished):
		writeError(w, http.StatusConflict, "route already finished")
	case errors.Is(err, game.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store unavailable, try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
