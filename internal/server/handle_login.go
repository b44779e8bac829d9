package server

import (
	"net/http"
)

type LoginRequest struct {
	TeamCode string `json:"teamCode"`
}

// handleLogin authenticates a team by its pre-provisioned code and returns the
// full team snapshot so the device can render current progress immediately.
func handleLogin(store TeamStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		code := normalizeCode(req.TeamCode)
		if code == "" {
			writeError(w, http.StatusBadRequest, "teamCode is required")
			return
		}

		team, err := store.Team(r.Context(), code)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}

// handleListTeams returns every team's snapshot for the operator console.
func handleListTeams(store TeamStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}
