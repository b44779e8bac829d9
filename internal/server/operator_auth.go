package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type OperatorLoginRequest struct {
	Password string `json:"password"`
}

type OperatorMeResponse struct {
	Role string `json:"role"`
}

// handleOperatorLogin checks the shared operator password against the
// configured bcrypt hash and issues a session cookie.
func handleOperatorLogin(sessions OperatorSessions, passwordHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if passwordHash == "" {
			writeJSON(w, http.StatusOK, OperatorMeResponse{Role: "operator"})
			return
		}

		var req OperatorLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid password")
			return
		}

		id, err := sessions.CreateOperatorSession(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     operatorCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, OperatorMeResponse{Role: "operator"})
	}
}

func handleOperatorLogout(sessions OperatorSessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(operatorCookieName); err == nil && cookie.Value != "" {
			if err := sessions.DeleteOperatorSession(r.Context(), cookie.Value); err != nil {
				writeGameError(w, err)
				return
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     operatorCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusOK)
	}
}

func handleOperatorMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, OperatorMeResponse{Role: "operator"})
	}
}
