package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const operatorCookieName = "operator_session"

// operatorAuthMiddleware gates the operator console. An empty password hash
// disables authentication entirely (local development and tests).
func operatorAuthMiddleware(sessions OperatorSessions, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(operatorCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			ok, err := sessions.HasOperatorSession(r.Context(), cookie.Value)
			if err != nil {
				writeGameError(w, err)
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// teamCode pulls the {code} route parameter and case-normalizes it; team codes
// are stored uppercase.
func teamCode(r *http.Request) string {
	return normalizeCode(chi.URLParam(r, "code"))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
