package auth

import (
	"context"
	"net/http"
	"strings"

	"aufgussplan/internal/utils"
)

type contextKey string

const adminKey contextKey = "admin_user"

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "aufgussplan_session"

const msgNotLoggedIn = "Nicht angemeldet"

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// IsAdmin reports whether r carries a live admin session.
func (a *Authenticator) IsAdmin(r *http.Request) bool {
	if AdminUser(r.Context()) != "" {
		return true
	}
	_, err := a.Sessions.Lookup(r.Context(), sessionToken(r))
	return err == nil
}

// RequireAdmin rejects requests without an admin session. Page requests are
// redirected to the login form, everything else gets a JSON 401.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := a.Sessions.Lookup(r.Context(), sessionToken(r))
		if err != nil {
			if r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html") {
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse(msgNotLoggedIn))
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminUser returns the admin name RequireAdmin stored in ctx.
func AdminUser(ctx context.Context) string {
	if u, ok := ctx.Value(adminKey).(string); ok {
		return u
	}
	return ""
}
