package auth

import (
	"crypto/subtle"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"aufgussplan/internal/config"
	"aufgussplan/internal/logger"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
    <meta charset="UTF-8">
    <title>Anmelden - Aufgussplan</title>
    <style>
        body { font-family: system-ui, sans-serif; background: #f3f4f6; display: flex; justify-content: center; padding-top: 10vh; }
        form { background: #fff; padding: 24px; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.1); width: 320px; }
        label, input, button { display: block; width: 100%; margin-bottom: 12px; }
        .error { color: #b91c1c; }
    </style>
</head>
<body>
<form method="post" action="/admin/login">
    <h1>Admin-Anmeldung</h1>
    {{if .}}<p class="error">{{.}}</p>{{end}}
    <label>Benutzername <input name="username" autocomplete="username" required></label>
    <label>Passwort <input name="password" type="password" autocomplete="current-password" required></label>
    <button type="submit">Anmelden</button>
</form>
</body>
</html>`))

// Authenticator checks admin credentials against the configured bcrypt hash
// and manages the session cookie.
type Authenticator struct {
	Username     string
	PasswordHash []byte
	Sessions     *SessionStore
	Secure       bool
	Logger       *logger.Logger
}

func NewAuthenticator(cfg config.AdminConfig, sessions *SessionStore, log *logger.Logger) *Authenticator {
	return &Authenticator{
		Username:     cfg.Username,
		PasswordHash: []byte(cfg.PasswordHash),
		Sessions:     sessions,
		Secure:       cfg.SecureCookie,
		Logger:       log,
	}
}

func (a *Authenticator) RegisterRoutes(r chi.Router) {
	r.Get("/admin/login", a.LoginForm)
	r.Post("/admin/login", a.Login)
	r.HandleFunc("/admin/logout", a.Logout)
}

// CheckCredentials compares username and password in constant time.
func (a *Authenticator) CheckCredentials(username, password string) bool {
	if len(a.PasswordHash) == 0 {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}

func (a *Authenticator) LoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginTemplate.Execute(w, "")
}

func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	if !a.CheckCredentials(username, r.PostFormValue("password")) {
		a.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("failed admin login for %q from %s", username, r.RemoteAddr))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		loginTemplate.Execute(w, "Benutzername oder Passwort falsch")
		return
	}

	token, err := a.Sessions.Create(r.Context(), username)
	if err != nil {
		a.Logger.Error("AUTH", fmt.Sprintf("Failed to create session: %v", err))
		http.Error(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(a.Sessions.TTL),
	})
	a.Logger.LogSecurity("LOGIN", fmt.Sprintf("admin %q logged in", username))
	http.Redirect(w, r, "/admin/statistik", http.StatusSeeOther)
}

func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Delete(r.Context(), sessionToken(r)); err != nil {
		a.Logger.Warn("AUTH", fmt.Sprintf("Failed to delete session: %v", err))
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.Secure,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
