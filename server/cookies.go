package server

import (
	"net/http"

	"github.com/lastseenhq/lastseen/session"
)

const (
	// csrfCookieName binds a login attempt to the browser that started
	// it. Scoped to the auth endpoints only.
	csrfCookieName = "csrf_state"
	// sessionCookieName carries the session credential for the API.
	sessionCookieName = "session"
)

func (s *Server) setCSRFCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    state,
		Domain:   s.config.DomainName,
		Path:     "/api/auth/",
		MaxAge:   int(s.config.AuthWindow.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, credential session.Credential) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    string(credential),
		Domain:   s.config.DomainName,
		Path:     "/api/",
		MaxAge:   int(s.config.SessionAbsoluteTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
