package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

type authURLResponse struct {
	URL string `json:"url"`
}

type authRedirectResponse struct {
	Message string `json:"message"`
	Href    string `json:"href"`
}

// AuthURLHandler starts a login: it hands the browser the provider's
// authorization URL and binds the attempt to it with a CSRF cookie.
func (s *Server) AuthURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, state := s.flow.BeginLogin()
		s.setCSRFCookie(w, state)
		writeJSON(w, http.StatusOK, authURLResponse{URL: authURL})
	}
}

// AuthRedirectHandler finishes a login: the provider redirects here
// with a code and state, and on success the browser leaves with a
// session cookie.
func (s *Server) AuthRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		if code == "" || state == "" {
			log.Debug().Msg("auth redirect: missing code or state")
			forbidden(w)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil {
			log.Debug().Msg("auth redirect: no csrf cookie")
			forbidden(w)
			return
		}

		token, err := s.flow.CompleteLogin(r.Context(), cookie.Value, state, code)
		if err != nil {
			log.Debug().Err(err).Msg("auth redirect: login not completed")
			forbidden(w)
			return
		}

		email, err := s.flow.ResolveIdentity(r.Context(), token)
		if err != nil {
			log.Debug().Err(err).Msg("auth redirect: identity not resolved")
			forbidden(w)
			return
		}

		name, err := s.directory.LookupUserByEmail(r.Context(), email)
		if err != nil {
			log.Debug().Err(err).Str("email", email).Msg("auth redirect: email not authorized")
			forbidden(w)
			return
		}

		credential := s.sessions.Issue(name)
		s.setSessionCookie(w, credential)

		// A redirect plus a JSON body, for clients that don't follow the
		// Location header.
		href := s.config.RedirectAfterAuth
		w.Header().Set("Location", href)
		writeJSON(w, http.StatusSeeOther, authRedirectResponse{
			Message: "Auth successful. Return home.",
			Href:    href,
		})
	}
}
