// Package server exposes the HTTP surface: the two auth endpoints and
// the three location endpoints, plus a liveness root.
package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lastseenhq/lastseen/authflow"
	"github.com/lastseenhq/lastseen/directory"
	"github.com/lastseenhq/lastseen/internal/config"
	"github.com/lastseenhq/lastseen/location"
	"github.com/lastseenhq/lastseen/session"
)

type Server struct {
	mux    *http.ServeMux
	routes []string

	config    *config.Config
	flow      *authflow.Coordinator
	sessions  *session.Store
	locations *location.Store
	directory directory.Directory
}

func New(cfg *config.Config, flow *authflow.Coordinator, sessions *session.Store, locations *location.Store, dir directory.Directory) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		flow:      flow,
		sessions:  sessions,
		locations: locations,
		directory: dir,
	}

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) logRoutes() {
	if s.config.Env != "DEV" {
		return
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
