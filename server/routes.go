package server

import (
	"fmt"
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	// AUTH
	s.RegisterRouteFunc("GET "+RouteAuthURL, ChainMiddleware(s.AuthURLHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthRedirect, ChainMiddleware(s.AuthRedirectHandler(), s.APIMiddleware()...))

	// LOCATION (reads require a session, writes an API key)
	s.RegisterRouteFunc("GET "+RouteLocationGet, ChainMiddleware(s.LocationGetHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteFunc("GET "+RouteLocationList, ChainMiddleware(s.LocationListHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteFunc("POST "+RouteLocationUpdate, ChainMiddleware(s.LocationUpdateHandler(), s.APIMiddleware()...))
}

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s is running\n", s.config.AppName)
	}
}
