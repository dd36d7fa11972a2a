// Package server is the HTTP transport over the session manager. It
// owns route wiring, the response envelope, and request middleware;
// all authentication decisions live in the session package.
package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/altura-labs/go-token-auth/internal/config"
	"github.com/altura-labs/go-token-auth/provider"
	"github.com/altura-labs/go-token-auth/session"
)

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions *session.Manager
	idp      provider.Provider // nil when no external provider is configured
}

func New(config config.Config, sessions *session.Manager, idp provider.Provider) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		sessions: sessions,
		idp:      idp,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
