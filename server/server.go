package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/varsityhq/varsity-server/auth"
	"github.com/varsityhq/varsity-server/identity"
	"github.com/varsityhq/varsity-server/internal/config"
	"github.com/varsityhq/varsity-server/notifications"
	"github.com/varsityhq/varsity-server/token"
)

// Server is the HTTP boundary. It maps the session, member and notification
// operations onto routes and translates service errors into the structured
// error envelope.
type Server struct {
	env           string
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	verifier      identity.Verifier
	codeVerifier  identity.CodeVerifier
	auth          *auth.Service
	codec         *token.Codec
	blacklist     token.Blacklist
	notifications *notifications.Service
	log           zerolog.Logger
}

// Deps holds the collaborator dependencies for the Server.
type Deps struct {
	Verifier identity.Verifier
	// CodeVerifier is optional; when set the web authorization-code login
	// route is registered alongside the direct identity-token route.
	CodeVerifier  identity.CodeVerifier
	Auth          *auth.Service
	Codec         *token.Codec
	Blacklist     token.Blacklist
	Notifications *notifications.Service
	Logger        zerolog.Logger
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Verifier == nil {
		return nil, errors.New("[Server New] identity verifier is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if deps.Codec == nil {
		return nil, errors.New("[Server New] token codec is required")
	}
	if deps.Blacklist == nil {
		return nil, errors.New("[Server New] blacklist is required")
	}
	if deps.Notifications == nil {
		return nil, errors.New("[Server New] notifications service is required")
	}

	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		config:        cfg,
		verifier:      deps.Verifier,
		codeVerifier:  deps.CodeVerifier,
		auth:          deps.Auth,
		codec:         deps.Codec,
		blacklist:     deps.Blacklist,
		notifications: deps.Notifications,
		log:           deps.Logger,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		s.log.Info().Str("route", route).Msg("registered")
	}
}
