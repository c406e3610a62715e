package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Session
	s.RegisterRouteHandler("POST "+RouteLoginApple, ChainMiddleware(s.LoginAppleHandler(), s.APIMiddleware()...))
	if s.codeVerifier != nil {
		s.RegisterRouteHandler("POST "+RouteLoginAppleCode, ChainMiddleware(s.LoginAppleCodeHandler(), s.APIMiddleware()...))
	}
	s.RegisterRouteHandler("POST "+RouteLoginRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLoginStatus, ChainMiddleware(s.StatusHandler(), s.APIMiddleware()...))

	// Member
	s.RegisterRouteHandler("POST "+RouteMemberLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteMemberDelete, ChainMiddleware(s.DeleteMemberHandler(), s.APIMiddleware()...))

	// Notifications (require a live access token)
	s.RegisterRouteHandler("POST "+RouteNotifications, ChainMiddleware(s.CreateNotificationHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteNotifications, ChainMiddleware(s.ListNotificationsHandler(), s.AuthedAPIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteNotificationByID, ChainMiddleware(s.DeleteNotificationHandler(), s.AuthedAPIMiddleware()...))

	// Operational
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	s.RegisterRouteFunc("GET "+RouteHealthz, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
