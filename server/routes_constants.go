package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session routes
	RouteLoginApple     = "/login/apple"
	RouteLoginAppleCode = "/login/apple/code"
	RouteLoginRefresh   = "/login/refresh"
	RouteLoginStatus    = "/login/status"

	// Member routes
	RouteMemberLogout = "/member/logout"
	RouteMemberDelete = "/member/delete"

	// Notification routes
	RouteNotifications    = "/notifications"
	RouteNotificationByID = "/notifications/{id}"

	// Operational routes
	RouteMetrics = "/metrics"
	RouteHealthz = "/healthz"
)

// Token transport headers. Login and refresh return the pair in these headers;
// subsequent calls resubmit them the same way.
const (
	HeaderAuthorization = "Authorization"
	HeaderRefreshToken  = "RefreshToken"
)
