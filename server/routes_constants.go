package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/{$}"

	// Auth Routes
	RouteAuthURL      = "/api/auth/url"
	RouteAuthRedirect = "/api/auth/redirect"

	// Location Routes
	RouteLocationGet    = "/api/location/get"
	RouteLocationList   = "/api/location/list"
	RouteLocationUpdate = "/api/location/update"
)
