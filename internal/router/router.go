package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/campusbooking/classroom-reservation/internal/handler"
	"github.com/campusbooking/classroom-reservation/internal/middleware"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Unauthenticated
// operations live under /v1/auth; the /v1/me probe sits behind the JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts either
	// a bearer access token (revoke all sessions) or a refresh_token in the
	// body (revoke one session).
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))
	auth.GET("/me", a.Me)
	auth.POST("/change-password", a.ChangePassword)
}

// RegisterAPI registers the classroom and reservation endpoints. Everything
// here requires a valid access token; classroom mutation, account
// administration and reservation decisions additionally require the Admin
// role. cacheMW, when non-nil, is applied to the classroom read routes only:
// reservation and user listings are caller-scoped and must never be served
// from a shared cache.
func RegisterAPI(e *echo.Echo, jwtSecret string, r *handler.ReservationHandler, cl *handler.ClassroomHandler, u *handler.UserHandler, cacheMW echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	// Classrooms: browsing is open to every authenticated user, mutations
	// are admin-only.
	if cacheMW != nil {
		auth.GET("/classrooms", cl.List, cacheMW)
		auth.GET("/classrooms/:id", cl.Get, cacheMW)
	} else {
		auth.GET("/classrooms", cl.List)
		auth.GET("/classrooms/:id", cl.Get)
	}
	admin.POST("/classrooms", cl.Create)
	admin.PUT("/classrooms/:id", cl.Update)
	admin.DELETE("/classrooms/:id", cl.Delete)

	// Reservations. The full listing is admin-only; users see their own via
	// /reservations/my. Ownership checks on single-reservation operations
	// happen in the engine.
	admin.GET("/reservations", r.List)
	auth.GET("/reservations/my", r.ListMine)
	auth.GET("/reservations/:id", r.Get)
	auth.POST("/reservations", r.Create)
	auth.PUT("/reservations/:id", r.Update)
	auth.PATCH("/reservations/:id/cancel", r.Cancel)
	auth.DELETE("/reservations/:id", r.Delete)
	admin.PATCH("/reservations/:id/status", r.UpdateStatus)

	// Account administration.
	admin.GET("/users", u.List)
	admin.GET("/users/:id", u.Get)
	admin.PUT("/users/:id", u.Update)
	admin.PUT("/users/:id/password", u.ResetPassword)
	admin.DELETE("/users/:id", u.Delete)
}
