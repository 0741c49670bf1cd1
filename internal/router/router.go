// Package router defines how HTTP routes are registered for the API.
// Registration is split by concern: health, auth, the report workflow
// and the public reference data each get their own function so main
// can wire middleware per group.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/cleanwatercheck/waterreport/internal/handler"
    "github.com/cleanwatercheck/waterreport/internal/middleware"
    "github.com/cleanwatercheck/waterreport/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations (register, login, refresh, logout) live
// under /api/auth; the session-introspection endpoint /api/auth/me sits
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/api/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token: the presented one is revoked
    // and a fresh access/refresh pair is issued.
    g.POST("/refresh", a.Refresh)
    // Logout invalidates the refresh token named in the body; the
    // access token simply expires.  No JWT required.
    g.POST("/logout", a.Logout)

    me := e.Group("/api/auth")
    me.Use(middleware.JWTAuth(jwtSecret))
    me.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
    me.GET("/me", a.Me)
}

// RegisterReports registers the report workflow under /api/reports.
// Every route requires a valid access token; per-report ownership and
// the admin-only status/admin-notes rules are enforced inside the
// handlers, where the report's owner is known.
func RegisterReports(e *echo.Echo, r *handler.ReportHandler, jwtSecret string) {
    g := e.Group("/api/reports")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

    g.POST("", r.Create)
    g.GET("", r.List)
    g.GET("/:id", r.Get)
    g.PUT("/:id", r.Update)
    g.DELETE("/:id", r.Delete)
}

// RegisterReference registers the reference-data endpoints.  Regions
// and the postal-code water lookup are public so the report form can be
// populated before login; stations sit behind the same JWT guard as the
// report workflow.  The optional extra middleware (response cache) is
// applied to the public group only, since reference data changes
// rarely.
func RegisterReference(e *echo.Echo, h *handler.ReferenceHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
    pub := e.Group("/api")
    for _, mw := range extra {
        if mw != nil {
            pub.Use(mw)
        }
    }
    pub.GET("/regions", h.GetRegions)
    pub.GET("/regions/:id", h.GetRegion)
    pub.GET("/water-info/:postalCode", h.GetWaterInfo)

    st := e.Group("/api/stations")
    st.Use(middleware.JWTAuth(jwtSecret))
    st.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
    st.GET("", h.GetStations)
    st.GET("/:id", h.GetStation)
}
