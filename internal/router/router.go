// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/handler"
	"github.com/iliyamo/vacation-rental/internal/middleware"
	"github.com/iliyamo/vacation-rental/internal/model"
)

// Handlers groups everything RegisterAPI mounts.
type Handlers struct {
	Users    *handler.UserHandler
	Ads      *handler.AdHandler
	Bookings *handler.BookingHandler
	Comments *handler.CommentHandler
}

// RegisterRoutes mounts the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth mounts /v1/auth and the protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	e.GET("/v1/me", a.Me, authenticated(jwtSecret)...)
}

// RegisterAPI mounts the resources.  Reads are public; every write needs a
// USER or ADMIN token, and the handlers additionally check ownership on
// update and delete.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := authenticated(jwtSecret)
	v1 := e.Group("/v1")

	v1.GET("/users/:id", h.Users.Get)

	v1.GET("/ads", h.Ads.List)
	v1.GET("/ads/:id", h.Ads.Get)
	v1.GET("/ads/:id/not-available-days", h.Ads.NotAvailableDays)
	v1.GET("/ads/:id/my-comment", h.Ads.MyComment, auth...)
	v1.POST("/ads", h.Ads.Create, auth...)
	v1.PUT("/ads/:id", h.Ads.Update, auth...)
	v1.DELETE("/ads/:id", h.Ads.Delete, auth...)

	v1.GET("/bookings", h.Bookings.List)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.POST("/bookings", h.Bookings.Create, auth...)
	v1.PUT("/bookings/:id", h.Bookings.Update, auth...)
	v1.DELETE("/bookings/:id", h.Bookings.Delete, auth...)

	v1.GET("/comments", h.Comments.List)
	v1.GET("/comments/:id", h.Comments.Get)
	v1.POST("/comments", h.Comments.Create, auth...)
	v1.PUT("/comments/:id", h.Comments.Update, auth...)
	v1.DELETE("/comments/:id", h.Comments.Delete, auth...)
}

func authenticated(jwtSecret string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	}
}
