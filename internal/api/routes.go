// routes.go - Route registration and server setup
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/health", h.HandleHealth)

	docs := e.Group("/api/documents")
	docs.POST("", h.HandleCreate)
	docs.GET("/:id", h.HandleGet)
	docs.GET("/:id/text", h.HandleText)
	docs.POST("/:id/split", h.HandleSplit)
	docs.GET("/:id/hit", h.HandleHit)
	docs.GET("/:id/msgpack", h.HandleMsgpack)
	docs.DELETE("/:id", h.HandleDelete)

	e.GET("/api/library", h.HandleLibrary)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))
}

// NewServer returns an Echo instance serving h
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	SetupMiddleware(e)
	RegisterRoutes(e, h)
	return e
}
