// Package router wires handlers and middleware onto Echo routes. Routes are
// grouped by required privilege: public catalog reads, authenticated
// self-service, branch-owner management and admin-only surfaces.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication and are
// not part of the catalog: currently only the health check used by load
// balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated catalog browse endpoints.
// These are the read-heavy routes; the optional cache middleware is applied
// here so that the authenticated surfaces are never cached.
func RegisterPublic(e *echo.Echo, b *handler.BookHandler, cp *handler.CopyHandler, br *handler.BranchHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}

	// The literal /books/lookup route must be registered before /books/:id
	// so Echo does not capture "lookup" as an id.
	g.GET("/books/lookup", b.LookupISBN)
	g.GET("/books", b.List)
	g.GET("/books/:id", b.Get)

	g.GET("/copies", cp.List)
	g.GET("/copies/:id", cp.Get)

	g.GET("/branches", br.List)
	g.GET("/branches/:id", br.Get)
}
