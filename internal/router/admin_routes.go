package router

import (
	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/handler"
	"github.com/okulov/home-library/internal/middleware"
	"github.com/okulov/home-library/internal/model"
)

// RegisterAdmin registers the admin-only surface: branch creation, book
// deletion and user management.
func RegisterAdmin(e *echo.Echo, b *handler.BookHandler, br *handler.BranchHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/branches", br.Create)
	g.DELETE("/books/:id", b.Delete)

	g.GET("/users", u.List)
	g.GET("/users/:id", u.Get)
	g.PUT("/users/:id/role", u.UpdateRole)
}
