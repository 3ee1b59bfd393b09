package router

import (
	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/handler"
	"github.com/okulov/home-library/internal/middleware"
	"github.com/okulov/home-library/internal/model"
)

// RegisterAuth registers the session endpoints and the authenticated
// self-service surface. Token-exchange operations live under /v1/auth and
// need no session; everything else requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, b *handler.BookHandler, l *handler.LoanHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, so no JWT is required; an
	// expired access token must not trap a client in a session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleBorrower, model.RoleBranchOwner, model.RoleAdmin))

	auth.GET("/me", u.Me)
	auth.PUT("/me", u.UpdateMe)

	// Any authenticated profile may contribute book records; the catalog is
	// community-maintained even though copies are branch-scoped.
	auth.POST("/books", b.Create)

	// Loan reads are authenticated; the handler scopes visibility by role.
	auth.GET("/loans", l.List)
	auth.GET("/loans/:id", l.Get)
}
