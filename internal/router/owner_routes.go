package router

import (
	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/handler"
	"github.com/okulov/home-library/internal/middleware"
	"github.com/okulov/home-library/internal/model"
)

// RegisterOwner registers the branch-management surface: copy cataloging,
// lending and branch edits. The role middleware admits branch owners and
// admins; the per-branch ownership check happens in the handlers (and again
// in repository SQL), since the route level cannot know which branch a
// request targets.
func RegisterOwner(e *echo.Echo, cp *handler.CopyHandler, br *handler.BranchHandler, l *handler.LoanHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleBranchOwner, model.RoleAdmin))

	g.POST("/copies", cp.Create)
	g.PUT("/copies/:id", cp.Update)
	g.DELETE("/copies/:id", cp.Delete)

	g.POST("/loans", l.Checkout)
	g.PUT("/loans/:id/return", l.Return)

	g.PUT("/branches/:id", br.Update)
}
