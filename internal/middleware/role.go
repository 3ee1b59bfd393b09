package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// caller has one of the specified roles. Roles correspond to the values
// stored in the JWT's "role" claim (borrower, branch_owner, admin). A
// caller whose role is not in the allowed set gets 403 Forbidden. It
// assumes JWTAuth has already stored the role in the context. Note that
// this is only the coarse tier check — branch scoping (an owner acting on
// their own branch) is enforced by the policy package in handlers and
// again in repository SQL.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
