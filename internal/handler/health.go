package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness. It intentionally does not touch the
// database; a wedged pool should not flap the load balancer.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
