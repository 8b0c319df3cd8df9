package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe. It returns plain "ok" with a 200 so load
// balancers can verify the process is serving.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
