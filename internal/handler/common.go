package handler // handler defines http handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// getUserID extracts the authenticated user id stored by the JWT middleware.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated caller carries the Admin role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// engineError translates engine error kinds into HTTP responses. Anything
// outside the business taxonomy is a storage fault and surfaces as 500.
func engineError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrInvalidRange),
		errors.Is(err, engine.ErrOutsideHours),
		errors.Is(err, engine.ErrCapacityExceeded),
		errors.Is(err, engine.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnavailable),
		errors.Is(err, engine.ErrConflict),
		errors.Is(err, engine.ErrInvalidState):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
